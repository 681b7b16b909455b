package taxonomy

// DefaultVersion identifies the built-in phrase tables. Bumped whenever the
// data below changes.
const DefaultVersion = "2025.08"

// DefaultDefinition returns the built-in taxonomy. Phrase lists deliberately
// include contraction variants and common deliberate misspellings as literal
// entries: safety-critical matching must stay auditable and reproducible, so
// there is no fuzzy matching anywhere in the engine.
//
// Phrases are written in normalized spelling (lowercase, contractions
// joined); the detector normalizes each phrase again before matching, so
// natural spellings here would also work.
func DefaultDefinition() Definition {
	return Definition{
		Version: DefaultVersion,

		TierC: []CategoryDef{
			{Category: "selfHarm", Phrases: []string{
				"kill myself",
				"kil myself",
				"kill myslef",
				"kms",
				"want to die",
				"wanna die",
				"wish i was dead",
				"wish i were dead",
				"end my life",
				"end it all",
				"better off dead",
				"better off without me",
				"no reason to live",
				"dont want to be alive",
				"dont want to live",
				"take my own life",
				"hurt myself",
				"hurting myself",
				"cut myself",
				"cutting myself",
				"selfharm",
				"suicide",
				"suicidal",
				"unalive",
				"sewerslide",
				"cant go on anymore",
			}},
			{Category: "abuse", Phrases: []string{
				"touched me inappropriately",
				"touches me inappropriately",
				"touched me weird",
				"touches me weird",
				"touched my privates",
				"hits me",
				"hit me at home",
				"beats me",
				"beat me at home",
				"hurts me at home",
				"dad hurts me",
				"mum hurts me",
				"mom hurts me",
				"scared to go home",
				"scared of going home",
				"made me promise not to tell",
				"told me not to tell anyone",
				"said not to tell anyone",
				"our little secret",
				"locks me in",
			}},
			{Category: "severeBullying", Phrases: []string{
				"told me to kill myself",
				"they want me dead",
				"everyone would be happier without me",
				"nobody would notice if i was gone",
				"nobody would care if i disappeared",
				"they beat me up",
				"they jumped me",
				"threatened to hurt me",
				"threatened to kill me",
				"they follow me home",
				"scared they will hurt me",
			}},
			{Category: "harmToOthers", Phrases: []string{
				"want to kill him",
				"want to kill her",
				"want to kill them",
				"gonna kill them",
				"going to kill them",
				"want them dead",
				"want to hurt someone",
				"going to hurt them",
				"gonna hurt them",
				"bring a knife to school",
				"gonna stab",
				"going to stab",
				"make them bleed",
			}},
			{Category: "eatingCrisis", Phrases: []string{
				"havent eaten in days",
				"havent eaten for days",
				"not eaten for days",
				"refuse to eat",
				"refusing to eat",
				"starve myself",
				"starving myself",
				"make myself sick after eating",
				"make myself throw up",
				"throw up on purpose",
				"throwing up on purpose",
				"never eating again",
				"purging",
			}},
		},

		TierB: []CategoryDef{
			{Category: "persistentDistress", Phrases: []string{
				"hate myself",
				"hate my life",
				"always sad",
				"sad all the time",
				"sad every day",
				"cry every day",
				"cry every night",
				"crying every night",
				"nothing makes me happy",
				"feel empty",
				"feel worthless",
				"im worthless",
				"nobody likes me",
				"no one likes me",
				"nobody cares about me",
				"no one cares about me",
				"have no friends",
				"always alone",
				"feel so alone",
			}},
			{Category: "anxiety", Phrases: []string{
				"panic attack",
				"panic attacks",
				"so anxious",
				"really anxious",
				"anxious all the time",
				"scared all the time",
				"always scared",
				"cant stop worrying",
				"worry all the time",
				"worrying all the time",
				"feel sick with worry",
				"heart races when",
			}},
			{Category: "schoolAnxiety", Phrases: []string{
				"scared of school",
				"scared to go to school",
				"dont want to go to school",
				"hate going to school",
				"school makes me cry",
				"feel sick before school",
				"cant face school",
				"everyone laughs at me in class",
				"scared of my teacher",
			}},
			{Category: "bodyImage", Phrases: []string{
				"hate my body",
				"hate how i look",
				"hate the way i look",
				"im so fat",
				"im fat and ugly",
				"so ugly",
				"im ugly",
				"everyone calls me fat",
				"wish i looked different",
				"hate my face",
			}},
			{Category: "sleepDistress", Phrases: []string{
				"cant sleep",
				"cant fall asleep",
				"cant get to sleep",
				"havent slept",
				"awake all night",
				"nightmares every night",
				"bad dreams every night",
				"scared to sleep",
				"scared of the dark every night",
			}},
			{Category: "substances", Phrases: []string{
				"vaping",
				"tried vaping",
				"tried a vape",
				"got drunk",
				"drank alcohol",
				"tried smoking",
				"tried a cigarette",
				"tried weed",
				"smoking weed",
				"took pills to feel better",
				"sniffing glue",
			}},
			{Category: "overwhelm", Phrases: []string{
				"too much pressure",
				"so much pressure",
				"cant cope",
				"cant handle it anymore",
				"cant deal with anything",
				"everything is too much",
				"all too much for me",
				"cant keep up with everything",
				"overwhelmed",
			}},
		},

		TierA: []CategoryDef{
			{Category: "sadness", Phrases: []string{
				"feeling sad",
				"feel sad",
				"im sad",
				"bit sad",
				"a little sad",
				"feeling down",
				"feel down",
				"had a bad day",
				"having a bad day",
				"unhappy today",
				"miss my friend",
				"miss my old school",
			}},
			{Category: "frustration", Phrases: []string{
				"so annoying",
				"really annoying",
				"really annoyed",
				"so unfair",
				"not fair",
				"makes me angry",
				"so angry",
				"really mad",
				"so mad",
				"fed up",
			}},
			{Category: "worry", Phrases: []string{
				"bit worried",
				"a little worried",
				"kind of worried",
				"worried about the test",
				"worried about my test",
				"worried about school",
				"nervous about",
				"bit nervous",
				"butterflies in my stomach",
			}},
			{Category: "normalExpressions", Phrases: []string{
				"homework is boring",
				"school is boring",
				"so bored",
				"so tired today",
				"long day today",
				"cant wait for the weekend",
				"my team lost",
				"lost the match",
			}},
		},

		ContextSensitive: []string{
			"hate", "hurt", "die", "died", "dead", "death",
			"kill", "killed", "blood", "stupid",
		},

		// Safe contexts are matched as substrings of the original lowercased
		// text (not the leetspeak-normalized form), since they are written in
		// natural spelling.
		SafeContexts: map[string][]string{
			"hate": {
				"hate homework",
				"hate my homework",
				"hate maths",
				"hate math",
				"hate broccoli",
				"hate vegetables",
				"hate mondays",
				"hate rain",
				"hate losing",
				"hate that song",
			},
			"hurt": {
				"hurt my knee",
				"hurt my ankle",
				"hurt my finger",
				"hurt my arm",
				"hurt my leg",
				"hurt my foot",
				"hurt my wrist",
			},
			"die": {
				"die in the game",
				"die in minecraft",
				"die in fortnite",
				"die of laughter",
				"die laughing",
			},
			"died": {
				"hamster died",
				"dog died",
				"cat died",
				"fish died",
				"goldfish died",
				"pet died",
				"phone died",
				"battery died",
				"died in the game",
				"died in minecraft",
				"died in fortnite",
			},
			"dead": {
				"dead battery",
				"phone is dead",
				"tablet is dead",
				"dead funny",
				"dead good",
				"dead tired after practice",
			},
			"death": {
				"sudden death",
				"death star",
				"do or death round",
			},
			"kill": {
				"kill streak",
				"kill the boss",
				"kill zombies",
				"kill the lights",
				"kill time",
			},
			"killed": {
				"killed it",
				"killed the boss",
				"killed zombies",
				"killed in the game",
				"killed my battery",
			},
			"blood": {
				"blood test",
				"blood donation",
				"blood orange",
			},
			"stupid": {
				"stupid game",
				"stupid homework",
				"stupid weather",
				"stupid phone",
				"stupid joke",
			},
		},
	}
}
