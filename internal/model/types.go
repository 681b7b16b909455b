package model

// TriggerTier classifies how concerning a matched phrase is.
// Tiers are strictly ordered C > B > A > none.
type TriggerTier string

const (
	TierNone TriggerTier = ""  // no match
	TierA    TriggerTier = "A" // monitor
	TierB    TriggerTier = "B" // concern
	TierC    TriggerTier = "C" // high risk
)

// TierRank maps tiers to comparable integers for ordering checks.
var TierRank = map[TriggerTier]int{
	TierNone: 0,
	TierA:    1,
	TierB:    2,
	TierC:    3,
}

// TierLabel returns a human-readable label for the tier.
func TierLabel(t TriggerTier) string {
	switch t {
	case TierC:
		return "high risk"
	case TierB:
		return "concern"
	case TierA:
		return "monitor"
	default:
		return "none"
	}
}

// Valid reports whether t is one of the four defined tier values.
func (t TriggerTier) Valid() bool {
	_, ok := TierRank[t]
	return ok
}

// Category groups related phrases within a tier. Categories are static
// metadata, never mutated at runtime.
type Category string

// Tier C categories.
const (
	CategorySelfHarm       Category = "selfHarm"
	CategoryAbuse          Category = "abuse"
	CategorySevereBullying Category = "severeBullying"
	CategoryHarmToOthers   Category = "harmToOthers"
	CategoryEatingCrisis   Category = "eatingCrisis"
)

// Tier B categories.
const (
	CategoryPersistentDistress Category = "persistentDistress"
	CategoryAnxiety            Category = "anxiety"
	CategorySchoolAnxiety      Category = "schoolAnxiety"
	CategoryBodyImage          Category = "bodyImage"
	CategorySleepDistress      Category = "sleepDistress"
	CategorySubstances         Category = "substances"
	CategoryOverwhelm          Category = "overwhelm"
)

// Tier A categories.
const (
	CategorySadness           Category = "sadness"
	CategoryFrustration       Category = "frustration"
	CategoryWorry             Category = "worry"
	CategoryNormalExpressions Category = "normalExpressions"
)

// Source identifies where a piece of submitted text came from.
type Source string

const (
	SourceJournal  Source = "journal"
	SourceChat     Source = "chat"
	SourceUsername Source = "username"
)

// Valid reports whether s is one of the defined sources.
func (s Source) Valid() bool {
	switch s {
	case SourceJournal, SourceChat, SourceUsername:
		return true
	}
	return false
}

// DetectionResult is the value object produced by one detection call.
// Produced fresh per call, never mutated, carries no identity.
type DetectionResult struct {
	Tier                  TriggerTier `json:"tier"`
	Keywords              []string    `json:"keywords"`
	Category              Category    `json:"category"`
	RequiresEscalation    bool        `json:"requires_escalation"`
	ContextSensitiveFlags []string    `json:"context_sensitive_flags"`
}

// NoMatch returns the canonical empty result carrying the given advisory
// flags. Flags may be non-empty even when no tier matched — a weaker signal
// used for trend analysis, never alone triggering escalation.
func NoMatch(flags []string) DetectionResult {
	if flags == nil {
		flags = []string{}
	}
	return DetectionResult{
		Tier:                  TierNone,
		Keywords:              []string{},
		Category:              "",
		RequiresEscalation:    false,
		ContextSensitiveFlags: flags,
	}
}
