// Package normalize canonicalizes free text before taxonomy matching so that
// common evasion techniques (leetspeak, dropped apostrophes, split words) do
// not slip past literal phrase lists. The output is a matching artifact only
// and is never surfaced to users.
package normalize

import "strings"

// contractions folds apostrophe, spaced, and hyphenated variants into a
// single canonical spelled-together form. The replacer matches the longest
// candidate first, so "can't" wins over "can".
var contractions = strings.NewReplacer(
	"can't", "cant",
	"can t", "cant",
	"don't", "dont",
	"don t", "dont",
	"won't", "wont",
	"won t", "wont",
	"i'm", "im",
	"i m", "im",
	"they're", "theyre",
	"they re", "theyre",
	"haven't", "havent",
	"haven t", "havent",
	"isn't", "isnt",
	"isn t", "isnt",
	"wasn't", "wasnt",
	"wasn t", "wasnt",
	"wouldn't", "wouldnt",
	"wouldn t", "wouldnt",
	"self-harm", "selfharm",
	"self harm", "selfharm",
)

// leet maps digits commonly used as letter stand-ins. Applied digit by digit.
var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
}

// Normalize canonicalizes text for taxonomy matching. Passes, in order:
// lowercase, whitespace collapse, contraction folding, leetspeak
// substitution, contraction folding again. The second folding pass catches
// contraction sites that only exist after digit substitution ("c4n t"),
// which keeps the function idempotent. Deterministic and total.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = strings.Join(strings.Fields(s), " ")
	s = contractions.Replace(s)
	s = strings.Map(func(r rune) rune {
		if sub, ok := leet[r]; ok {
			return sub
		}
		return r
	}, s)
	return contractions.Replace(s)
}

// Despace removes every space from an already-normalized string. The
// detector matches phrases against this view as well, so splitting a word
// ("mysel f") does not defeat a literal phrase.
func Despace(normalized string) string {
	return strings.ReplaceAll(normalized, " ", "")
}
