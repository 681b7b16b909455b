package detect

import "strings"

// contextFlags scans the context-sensitive watch-list against the original
// lowercased text. Word presence is checked token-by-token (not substring)
// so "diet" never flags "die"; safe contexts are checked as substrings of
// the same original lowercased text, since they are written in natural
// spelling and must not be corrupted by leetspeak expansion.
func (d *Detector) contextFlags(text string) []string {
	lower := strings.ToLower(text)
	tokens := tokenSet(lower)

	var flags []string
	for _, word := range d.tx.ContextWords() {
		if !tokens[word] {
			continue
		}
		if inSafeContext(lower, d.tx.SafeContexts(word)) {
			continue
		}
		flags = append(flags, word)
	}
	if flags == nil {
		flags = []string{}
	}
	return flags
}

// tokenSet splits text into letter runs. Digits and punctuation break
// tokens, so a leetspoken word never registers as present in the original
// text — context flags are an advisory signal over natural writing only.
func tokenSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return r < 'a' || r > 'z'
	}) {
		set[tok] = true
	}
	return set
}

func inSafeContext(lower string, contexts []string) bool {
	for _, c := range contexts {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}
