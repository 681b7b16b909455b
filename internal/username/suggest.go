package username

import (
	"fmt"
	"math/rand"
)

// Word lists for suggested nicknames. Kept deliberately bland: every
// combination must pass Validate without consulting the taxonomy.
var (
	adjectives = []string{
		"sunny", "brave", "calm", "clever", "gentle", "happy", "kind",
		"lucky", "merry", "quick", "quiet", "swift", "bright", "cosy",
	}
	nouns = []string{
		"otter", "panda", "robin", "tiger", "koala", "fox", "owl",
		"dolphin", "badger", "rabbit", "puffin", "hedgehog", "falcon",
	}
)

// SuggestNicknames returns n distinct nickname suggestions built from the
// word lists plus a two-digit number. The rand source is injected so the
// app can seed per-session and tests can be deterministic.
func SuggestNicknames(rng *rand.Rand, n int) []string {
	if n <= 0 {
		n = 3
	}
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		name := fmt.Sprintf("%s_%s_%02d",
			adjectives[rng.Intn(len(adjectives))],
			nouns[rng.Intn(len(nouns))],
			rng.Intn(100))
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
