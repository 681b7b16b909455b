// Package taxonomy holds the versioned registry of trigger phrases, the
// context-sensitive watch-list, and the safe-usage exception table. The
// registry is immutable after construction; updating phrase lists is a data
// change shipped as a new taxonomy value, never an in-place edit.
package taxonomy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quillhaven/safeguard/internal/model"
)

// CategoryDef is one category's phrase list in declaration order.
type CategoryDef struct {
	Category string   `yaml:"category" json:"category"`
	Phrases  []string `yaml:"phrases"  json:"phrases"`
}

// Definition is the raw, serializable form of a taxonomy. Scan order within
// a tier follows slice order exactly — no sorting, no scoring.
type Definition struct {
	Version          string              `yaml:"version"           json:"version"`
	TierC            []CategoryDef       `yaml:"tier_c"            json:"tier_c"`
	TierB            []CategoryDef       `yaml:"tier_b"            json:"tier_b"`
	TierA            []CategoryDef       `yaml:"tier_a"            json:"tier_a"`
	ContextSensitive []string            `yaml:"context_sensitive" json:"context_sensitive"`
	SafeContexts     map[string][]string `yaml:"safe_contexts"     json:"safe_contexts"`
}

// Taxonomy is the compiled, read-only registry consulted by the detector.
type Taxonomy struct {
	version      string
	hash         string
	tiers        map[model.TriggerTier][]CategoryDef
	contextWords []string
	safeContexts map[string][]string
}

// New compiles a Definition into an immutable Taxonomy.
// Returns an error for structurally invalid definitions so that callers can
// fail closed instead of silently matching against an empty table.
func New(def Definition) (*Taxonomy, error) {
	if err := validate(def); err != nil {
		return nil, err
	}

	hash, err := contentHash(def)
	if err != nil {
		return nil, err
	}

	return &Taxonomy{
		version: def.Version,
		hash:    hash,
		tiers: map[model.TriggerTier][]CategoryDef{
			model.TierC: def.TierC,
			model.TierB: def.TierB,
			model.TierA: def.TierA,
		},
		contextWords: def.ContextSensitive,
		safeContexts: def.SafeContexts,
	}, nil
}

// NewDefault compiles the built-in definition. Panics only if the compiled-in
// data is itself invalid, which is a programming error caught by tests.
func NewDefault() *Taxonomy {
	tx, err := New(DefaultDefinition())
	if err != nil {
		panic(fmt.Sprintf("taxonomy: built-in definition invalid: %v", err))
	}
	return tx
}

// Load reads a taxonomy definition from a YAML file. An empty path or a
// missing file falls back to the built-in definition; invalid YAML or an
// invalid definition is an error.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return NewDefault(), nil
		}
		path = filepath.Join(home, ".safeguard", "taxonomy.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}

	// Start from the built-in definition; YAML overwrites only the
	// sections it provides.
	def := DefaultDefinition()
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("taxonomy: parse %s: %w", path, err)
	}

	return New(def)
}

// Version returns the taxonomy's declared version string.
func (t *Taxonomy) Version() string { return t.version }

// Hash returns "sha256:<hex>" over the canonical serialized definition.
// Identical content yields an identical hash regardless of source file
// formatting, so audit entries stay reproducible.
func (t *Taxonomy) Hash() string { return t.hash }

// Entries returns the ordered category tables for a tier.
// The returned slice must not be modified.
func (t *Taxonomy) Entries(tier model.TriggerTier) []CategoryDef {
	return t.tiers[tier]
}

// ContextWords returns the context-sensitive watch-list in declaration order.
func (t *Taxonomy) ContextWords() []string { return t.contextWords }

// SafeContexts returns the registered safe-usage substrings for a word.
func (t *Taxonomy) SafeContexts(word string) []string {
	return t.safeContexts[word]
}

// TierCPhrases flattens all tier-C phrases into one list, preserving
// category and phrase order. Intended for client-side pre-submission checks.
func (t *Taxonomy) TierCPhrases() []string {
	var out []string
	for _, cat := range t.tiers[model.TierC] {
		out = append(out, cat.Phrases...)
	}
	return out
}

// PhraseCount returns the total number of phrases in a tier.
func (t *Taxonomy) PhraseCount(tier model.TriggerTier) int {
	n := 0
	for _, cat := range t.tiers[tier] {
		n += len(cat.Phrases)
	}
	return n
}

func validate(def Definition) error {
	if def.Version == "" {
		return fmt.Errorf("taxonomy: missing version")
	}
	for tier, cats := range map[string][]CategoryDef{"tier_c": def.TierC, "tier_b": def.TierB, "tier_a": def.TierA} {
		if len(cats) == 0 {
			return fmt.Errorf("taxonomy: %s has no categories", tier)
		}
		for _, cat := range cats {
			if strings.TrimSpace(cat.Category) == "" {
				return fmt.Errorf("taxonomy: %s has a category with no name", tier)
			}
			if len(cat.Phrases) == 0 {
				return fmt.Errorf("taxonomy: %s category %q has no phrases", tier, cat.Category)
			}
			for _, p := range cat.Phrases {
				if strings.TrimSpace(p) == "" {
					return fmt.Errorf("taxonomy: %s category %q contains an empty phrase", tier, cat.Category)
				}
			}
		}
	}
	for word, contexts := range def.SafeContexts {
		if !contains(def.ContextSensitive, word) {
			return fmt.Errorf("taxonomy: safe context for %q but %q is not a context-sensitive word", word, word)
		}
		for _, c := range contexts {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("taxonomy: empty safe context for %q", word)
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// contentHash serializes the definition to canonical JSON and hashes it.
func contentHash(def Definition) (string, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("taxonomy: hash definition: %w", err)
	}
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:]), nil
}
