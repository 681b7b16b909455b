// Package detect implements the safeguarding trigger detector: a pure,
// stateless classification of free text against the trigger taxonomy.
package detect

import (
	"errors"
	"strings"

	"github.com/quillhaven/safeguard/internal/model"
	"github.com/quillhaven/safeguard/internal/normalize"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

// ErrNoTaxonomy signals a misconfigured engine. It is deliberately a
// distinct channel from a clean no-match result: a caller seeing this error
// must fail closed (route to human review), never treat it as "no concern".
var ErrNoTaxonomy = errors.New("detect: no taxonomy configured")

// Detector classifies text against one immutable taxonomy snapshot.
// Safe for concurrent use; holds no mutable state.
type Detector struct {
	tx *taxonomy.Taxonomy
}

// New creates a Detector over the given taxonomy.
func New(tx *taxonomy.Taxonomy) *Detector {
	return &Detector{tx: tx}
}

// NewDefault creates a Detector over the built-in taxonomy.
func NewDefault() *Detector {
	return New(taxonomy.NewDefault())
}

// Taxonomy returns the snapshot this detector matches against.
func (d *Detector) Taxonomy() *taxonomy.Taxonomy { return d.tx }

// match is one phrase hit inside a tier.
type match struct {
	category model.Category
	phrase   string
}

// Detect classifies text. Evaluation order is fixed:
//
//  1. Tier C, exhaustively. A hit returns immediately with empty flags —
//     no context can downgrade tier C.
//  2. Context-sensitive scan against the original lowercased text, with
//     safe-context neutralization.
//  3. Tier B, then tier A. A hit carries the flags from step 2.
//  4. Otherwise no tier, flags only.
//
// Within a tier, categories and phrases are scanned in taxonomy declaration
// order and the first literal match wins. The same input always yields the
// same result. The error return fires only for a misconfigured engine and
// never for a no-match.
func (d *Detector) Detect(text string) (model.DetectionResult, error) {
	if d == nil || d.tx == nil {
		return model.DetectionResult{}, ErrNoTaxonomy
	}

	norm := normalize.Normalize(text)
	despaced := normalize.Despace(norm)

	if m, ok := d.findInTier(model.TierC, norm, despaced); ok {
		return model.DetectionResult{
			Tier:                  model.TierC,
			Keywords:              []string{m.phrase},
			Category:              m.category,
			RequiresEscalation:    true,
			ContextSensitiveFlags: []string{},
		}, nil
	}

	flags := d.contextFlags(text)

	for _, tier := range []model.TriggerTier{model.TierB, model.TierA} {
		if m, ok := d.findInTier(tier, norm, despaced); ok {
			return model.DetectionResult{
				Tier:                  tier,
				Keywords:              []string{m.phrase},
				Category:              m.category,
				RequiresEscalation:    false,
				ContextSensitiveFlags: flags,
			}, nil
		}
	}

	return model.NoMatch(flags), nil
}

// findInTier scans one tier in declaration order. A phrase hits when its
// normalized form is a substring of the normalized text, or when its
// space-stripped form is a substring of the space-stripped text — the latter
// defeats spacing evasion ("mysel f") at the cost of occasional cross-word
// false positives, which is the intended bias.
func (d *Detector) findInTier(tier model.TriggerTier, norm, despaced string) (match, bool) {
	for _, cat := range d.tx.Entries(tier) {
		for _, phrase := range cat.Phrases {
			if phraseMatches(phrase, norm, despaced) {
				return match{category: model.Category(cat.Category), phrase: phrase}, true
			}
		}
	}
	return match{}, false
}

func phraseMatches(phrase, norm, despaced string) bool {
	np := normalize.Normalize(phrase)
	if np == "" {
		return false
	}
	if strings.Contains(norm, np) {
		return true
	}
	return strings.Contains(despaced, normalize.Despace(np))
}
