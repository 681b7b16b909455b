package detect

import (
	"reflect"
	"testing"

	"github.com/quillhaven/safeguard/internal/model"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

func mustDetect(t *testing.T, d *Detector, text string) model.DetectionResult {
	t.Helper()
	r, err := d.Detect(text)
	if err != nil {
		t.Fatalf("Detect(%q) returned error: %v", text, err)
	}
	return r
}

func TestTierCSelfHarm(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "I want to kill myself")
	if r.Tier != model.TierC {
		t.Fatalf("expected tier C, got %q", r.Tier)
	}
	if r.Category != model.CategorySelfHarm {
		t.Errorf("expected selfHarm category, got %q", r.Category)
	}
	if !r.RequiresEscalation {
		t.Error("tier C must require escalation")
	}
	if len(r.Keywords) != 1 || r.Keywords[0] != "kill myself" {
		t.Errorf("expected matched phrase in keywords, got %v", r.Keywords)
	}
	if len(r.ContextSensitiveFlags) != 0 {
		t.Errorf("tier C result must carry no context flags, got %v", r.ContextSensitiveFlags)
	}
}

func TestTierCAbuse(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "they touched me inappropriately")
	if r.Tier != model.TierC || r.Category != model.CategoryAbuse {
		t.Errorf("expected tier C abuse, got tier %q category %q", r.Tier, r.Category)
	}
	if !r.RequiresEscalation {
		t.Error("tier C must require escalation")
	}
}

func TestTierBPersistentDistress(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "I hate myself")
	if r.Tier != model.TierB || r.Category != model.CategoryPersistentDistress {
		t.Errorf("expected tier B persistentDistress, got tier %q category %q", r.Tier, r.Category)
	}
	if r.RequiresEscalation {
		t.Error("tier B must not require escalation")
	}
	// "hate" is present outside a safe context, so the advisory flag rides along.
	if len(r.ContextSensitiveFlags) != 1 || r.ContextSensitiveFlags[0] != "hate" {
		t.Errorf("expected hate flag alongside tier B match, got %v", r.ContextSensitiveFlags)
	}
}

func TestTierAWorry(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "bit worried about the test")
	if r.Tier != model.TierA || r.Category != model.CategoryWorry {
		t.Errorf("expected tier A worry, got tier %q category %q", r.Tier, r.Category)
	}
	if r.RequiresEscalation {
		t.Error("tier A must not require escalation")
	}
}

func TestTierOrderingCBeatsB(t *testing.T) {
	d := NewDefault()
	// Contains both a tier-B phrase (hate myself) and a tier-C phrase.
	r := mustDetect(t, d, "I hate myself and I want to die")
	if r.Tier != model.TierC {
		t.Errorf("expected tier C to dominate, got %q", r.Tier)
	}
	if !r.RequiresEscalation {
		t.Error("tier C must require escalation regardless of other matches")
	}
}

func TestTierOrderingBBeatsA(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "feeling sad because I cant sleep")
	if r.Tier != model.TierB {
		t.Errorf("expected tier B to beat tier A, got %q", r.Tier)
	}
	if r.Category != model.CategorySleepDistress {
		t.Errorf("expected sleepDistress, got %q", r.Category)
	}
}

func TestLeetspeakEvasion(t *testing.T) {
	d := NewDefault()
	for _, text := range []string{
		"k1ll myself",
		"I want t0 d13",
		"5uicide",
		"want to d1e",
	} {
		r := mustDetect(t, d, text)
		if r.Tier != model.TierC {
			t.Errorf("Detect(%q): expected tier C, got %q", text, r.Tier)
		}
	}
}

func TestSpacingEvasion(t *testing.T) {
	d := NewDefault()
	for _, text := range []string{
		"k1ll mysel f",
		"kill my self",
		"su icide",
	} {
		r := mustDetect(t, d, text)
		if r.Tier != model.TierC {
			t.Errorf("Detect(%q): expected tier C, got %q", text, r.Tier)
		}
	}
}

func TestContractionEvasion(t *testing.T) {
	d := NewDefault()
	for _, text := range []string{
		"I can't go on anymore",
		"i can t go on anymore",
		"i cant go on anymore",
	} {
		r := mustDetect(t, d, text)
		if r.Tier != model.TierC {
			t.Errorf("Detect(%q): expected tier C, got %q", text, r.Tier)
		}
	}
}

func TestSafeContextNeutralizesPetDeath(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "my hamster died yesterday")
	if r.Tier != model.TierNone {
		t.Errorf("expected no tier, got %q", r.Tier)
	}
	if len(r.ContextSensitiveFlags) != 0 {
		t.Errorf("expected died to be neutralized, got flags %v", r.ContextSensitiveFlags)
	}
}

func TestLeetspeakSafePhrase(t *testing.T) {
	d := NewDefault()
	// Normalizes to "hate my homework"; "hate" is absent from the original
	// text so no flag is raised, and no tier phrase matches.
	r := mustDetect(t, d, "h4te my h0mew0rk")
	if r.Tier != model.TierNone {
		t.Errorf("expected no tier, got %q", r.Tier)
	}
	if len(r.ContextSensitiveFlags) != 0 {
		t.Errorf("expected no flags, got %v", r.ContextSensitiveFlags)
	}
}

func TestContextFlagWithoutTier(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "there was blood everywhere")
	if r.Tier != model.TierNone {
		t.Errorf("expected no tier, got %q", r.Tier)
	}
	if len(r.ContextSensitiveFlags) != 1 || r.ContextSensitiveFlags[0] != "blood" {
		t.Errorf("expected blood flag, got %v", r.ContextSensitiveFlags)
	}
	if r.RequiresEscalation {
		t.Error("advisory flags alone must never require escalation")
	}
}

func TestContextWordNotSubstringMatched(t *testing.T) {
	d := NewDefault()
	// "diet" contains "die" but is a different token.
	r := mustDetect(t, d, "started a new diet plan")
	if len(r.ContextSensitiveFlags) != 0 {
		t.Errorf("expected no flags for diet, got %v", r.ContextSensitiveFlags)
	}
}

func TestSafeContextBattery(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "my phone died during the film")
	if len(r.ContextSensitiveFlags) != 0 {
		t.Errorf("expected phone died to be safe, got flags %v", r.ContextSensitiveFlags)
	}
}

func TestEmptyInput(t *testing.T) {
	d := NewDefault()
	r := mustDetect(t, d, "")
	if !reflect.DeepEqual(r, model.NoMatch(nil)) {
		t.Errorf("expected canonical no-match for empty input, got %+v", r)
	}
}

func TestDeterminism(t *testing.T) {
	d := NewDefault()
	inputs := []string{
		"I want to kill myself",
		"my hamster died",
		"bit worried about the test",
		"nothing concerning here",
	}
	for _, in := range inputs {
		a := mustDetect(t, d, in)
		b := mustDetect(t, d, in)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Detect(%q) not deterministic: %+v != %+v", in, a, b)
		}
	}
}

func TestFirstMatchWinsDeclarationOrder(t *testing.T) {
	def := taxonomy.DefaultDefinition()
	tx, err := taxonomy.New(def)
	if err != nil {
		t.Fatal(err)
	}
	d := New(tx)
	// Both phrases live in tier B; persistentDistress is declared before
	// bodyImage, so it wins even though bodyImage appears first in the text.
	r := mustDetect(t, d, "hate my body and hate my life")
	if r.Category != model.CategoryPersistentDistress {
		t.Errorf("expected first declared category to win, got %q", r.Category)
	}
}

func TestNilDetectorFailsClosed(t *testing.T) {
	var d *Detector
	if _, err := d.Detect("anything"); err == nil {
		t.Error("expected explicit error from nil detector, not a clean no-match")
	}
	d = New(nil)
	if _, err := d.Detect("anything"); err != ErrNoTaxonomy {
		t.Errorf("expected ErrNoTaxonomy, got %v", err)
	}
}

func FuzzDetectTotal(f *testing.F) {
	f.Add("I want to kill myself")
	f.Add("h4te my h0mew0rk")
	f.Add("")
	f.Add("\x00\xff weird bytes")
	d := NewDefault()
	f.Fuzz(func(t *testing.T, s string) {
		r, err := d.Detect(s)
		if err != nil {
			t.Fatalf("Detect must be total over strings, got error: %v", err)
		}
		if r.RequiresEscalation != (r.Tier == model.TierC) {
			t.Errorf("requires_escalation must hold exactly for tier C, got %+v", r)
		}
		if r.Keywords == nil || r.ContextSensitiveFlags == nil {
			t.Error("result slices must be non-nil")
		}
	})
}
