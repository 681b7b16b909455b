package record

import (
	"strings"
	"testing"

	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/model"
)

func tierCResult() model.DetectionResult {
	return model.DetectionResult{
		Tier:                  model.TierC,
		Keywords:              []string{"kill myself"},
		Category:              model.CategorySelfHarm,
		RequiresEscalation:    true,
		ContextSensitiveFlags: []string{},
	}
}

func TestNewRecord(t *testing.T) {
	r := New("child-42", model.SourceJournal, "I want to kill myself", tierCResult())
	if r.Status != StatusDetected {
		t.Errorf("expected detected status, got %q", r.Status)
	}
	if r.Level != escalate.LevelImmediate {
		t.Errorf("expected level 4, got %d", r.Level)
	}
	if !strings.HasPrefix(r.ID, "sg-") {
		t.Errorf("unexpected ID shape: %q", r.ID)
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestRecordIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRecordID()
		if seen[id] {
			t.Fatalf("duplicate record ID %q", id)
		}
		seen[id] = true
	}
}

func TestRedactSourceTruncates(t *testing.T) {
	long := strings.Repeat("a very long sentence ", 50)
	got := RedactSource(long)
	if len([]rune(got)) > maxSourceRunes+3 {
		t.Errorf("expected truncation to %d runes, got %d", maxSourceRunes, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis on truncated text")
	}
}

func TestRedactSourceCollapsesWhitespace(t *testing.T) {
	if got := RedactSource("short\n\ntext  here"); got != "short text here" {
		t.Errorf("unexpected redaction: %q", got)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	r := New("child-42", model.SourceJournal, "text", tierCResult())
	for _, to := range []Status{StatusLogged, StatusNotificationSent, StatusHumanReviewed, StatusEscalatedExternal} {
		if err := r.Transition(to); err != nil {
			t.Fatalf("transition to %s: %v", to, err)
		}
	}
	if !IsTerminal(r.Status) {
		t.Errorf("expected terminal status, got %q", r.Status)
	}
}

func TestLevel4NeverSuppressed(t *testing.T) {
	r := New("child-42", model.SourceJournal, "text", tierCResult())
	if err := r.Transition(StatusLogged); err != nil {
		t.Fatal(err)
	}
	if err := r.Transition(StatusNotificationSuppressed); err == nil {
		t.Error("level-4 record must never transition to suppressed")
	}
}

func TestLowLevelSuppressionAllowed(t *testing.T) {
	res := model.DetectionResult{Tier: model.TierB, Keywords: []string{"cant sleep"}, Category: model.CategorySleepDistress, ContextSensitiveFlags: []string{}}
	r := New("child-42", model.SourceJournal, "text", res)
	if err := r.Transition(StatusLogged); err != nil {
		t.Fatal(err)
	}
	if err := r.Transition(StatusNotificationSuppressed); err != nil {
		t.Errorf("level-3 suppression should be allowed: %v", err)
	}
}

func TestHumanReviewOnlyLevel3Plus(t *testing.T) {
	res := model.DetectionResult{Tier: model.TierA, Keywords: []string{"bit worried"}, Category: model.CategoryWorry, ContextSensitiveFlags: []string{}}
	r := New("child-42", model.SourceJournal, "text", res)
	r.Transition(StatusLogged)
	r.Transition(StatusNotificationSent)
	if err := r.Transition(StatusHumanReviewed); err == nil {
		t.Error("level-2 record must not enter human review")
	}
	if err := r.Transition(StatusResolved); err != nil {
		t.Errorf("level-2 record should close directly: %v", err)
	}
}

func TestReviewFromLoggedWithoutNotification(t *testing.T) {
	// No channels configured: a level-4 record never leaves logged on its
	// own, and the lead must still be able to review it.
	r := New("child-42", model.SourceJournal, "text", tierCResult())
	if err := r.Transition(StatusLogged); err != nil {
		t.Fatal(err)
	}
	if err := r.Transition(StatusHumanReviewed); err != nil {
		t.Fatalf("logged level-4 record must be reviewable: %v", err)
	}
	if err := r.Transition(StatusEscalatedExternal); err != nil {
		t.Fatalf("reviewed record must close: %v", err)
	}

	// The shortcut stays gated on the human-review level rule.
	low := New("child-42", model.SourceJournal, "text", model.DetectionResult{
		Tier: model.TierA, Keywords: []string{"bit worried"}, Category: model.CategoryWorry, ContextSensitiveFlags: []string{},
	})
	low.Transition(StatusLogged)
	if err := low.Transition(StatusHumanReviewed); err == nil {
		t.Error("level-2 record must not enter human review from logged")
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	r := New("child-42", model.SourceJournal, "text", tierCResult())
	r.Transition(StatusLogged)
	r.Transition(StatusNotificationSent)
	r.Transition(StatusResolved)
	if err := r.Transition(StatusLogged); err == nil {
		t.Error("expected no transitions out of resolved")
	}
}

func TestInvalidSkipTransition(t *testing.T) {
	r := New("child-42", model.SourceJournal, "text", tierCResult())
	if err := r.Transition(StatusHumanReviewed); err == nil {
		t.Error("expected detected -> human_reviewed to be rejected")
	}
}
