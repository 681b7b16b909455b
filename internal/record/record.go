// Package record defines the escalation record — the persisted trace of one
// detection — and the state machine governing its life from detection to
// human resolution. The engine creates records; only human action may move
// one into a terminal state.
package record

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/model"
)

// Status is the lifecycle state of an escalation record.
type Status string

const (
	StatusDetected               Status = "detected"
	StatusLogged                 Status = "logged"
	StatusNotificationSent       Status = "notification_sent"
	StatusNotificationSuppressed Status = "notification_suppressed"
	StatusHumanReviewed          Status = "human_reviewed"
	StatusResolved               Status = "resolved"
	StatusEscalatedExternal      Status = "escalated_external"
)

// maxSourceRunes bounds the stored excerpt of the submitted text. The full
// text stays with the journal entry itself; the record keeps only enough for
// a reviewer to see what fired.
const maxSourceRunes = 240

// Record is one escalation record. Field set per the engine contract; the
// engine never reads prior records — each detection is stateless.
type Record struct {
	ID           string            `json:"id"`
	SubjectID    string            `json:"subject_id"`
	Source       model.Source      `json:"source"`
	SourceText   string            `json:"source_text"`
	Tier         model.TriggerTier `json:"tier"`
	Category     model.Category    `json:"category"`
	Keywords     []string          `json:"keywords"`
	ContextFlags []string          `json:"context_flags"`
	Level        escalate.Level    `json:"escalation_level"`
	Status       Status            `json:"status"`
	ActionTaken  string            `json:"action_taken,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// New builds a Detected record from one detection result.
func New(subjectID string, source model.Source, text string, res model.DetectionResult) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:           NewRecordID(),
		SubjectID:    subjectID,
		Source:       source,
		SourceText:   RedactSource(text),
		Tier:         res.Tier,
		Category:     res.Category,
		Keywords:     res.Keywords,
		ContextFlags: res.ContextSensitiveFlags,
		Level:        escalate.LevelFor(res.Tier),
		Status:       StatusDetected,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewRecordID generates a record ID like "sg-3fa91b02c4de".
func NewRecordID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return fmt.Sprintf("sg-%x", time.Now().UnixNano())
	}
	return "sg-" + hex.EncodeToString(b)
}

// RedactSource collapses whitespace and truncates the submitted text to a
// bounded excerpt for storage.
func RedactSource(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	runes := []rune(s)
	if len(runes) <= maxSourceRunes {
		return s
	}
	return string(runes[:maxSourceRunes]) + "..."
}

// transitions lists the allowed next states for each state. Terminal states
// have no entries. Logged records may enter human review directly: in a
// deployment with no notification channels the review queue works straight
// off the record store, and a detection must never be unreachable for the
// lead because no webhook was ever configured.
var transitions = map[Status][]Status{
	StatusDetected:               {StatusLogged},
	StatusLogged:                 {StatusNotificationSent, StatusNotificationSuppressed, StatusHumanReviewed, StatusResolved},
	StatusNotificationSent:       {StatusHumanReviewed, StatusResolved},
	StatusNotificationSuppressed: {StatusHumanReviewed, StatusResolved},
	StatusHumanReviewed:          {StatusResolved, StatusEscalatedExternal},
}

// IsTerminal reports whether s is a terminal state.
func IsTerminal(s Status) bool {
	return s == StatusResolved || s == StatusEscalatedExternal
}

// CanTransition validates a state change for a record at the given level.
// Two level-dependent rules apply on top of the transition table:
// level-4 records can never be suppressed, and only records at level 3 or
// above enter human review.
func CanTransition(from, to Status, level escalate.Level) error {
	if to == StatusNotificationSuppressed && escalate.BypassesQuietHours(level) {
		return fmt.Errorf("record: level %d notifications must never be suppressed", level)
	}
	if to == StatusHumanReviewed && !escalate.RequiresHumanReview(level) {
		return fmt.Errorf("record: level %d records do not enter human review", level)
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("record: invalid transition %s -> %s", from, to)
}

// Transition applies a validated state change, stamping UpdatedAt.
func (r *Record) Transition(to Status) error {
	if err := CanTransition(r.Status, to, r.Level); err != nil {
		return err
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	return nil
}
