// Package alert delivers escalation notifications to configured webhook
// channels and owns the quiet-hours suppression policy. The one rule it may
// never break: level-4 notifications are always sent, quiet hours or not.
package alert

import (
	"time"

	"github.com/quillhaven/safeguard/internal/escalate"
)

// Decision is the dispatcher's verdict for one escalation event.
type Decision string

const (
	DecisionSent       Decision = "sent"
	DecisionSuppressed Decision = "suppressed"
	DecisionNoChannels Decision = "no_channels"
)

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp    string   `json:"timestamp"`
	RecordID     string   `json:"record_id"`
	SubjectID    string   `json:"subject_id"`
	Source       string   `json:"source"`
	Tier         string   `json:"tier"`
	Category     string   `json:"category"`
	Level        int      `json:"escalation_level"`
	Keywords     []string `json:"keywords"`
	ContextFlags []string `json:"context_flags,omitempty"`
	TaxonomyHash string   `json:"taxonomy_hash"`
	Type         string   `json:"type,omitempty"` // "classifier_error" for fail-closed events
}

// Dispatcher fans out escalation events to matching webhook channels.
type Dispatcher struct {
	channels   []ChannelConfig
	quietHours QuietHours
}

// NewDispatcher creates a Dispatcher from a notification config.
// Returns nil if no channels are configured (callers should nil-check).
func NewDispatcher(cfg Config) *Dispatcher {
	if len(cfg.Channels) == 0 {
		return nil
	}
	return &Dispatcher{channels: cfg.Channels, quietHours: cfg.QuietHours}
}

// Decide returns whether a notification at the given level would be sent or
// suppressed at the given time. Level 4 always sends; lower levels are
// suppressed inside the quiet-hours window.
func (d *Dispatcher) Decide(level escalate.Level, now time.Time) Decision {
	if d == nil || len(d.channels) == 0 {
		return DecisionNoChannels
	}
	if escalate.BypassesQuietHours(level) {
		return DecisionSent
	}
	if d.quietHours.InWindow(now) {
		return DecisionSuppressed
	}
	return DecisionSent
}

// Dispatch sends the event to all channels whose min_level admits it.
// Fires goroutines — does not block the caller. Quiet-hours policy is the
// caller's concern via Decide; Dispatch delivers unconditionally.
func (d *Dispatcher) Dispatch(event Event) {
	if d == nil {
		return
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}
	for _, ch := range d.channels {
		if matches(ch, event) {
			go Send(ch, event)
		}
	}
}

func matches(ch ChannelConfig, event Event) bool {
	min := ch.MinLevel
	if min == 0 {
		min = escalate.LevelModerate
	}
	return escalate.Level(event.Level) >= min
}
