// Package escalate maps trigger tiers onto operational escalation levels and
// carries the response-time policy table. It is deliberately separate from
// the detector so escalation policy can evolve without touching matching.
package escalate

import (
	"fmt"
	"time"

	"github.com/quillhaven/safeguard/internal/model"
)

// Level is the operational escalation level, 1 through 4.
type Level int

const (
	LevelInformational Level = 1 // general / no concern
	LevelModerate      Level = 2 // moderate concern
	LevelSignificant   Level = 3 // significant concern
	LevelImmediate     Level = 4 // immediate risk
)

// LevelFor maps a trigger tier to its escalation level.
// Total over all tier values: C→4, B→3, A→2, none→1.
func LevelFor(tier model.TriggerTier) Level {
	switch tier {
	case model.TierC:
		return LevelImmediate
	case model.TierB:
		return LevelSignificant
	case model.TierA:
		return LevelModerate
	default:
		return LevelInformational
	}
}

// Label returns a human-readable label for the level.
func Label(l Level) string {
	switch l {
	case LevelImmediate:
		return "immediate"
	case LevelSignificant:
		return "significant"
	case LevelModerate:
		return "moderate"
	case LevelInformational:
		return "informational"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// ResponseWindow returns the maximum time a human response may take for a
// level. Zero means no response obligation. Enforcement of these windows
// belongs to the orchestration layer, not this engine.
func ResponseWindow(l Level) time.Duration {
	switch l {
	case LevelImmediate:
		return time.Hour
	case LevelSignificant:
		return 24 * time.Hour
	case LevelModerate:
		return 48 * time.Hour
	default:
		return 0
	}
}

// BypassesQuietHours reports whether notifications for the level must be
// delivered regardless of quiet-hours suppression. Only level 4 bypasses;
// this is the single contractual override the engine imposes on the
// notification layer.
func BypassesQuietHours(l Level) bool {
	return l == LevelImmediate
}

// RequiresHumanReview reports whether a record at this level enters the
// safeguarding lead's review queue.
func RequiresHumanReview(l Level) bool {
	return l >= LevelSignificant
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l >= LevelInformational && l <= LevelImmediate
}
