// Package username screens display names before they become visible to
// other children. A name goes through the same detector as journal text —
// a username is just another submission source — plus charset and length
// rules the detector does not care about.
package username

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/model"
)

const (
	minRunes = 3
	maxRunes = 20
)

// Validation errors distinguishable at the call site: charset/length
// problems get a retry prompt, a detection hit gets suggested alternatives.
var (
	ErrTooShort    = errors.New("username: too short")
	ErrTooLong     = errors.New("username: too long")
	ErrBadCharset  = errors.New("username: only letters, digits, underscore and hyphen allowed")
	ErrUnsafe      = errors.New("username: contains unsafe content")
	ErrFlaggedWord = errors.New("username: contains a flagged word")
)

// Screener validates usernames against the detection taxonomy.
type Screener struct {
	det *detect.Detector
}

// NewScreener wraps a detector. The detector must not be nil.
func NewScreener(det *detect.Detector) *Screener {
	return &Screener{det: det}
}

// Validate checks a proposed username. Charset and length rules run first;
// then the name goes through the detector. Any tier match rejects, and so
// does a bare context-word flag — "die" is never an acceptable username
// fragment even where a journal sentence would only carry an advisory flag.
func (s *Screener) Validate(name string) error {
	runes := []rune(name)
	if len(runes) < minRunes {
		return ErrTooShort
	}
	if len(runes) > maxRunes {
		return ErrTooLong
	}
	for _, r := range runes {
		if !validRune(r) {
			return ErrBadCharset
		}
	}

	// Usernames squeeze words together; give the detector word boundaries.
	res, err := s.det.Detect(spaced(name))
	if err != nil {
		// Fail closed: an unscreenable name is a rejected name.
		return fmt.Errorf("username: screening unavailable: %w", err)
	}
	if res.Tier != model.TierNone {
		return ErrUnsafe
	}
	if len(res.ContextSensitiveFlags) > 0 {
		return fmt.Errorf("%w: %s", ErrFlaggedWord, strings.Join(res.ContextSensitiveFlags, ", "))
	}
	return nil
}

func validRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// spaced rewrites separator runes as spaces so "want_to_die" reads as
// "want to die" to the phrase matcher. The despaced matching pass catches
// names with no separators at all.
func spaced(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, name)
}
