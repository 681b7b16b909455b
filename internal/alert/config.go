package alert

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quillhaven/safeguard/internal/escalate"
)

// ChannelConfig defines one webhook notification destination. MaxRetries
// bounds delivery attempts on server errors; zero means the built-in default.
type ChannelConfig struct {
	Name       string            `yaml:"name"        json:"name"`
	URL        string            `yaml:"url"         json:"url"`
	Format     string            `yaml:"format"      json:"format"` // "generic", "slack", "pagerduty"
	MinLevel   escalate.Level    `yaml:"min_level"   json:"min_level"`
	MaxRetries int               `yaml:"max_retries" json:"max_retries,omitempty"`
	Headers    map[string]string `yaml:"headers"     json:"headers,omitempty"`
}

// retryBudget returns the channel's delivery attempt limit.
func (c ChannelConfig) retryBudget() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return defaultMaxRetries
}

// QuietHours is a daily local-time window during which notifications below
// the immediate level are suppressed rather than sent. Start and End are
// "HH:MM"; a window may cross midnight (e.g. 21:00 to 07:00).
type QuietHours struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Start   string `yaml:"start"   json:"start"`
	End     string `yaml:"end"     json:"end"`
}

// Config is the notification section of the safeguard configuration.
type Config struct {
	Channels   []ChannelConfig `yaml:"channels"    json:"channels"`
	QuietHours QuietHours      `yaml:"quiet_hours" json:"quiet_hours"`
}

// DefaultConfig returns the built-in notification configuration: no
// channels, quiet hours disabled. A deployment with no channels still
// records every detection in the audit log and record store.
func DefaultConfig() Config {
	return Config{
		QuietHours: QuietHours{Enabled: false, Start: "21:00", End: "07:00"},
	}
}

// LoadConfig reads a notification config from a YAML file. A missing file
// yields DefaultConfig; a present but malformed file is an error, never a
// silent fallback.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("alert: read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("alert: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for i, ch := range c.Channels {
		if ch.URL == "" {
			return fmt.Errorf("alert: channel %d has no url", i)
		}
		if ch.MinLevel != 0 && !ch.MinLevel.Valid() {
			return fmt.Errorf("alert: channel %q min_level %d out of range", ch.Name, ch.MinLevel)
		}
		if ch.MaxRetries < 0 {
			return fmt.Errorf("alert: channel %q max_retries must not be negative", ch.Name)
		}
	}
	if c.QuietHours.Enabled {
		if _, err := parseClock(c.QuietHours.Start); err != nil {
			return fmt.Errorf("alert: quiet_hours start: %w", err)
		}
		if _, err := parseClock(c.QuietHours.End); err != nil {
			return fmt.Errorf("alert: quiet_hours end: %w", err)
		}
	}
	return nil
}

// parseClock parses "HH:MM" into minutes past midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// InWindow reports whether the local clock time of now falls inside the
// quiet-hours window. Windows crossing midnight are handled.
func (q QuietHours) InWindow(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := parseClock(q.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(q.End)
	if err != nil {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}
