package alert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quillhaven/safeguard/internal/escalate"
)

func testEvent(level int) Event {
	return Event{
		RecordID:     "sg-abc123",
		SubjectID:    "child-42",
		Source:       "journal",
		Tier:         "C",
		Category:     "selfHarm",
		Level:        level,
		Keywords:     []string{"kill myself"},
		TaxonomyHash: "sha256:abc",
	}
}

func TestSendSuccess(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := ChannelConfig{URL: srv.URL, Format: "generic"}
	if err := Send(ch, testEvent(4)); err != nil {
		t.Fatalf("send: %v", err)
	}

	var event Event
	if err := json.Unmarshal(got, &event); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if event.RecordID != "sg-abc123" || event.Level != 4 {
		t.Errorf("unexpected delivered event: %+v", event)
	}
}

func TestSendRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := ChannelConfig{URL: srv.URL, Format: "generic"}
	if err := Send(ch, testEvent(4)); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestSendHonorsChannelRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ch := ChannelConfig{Name: "lead", URL: srv.URL, Format: "generic", MaxRetries: 1}
	err := Send(ch, testEvent(4))
	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("max_retries 1: expected a single attempt, got %d", calls)
	}
	if !strings.Contains(err.Error(), "lead") {
		t.Errorf("expected the channel name in the error, got %v", err)
	}
}

func TestSendDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ch := ChannelConfig{URL: srv.URL, Format: "generic"}
	if err := Send(ch, testEvent(4)); err == nil {
		t.Fatal("expected error on 4xx")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestSendSetsHeaders(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := ChannelConfig{URL: srv.URL, Format: "generic", Headers: map[string]string{"Authorization": "Bearer tok"}}
	if err := Send(ch, testEvent(3)); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected header forwarded, got %q", auth)
	}
}

func TestFormatSlackMentionsLevel(t *testing.T) {
	body, err := FormatPayload("slack", testEvent(4))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "level 4 (immediate)") {
		t.Errorf("slack payload missing level header: %s", body)
	}
}

func TestFormatPagerDutySeverity(t *testing.T) {
	cases := map[int]string{4: "critical", 3: "error", 2: "warning"}
	for level, want := range cases {
		body, err := FormatPayload("pagerduty", testEvent(level))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(body), `"severity":"`+want+`"`) {
			t.Errorf("level %d: expected severity %q in %s", level, want, body)
		}
	}
}

func TestDecideQuietHours(t *testing.T) {
	d := NewDispatcher(Config{
		Channels:   []ChannelConfig{{URL: "http://example.invalid", Format: "generic"}},
		QuietHours: QuietHours{Enabled: true, Start: "21:00", End: "07:00"},
	})

	night := time.Date(2025, 8, 15, 23, 30, 0, 0, time.Local)
	day := time.Date(2025, 8, 15, 14, 0, 0, 0, time.Local)

	if got := d.Decide(escalate.LevelSignificant, night); got != DecisionSuppressed {
		t.Errorf("level 3 at night: expected suppressed, got %s", got)
	}
	if got := d.Decide(escalate.LevelImmediate, night); got != DecisionSent {
		t.Errorf("level 4 must bypass quiet hours, got %s", got)
	}
	if got := d.Decide(escalate.LevelSignificant, day); got != DecisionSent {
		t.Errorf("level 3 in the day: expected sent, got %s", got)
	}
}

func TestDecideNoChannels(t *testing.T) {
	var d *Dispatcher
	if got := d.Decide(escalate.LevelImmediate, time.Now()); got != DecisionNoChannels {
		t.Errorf("nil dispatcher: expected no_channels, got %s", got)
	}
	if NewDispatcher(Config{}) != nil {
		t.Error("expected nil dispatcher for empty config")
	}
}

func TestQuietHoursWindowCrossesMidnight(t *testing.T) {
	q := QuietHours{Enabled: true, Start: "21:00", End: "07:00"}
	cases := []struct {
		hour, min int
		want      bool
	}{
		{20, 59, false},
		{21, 0, true},
		{23, 59, true},
		{0, 0, true},
		{6, 59, true},
		{7, 0, false},
		{12, 0, false},
	}
	for _, c := range cases {
		now := time.Date(2025, 8, 15, c.hour, c.min, 0, 0, time.Local)
		if got := q.InWindow(now); got != c.want {
			t.Errorf("InWindow(%02d:%02d) = %v, expected %v", c.hour, c.min, got, c.want)
		}
	}
}

func TestDispatchFiltersByMinLevel(t *testing.T) {
	hits := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(Config{Channels: []ChannelConfig{
		{Name: "lead", URL: srv.URL, Format: "generic", MinLevel: escalate.LevelImmediate},
	}})

	d.Dispatch(testEvent(3))
	select {
	case <-hits:
		t.Error("level 3 event delivered to a min_level 4 channel")
	case <-time.After(200 * time.Millisecond):
	}

	d.Dispatch(testEvent(4))
	select {
	case <-hits:
	case <-time.After(2 * time.Second):
		t.Error("level 4 event never delivered")
	}
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/safeguard-alerts.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Channels) != 0 || cfg.QuietHours.Enabled {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadClock(t *testing.T) {
	cfg := Config{QuietHours: QuietHours{Enabled: true, Start: "25:99", End: "07:00"}}
	if err := cfg.validate(); err == nil {
		t.Error("expected invalid clock time to be rejected")
	}
}

func TestLoadConfigRejectsNegativeRetries(t *testing.T) {
	cfg := Config{Channels: []ChannelConfig{{Name: "lead", URL: "http://example.invalid", MaxRetries: -1}}}
	if err := cfg.validate(); err == nil {
		t.Error("expected negative max_retries to be rejected")
	}
}
