package alert

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quillhaven/safeguard/internal/escalate"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event Event) ([]byte, error) {
	label := escalate.Label(escalate.Level(event.Level))

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("safeguard: level %d (%s)", event.Level, label),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Record:* %s", event.RecordID)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Source:* %s", event.Source)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Category:* %s", event.Category)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Matched:* %s", strings.Join(event.Keywords, ", "))},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "info"
	switch {
	case event.Level >= int(escalate.LevelImmediate):
		severity = "critical"
	case event.Level >= int(escalate.LevelSignificant):
		severity = "error"
	case event.Level >= int(escalate.LevelModerate):
		severity = "warning"
	}

	summary := fmt.Sprintf("safeguard level %d: %s", event.Level, event.Category)
	if event.Type != "" {
		summary = fmt.Sprintf("safeguard %s", event.Type)
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  summary,
			"severity": severity,
			"source":   "safeguard",
			"custom_details": map[string]any{
				"record_id":     event.RecordID,
				"subject_id":    event.SubjectID,
				"tier":          event.Tier,
				"category":      event.Category,
				"keywords":      event.Keywords,
				"taxonomy_hash": event.TaxonomyHash,
			},
		},
	}
	return json.Marshal(payload)
}
