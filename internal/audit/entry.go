package audit

// Event names the kind of audit entry.
const (
	EventDetection       = "detection"
	EventClassifierError = "classifier_error"
	EventNotification    = "notification"
	EventReview          = "review"
	EventTaxonomyReload  = "taxonomy_reload"
)

// Entry is one line in the hash-chained JSONL audit log.
// All fields are scalars or string slices (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp    string   `json:"ts"`
	Event        string   `json:"event"`
	RecordID     string   `json:"record_id,omitempty"`
	SubjectID    string   `json:"subject_id,omitempty"`
	Source       string   `json:"source,omitempty"`
	Tier         string   `json:"tier"`
	Category     string   `json:"category,omitempty"`
	Level        int      `json:"escalation_level,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	ContextFlags []string `json:"context_flags,omitempty"`
	Detail       string   `json:"detail,omitempty"`
	TaxonomyHash string   `json:"taxonomy_hash"`
	PrevHash     string   `json:"prev_hash"`
}
