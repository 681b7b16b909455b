package mcpserver

import (
	"context"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quillhaven/safeguard/internal/audit"
	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/model"
	"github.com/quillhaven/safeguard/internal/record"
)

// --- Input/Output types ---

// ScanInput defines parameters for the safeguard_scan tool.
type ScanInput struct {
	SubjectID string `json:"subject_id" jsonschema:"pseudonymous identifier of the child the text belongs to"`
	Source    string `json:"source,omitempty" jsonschema:"where the text came from (journal/chat/username), default journal"`
	Text      string `json:"text" jsonschema:"text to classify"`
}

// ScanOutput is the classification plus record metadata.
type ScanOutput struct {
	Tier                  string   `json:"tier"`
	Keywords              []string `json:"keywords"`
	Category              string   `json:"category"`
	RequiresEscalation    bool     `json:"requires_escalation"`
	ContextSensitiveFlags []string `json:"context_sensitive_flags"`
	EscalationLevel       int      `json:"escalation_level"`
	RecordID              string   `json:"record_id,omitempty"`
	FailClosed            bool     `json:"fail_closed,omitempty"`
	Error                 string   `json:"error,omitempty"`
}

// PrecheckInput is empty — no parameters needed.
type PrecheckInput struct{}

// PrecheckOutput carries the flattened immediate-risk phrase list.
type PrecheckOutput struct {
	TaxonomyVersion string   `json:"taxonomy_version"`
	TaxonomyHash    string   `json:"taxonomy_hash"`
	Phrases         []string `json:"phrases"`
}

// PendingInput is empty — no parameters needed.
type PendingInput struct{}

// PendingOutput lists records awaiting human review.
type PendingOutput struct {
	Records []PendingItem `json:"records"`
}

// PendingItem summarizes one record in the review queue.
type PendingItem struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Tier      string `json:"tier"`
	Category  string `json:"category"`
	Level     int    `json:"escalation_level"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ReviewInput defines parameters for the safeguard_review tool.
type ReviewInput struct {
	RecordID    string `json:"record_id" jsonschema:"escalation record ID"`
	Status      string `json:"status" jsonschema:"new lifecycle status (notification_sent/human_reviewed/resolved/escalated_external)"`
	ActionTaken string `json:"action_taken,omitempty" jsonschema:"what the reviewer did"`
}

// ReviewOutput confirms the transition.
type ReviewOutput struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ActionTaken string `json:"action_taken,omitempty"`
	Error       string `json:"error,omitempty"`
}

// --- Handlers ---

func (s *Server) handleScan(ctx context.Context, req *mcpsdk.CallToolRequest, input ScanInput) (*mcpsdk.CallToolResult, ScanOutput, error) {
	source := model.Source(input.Source)
	if input.Source == "" {
		source = model.SourceJournal
	}

	res, err := s.det.Detect(input.Text)
	if err != nil {
		// Fail closed: the caller must see an error, never a quiet no-match.
		out := ScanOutput{FailClosed: true, Error: "classifier unavailable"}
		if s.auditLog != nil {
			s.auditLog.Record(audit.Entry{
				Event:     audit.EventClassifierError,
				SubjectID: input.SubjectID,
				Source:    string(source),
				Detail:    err.Error(),
			})
		}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}

	out := ScanOutput{
		Tier:                  string(res.Tier),
		Keywords:              res.Keywords,
		Category:              string(res.Category),
		RequiresEscalation:    res.RequiresEscalation,
		ContextSensitiveFlags: res.ContextSensitiveFlags,
		EscalationLevel:       int(escalate.LevelFor(res.Tier)),
	}

	if res.Tier != model.TierNone && input.SubjectID != "" {
		rec := record.New(input.SubjectID, source, input.Text, res)
		if err := s.store.Insert(rec); err != nil {
			return nil, ScanOutput{}, err
		}
		out.RecordID = rec.ID
		if s.auditLog != nil {
			s.auditLog.Record(audit.Entry{
				Event:        audit.EventDetection,
				RecordID:     rec.ID,
				SubjectID:    rec.SubjectID,
				Source:       string(rec.Source),
				Tier:         string(rec.Tier),
				Category:     string(rec.Category),
				Level:        int(rec.Level),
				Keywords:     rec.Keywords,
				ContextFlags: rec.ContextFlags,
				TaxonomyHash: s.det.Taxonomy().Hash(),
			})
		}
	}

	return nil, out, nil
}

func (s *Server) handlePrecheck(ctx context.Context, req *mcpsdk.CallToolRequest, input PrecheckInput) (*mcpsdk.CallToolResult, PrecheckOutput, error) {
	tx := s.det.Taxonomy()
	return nil, PrecheckOutput{
		TaxonomyVersion: tx.Version(),
		TaxonomyHash:    tx.Hash(),
		Phrases:         tx.TierCPhrases(),
	}, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	recs, err := s.store.PendingReview()
	if err != nil {
		return nil, PendingOutput{}, err
	}

	items := make([]PendingItem, len(recs))
	for i, r := range recs {
		items[i] = PendingItem{
			ID:        r.ID,
			SubjectID: r.SubjectID,
			Tier:      string(r.Tier),
			Category:  string(r.Category),
			Level:     int(r.Level),
			Status:    string(r.Status),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	return nil, PendingOutput{Records: items}, nil
}

func (s *Server) handleReview(ctx context.Context, req *mcpsdk.CallToolRequest, input ReviewInput) (*mcpsdk.CallToolResult, ReviewOutput, error) {
	rec, err := s.store.UpdateStatus(input.RecordID, record.Status(input.Status), input.ActionTaken)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return &mcpsdk.CallToolResult{IsError: true}, ReviewOutput{Error: "record not found"}, nil
		}
		// State machine rejections surface as tool errors, not transport errors.
		return &mcpsdk.CallToolResult{IsError: true}, ReviewOutput{Error: err.Error()}, nil
	}

	if s.auditLog != nil {
		s.auditLog.Record(audit.Entry{
			Event:    audit.EventReview,
			RecordID: rec.ID,
			Tier:     string(rec.Tier),
			Level:    int(rec.Level),
			Detail:   string(rec.Status) + ": " + rec.ActionTaken,
		})
	}

	return nil, ReviewOutput{
		ID:          rec.ID,
		Status:      string(rec.Status),
		ActionTaken: rec.ActionTaken,
	}, nil
}
