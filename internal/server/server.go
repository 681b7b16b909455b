// Package server exposes the detection pipeline over HTTP: submit text, get
// the classification back, and leave a persisted record, an audit entry, and
// (when warranted) a notification behind. Classifier failures fail closed —
// the caller gets an explicit error, never a silent "no match".
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quillhaven/safeguard/internal/alert"
	"github.com/quillhaven/safeguard/internal/audit"
	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/model"
	"github.com/quillhaven/safeguard/internal/record"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

// maxInputRunes bounds a single submission. Longer entries are rejected so
// the caller chunks them; silent truncation could drop the very sentence
// that should have fired.
const maxInputRunes = 4096

const isoFormat = "2006-01-02T15:04:05.000Z"

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	TaxonomyPath    string
	AlertConfigPath string
	AuditLogPath    string
	RecordDBPath    string
}

// Server wires detector, record store, audit log, and notification
// dispatcher behind an HTTP API. The detector is swapped atomically on
// taxonomy hot-reload.
type Server struct {
	mu         sync.RWMutex
	det        *detect.Detector
	dispatcher *alert.Dispatcher

	store    *record.Store
	auditLog *audit.Log
	log      *zap.Logger
	cfg      Config

	httpServer *http.Server
}

// New creates a server with loaded taxonomy, notification config, record
// store, and audit log.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tx, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	alertCfg, err := alert.LoadConfig(cfg.AlertConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load alert config: %w", err)
	}

	store, err := record.OpenStore(cfg.RecordDBPath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	s := &Server{
		det:        detect.New(tx),
		dispatcher: alert.NewDispatcher(alertCfg),
		store:      store,
		auditLog:   auditLog,
		log:        logger,
		cfg:        cfg,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP routing table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/detections", s.handleDetect)
	mux.HandleFunc("GET /v1/records", s.handleListRecords)
	mux.HandleFunc("GET /v1/records/pending", s.handlePendingReview)
	mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)
	mux.HandleFunc("POST /v1/records/{id}/review", s.handleReview)
	mux.HandleFunc("GET /v1/taxonomy", s.handleTaxonomy)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Serve starts the HTTP server. Blocks until Shutdown.
func (s *Server) Serve() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close releases the record store and audit log.
func (s *Server) Close() error {
	var firstErr error
	if err := s.store.Close(); err != nil {
		firstErr = err
	}
	if s.auditLog != nil {
		if err := s.auditLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReloadTaxonomy reloads the taxonomy from disk and atomically swaps the
// detector. Called by the hot-reloader on file change. In-flight requests
// finish on the snapshot they started with.
func (s *Server) ReloadTaxonomy() error {
	tx, err := taxonomy.Load(s.cfg.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("reload taxonomy: %w", err)
	}

	s.mu.Lock()
	old := s.det.Taxonomy()
	s.det = detect.New(tx)
	s.mu.Unlock()

	s.log.Info("taxonomy reloaded",
		zap.String("version", tx.Version()),
		zap.String("hash", tx.Hash()))

	if s.auditLog != nil {
		s.auditLog.Record(audit.Entry{
			Event:        audit.EventTaxonomyReload,
			Detail:       fmt.Sprintf("previous %s", old.Hash()),
			TaxonomyHash: tx.Hash(),
		})
	}
	return nil
}

func (s *Server) detector() *detect.Detector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.det
}

type detectRequest struct {
	SubjectID string `json:"subject_id"`
	Source    string `json:"source"`
	Text      string `json:"text"`
}

type detectResponse struct {
	model.DetectionResult
	RecordID        string `json:"record_id,omitempty"`
	EscalationLevel int    `json:"escalation_level"`
	Notification    string `json:"notification,omitempty"`
	TaxonomyVersion string `json:"taxonomy_version"`
	TaxonomyHash    string `json:"taxonomy_hash"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubjectID == "" {
		writeError(w, http.StatusBadRequest, "subject_id is required")
		return
	}
	source := model.Source(req.Source)
	if req.Source == "" {
		source = model.SourceJournal
	} else if !source.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source %q", req.Source))
		return
	}
	if len([]rune(req.Text)) > maxInputRunes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds %d runes; submit in chunks", maxInputRunes))
		return
	}

	det := s.detector()
	res, err := det.Detect(req.Text)
	if err != nil {
		s.failClosed(w, req, err)
		return
	}

	tx := det.Taxonomy()
	resp := detectResponse{
		DetectionResult: res,
		EscalationLevel: int(escalate.LevelFor(res.Tier)),
		TaxonomyVersion: tx.Version(),
		TaxonomyHash:    tx.Hash(),
	}

	if res.Tier != model.TierNone {
		rec := record.New(req.SubjectID, source, req.Text, res)
		if err := s.store.Insert(rec); err != nil {
			s.log.Error("record insert failed", zap.Error(err), zap.String("record_id", rec.ID))
			writeError(w, http.StatusInternalServerError, "record persistence failed")
			return
		}
		resp.RecordID = rec.ID
		s.recordAudit(rec, tx.Hash())
		resp.Notification = s.notify(rec, tx.Hash())
	}

	writeJSON(w, http.StatusOK, resp)
}

// failClosed is the classifier-error path: the caller gets an explicit 502
// with fail_closed set, the audit log gets a classifier_error entry, and a
// level-3 notification goes out. A broken classifier must look like an
// incident, not like a quiet day.
func (s *Server) failClosed(w http.ResponseWriter, req detectRequest, err error) {
	s.log.Error("classifier error", zap.Error(err), zap.String("subject_id", req.SubjectID))

	if s.auditLog != nil {
		s.auditLog.Record(audit.Entry{
			Event:     audit.EventClassifierError,
			SubjectID: req.SubjectID,
			Source:    req.Source,
			Detail:    err.Error(),
		})
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(alert.Event{
			SubjectID: req.SubjectID,
			Source:    req.Source,
			Level:     int(escalate.LevelSignificant),
			Type:      "classifier_error",
		})
	}

	writeJSON(w, http.StatusBadGateway, map[string]any{
		"fail_closed": true,
		"error":       "classifier unavailable",
	})
}

func (s *Server) recordAudit(rec *record.Record, taxonomyHash string) {
	if s.auditLog == nil {
		return
	}
	if err := s.auditLog.Record(audit.Entry{
		Event:        audit.EventDetection,
		RecordID:     rec.ID,
		SubjectID:    rec.SubjectID,
		Source:       string(rec.Source),
		Tier:         string(rec.Tier),
		Category:     string(rec.Category),
		Level:        int(rec.Level),
		Keywords:     rec.Keywords,
		ContextFlags: rec.ContextFlags,
		TaxonomyHash: taxonomyHash,
	}); err != nil {
		s.log.Error("audit append failed", zap.Error(err), zap.String("record_id", rec.ID))
	}
}

// notify applies the quiet-hours decision and advances the record status
// accordingly. Returns the decision string for the response body.
func (s *Server) notify(rec *record.Record, taxonomyHash string) string {
	decision := s.dispatcher.Decide(rec.Level, time.Now())
	switch decision {
	case alert.DecisionSent:
		s.dispatcher.Dispatch(alert.Event{
			RecordID:     rec.ID,
			SubjectID:    rec.SubjectID,
			Source:       string(rec.Source),
			Tier:         string(rec.Tier),
			Category:     string(rec.Category),
			Level:        int(rec.Level),
			Keywords:     rec.Keywords,
			ContextFlags: rec.ContextFlags,
			TaxonomyHash: taxonomyHash,
		})
		if _, err := s.store.UpdateStatus(rec.ID, record.StatusNotificationSent, ""); err != nil {
			s.log.Error("status update failed", zap.Error(err), zap.String("record_id", rec.ID))
		}
	case alert.DecisionSuppressed:
		if _, err := s.store.UpdateStatus(rec.ID, record.StatusNotificationSuppressed, ""); err != nil {
			s.log.Error("status update failed", zap.Error(err), zap.String("record_id", rec.ID))
		}
	}
	return string(decision)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	status := record.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = record.StatusLogged
	}
	recs, err := s.store.ListByStatus(status, 100)
	if err != nil {
		s.log.Error("list records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": emptyIfNil(recs)})
}

func (s *Server) handlePendingReview(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.PendingReview()
	if err != nil {
		s.log.Error("pending review failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": emptyIfNil(recs)})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		s.log.Error("get record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type reviewRequest struct {
	Status      string `json:"status"`
	ActionTaken string `json:"action_taken"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	rec, err := s.store.UpdateStatus(id, record.Status(req.Status), req.ActionTaken)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		// Invalid transitions come back as plain errors from the state machine.
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if s.auditLog != nil {
		s.auditLog.Record(audit.Entry{
			Event:    audit.EventReview,
			RecordID: rec.ID,
			Tier:     string(rec.Tier),
			Level:    int(rec.Level),
			Detail:   fmt.Sprintf("%s: %s", rec.Status, rec.ActionTaken),
		})
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	tx := s.detector().Taxonomy()
	writeJSON(w, http.StatusOK, map[string]any{
		"version": tx.Version(),
		"hash":    tx.Hash(),
		"phrase_count": map[string]int{
			"C": tx.PhraseCount(model.TierC),
			"B": tx.PhraseCount(model.TierB),
			"A": tx.PhraseCount(model.TierA),
		},
		"context_words":  tx.ContextWords(),
		"tier_c_phrases": tx.TierCPhrases(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tx := s.detector().Taxonomy()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"taxonomy_hash": tx.Hash(),
		"time":          time.Now().UTC().Format(isoFormat),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func emptyIfNil(recs []*record.Record) []*record.Record {
	if recs == nil {
		return []*record.Record{}
	}
	return recs
}
