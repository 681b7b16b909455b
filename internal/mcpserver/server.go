// Package mcpserver exposes the detection pipeline over the Model Context
// Protocol, so an assistant embedded in the journaling app can scan drafts,
// fetch the pre-submit warning list, and work the review queue over stdio.
package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quillhaven/safeguard/internal/audit"
	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/record"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

// Config holds MCP server configuration.
type Config struct {
	TaxonomyPath string
	RecordDBPath string
	AuditLogPath string
}

// Server wraps the MCP SDK server around the detector and record store.
type Server struct {
	mcpServer *mcpsdk.Server
	det       *detect.Detector
	store     *record.Store
	auditLog  *audit.Log
}

// New creates an MCP server with a loaded taxonomy and record store.
func New(cfg Config) (*Server, error) {
	tx, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
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
		det:      detect.New(tx),
		store:    store,
		auditLog: auditLog,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "safeguard",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
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

// registerTools adds all safeguard tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "safeguard_scan",
		Description: "Classify a piece of text against the safeguarding taxonomy. Returns tier, category, matched keywords, and escalation level. Creates a persisted record when a tier matches.",
	}, s.handleScan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "safeguard_precheck",
		Description: "Return the flattened list of immediate-risk phrases for client-side pre-submit warnings. No text is classified and nothing is recorded.",
	}, s.handlePrecheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "safeguard_pending",
		Description: "List escalation records awaiting human review, most overdue first.",
	}, s.handlePending)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "safeguard_review",
		Description: "Apply a review outcome to an escalation record: notification_sent, human_reviewed, resolved, or escalated_external, with the action taken.",
	}, s.handleReview)
}
