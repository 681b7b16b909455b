package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/mcpserver"
)

var (
	mcpTaxonomy string
	mcpRecordDB string
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpTaxonomy, "taxonomy", "", "Path to taxonomy overlay YAML")
	mcpCmd.Flags().StringVar(&mcpRecordDB, "records", defaultRecordDB(), "Path to record database")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", defaultAuditLog(), "Path to audit log JSONL file")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for assistant integration",
	Long: "Runs safeguard as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: scan, precheck, pending, review.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := mcpserver.New(mcpserver.Config{
		TaxonomyPath: mcpTaxonomy,
		RecordDBPath: mcpRecordDB,
		AuditLogPath: mcpAuditLog,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "safeguard MCP server running on stdio")
	return srv.Run(ctx)
}
