package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quillhaven/safeguard/internal/server"
)

var (
	serveAddr     string
	serveTaxonomy string
	serveAlerts   string
	serveAuditLog string
	serveRecordDB string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8350", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveTaxonomy, "taxonomy", "", "Path to taxonomy overlay YAML")
	serveCmd.Flags().StringVar(&serveAlerts, "alerts", "", "Path to notification config YAML")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", defaultAuditLog(), "Path to audit log JSONL file")
	serveCmd.Flags().StringVar(&serveRecordDB, "records", defaultRecordDB(), "Path to record database")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the detection HTTP server",
	Long: "Runs safeguard as an HTTP service. Detections are persisted, audited,\n" +
		"and dispatched to notification channels. The taxonomy overlay hot-reloads\n" +
		"on file change.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg := server.Config{
		Addr:            serveAddr,
		TaxonomyPath:    serveTaxonomy,
		AlertConfigPath: serveAlerts,
		AuditLogPath:    serveAuditLog,
		RecordDBPath:    serveRecordDB,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := server.NewReloader(srv, logger, []string{serveTaxonomy, serveAlerts})
	if err != nil {
		logger.Warn("hot-reload disabled", zap.Error(err))
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	return srv.Serve()
}
