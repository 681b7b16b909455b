package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "safeguard",
	Short: "Safeguarding trigger detection and escalation engine",
	Long: "Deterministic first line of defense for children's free-text content.\n" +
		"Classifies journal entries, chat messages, and usernames against a tiered\n" +
		"trigger taxonomy, resists trivial evasion, and maps findings onto a bounded\n" +
		"escalation policy with auditable records.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// defaultDir is where safeguard keeps its taxonomy overlay, record database,
// and audit log unless told otherwise.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".safeguard"
	}
	return filepath.Join(home, ".safeguard")
}

func defaultRecordDB() string { return filepath.Join(defaultDir(), "records.db") }
func defaultAuditLog() string { return filepath.Join(defaultDir(), "audit.jsonl") }
