package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/audit"
)

var auditLogPath string

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditLogPath, "log", defaultAuditLog(), "Path to audit log JSONL file")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Verify the audit log hash chain",
	Long: "Walks the JSONL audit log and validates that every entry's prev_hash\n" +
		"matches the hash of the line before it. Exit code 1 on a broken chain.",
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	result := audit.Verify(auditLogPath)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
