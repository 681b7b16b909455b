package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/detect"
	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

var scanTaxonomy string

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanTaxonomy, "taxonomy", "", "Path to taxonomy overlay YAML")
}

var scanCmd = &cobra.Command{
	Use:   "scan [text]",
	Short: "Classify a piece of text",
	Long: "Runs text through the detection pipeline and prints the result as JSON.\n" +
		"Reads from stdin when no argument is given. Nothing is persisted;\n" +
		"use the server for recorded detections.",
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	tx, err := taxonomy.Load(scanTaxonomy)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	res, err := detect.New(tx).Detect(text)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	level := escalate.LevelFor(res.Tier)
	out := struct {
		Tier                  string   `json:"tier"`
		Keywords              []string `json:"keywords"`
		Category              string   `json:"category"`
		RequiresEscalation    bool     `json:"requires_escalation"`
		ContextSensitiveFlags []string `json:"context_sensitive_flags"`
		EscalationLevel       int      `json:"escalation_level"`
		LevelLabel            string   `json:"level_label"`
		TaxonomyVersion       string   `json:"taxonomy_version"`
	}{
		Tier:                  string(res.Tier),
		Keywords:              res.Keywords,
		Category:              string(res.Category),
		RequiresEscalation:    res.RequiresEscalation,
		ContextSensitiveFlags: res.ContextSensitiveFlags,
		EscalationLevel:       int(level),
		LevelLabel:            escalate.Label(level),
		TaxonomyVersion:       tx.Version(),
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
	return nil
}
