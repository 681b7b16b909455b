package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/model"
	"github.com/quillhaven/safeguard/internal/taxonomy"
)

var (
	taxonomyPath    string
	taxonomyPhrases bool
)

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.Flags().StringVar(&taxonomyPath, "taxonomy", "", "Path to taxonomy overlay YAML")
	taxonomyCmd.Flags().BoolVar(&taxonomyPhrases, "phrases", false, "Include the full phrase lists")
}

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Show the active taxonomy",
	Long: "Prints the taxonomy version, content hash, and per-tier category\n" +
		"summary. The hash identifies exactly which phrase set produced a\n" +
		"detection; audit entries carry it for reproducibility.",
	RunE: runTaxonomy,
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	tx, err := taxonomy.Load(taxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	type tierSummary struct {
		Categories []string            `json:"categories"`
		Phrases    map[string][]string `json:"phrases,omitempty"`
	}
	summarize := func(tier model.TriggerTier) tierSummary {
		var s tierSummary
		if taxonomyPhrases {
			s.Phrases = map[string][]string{}
		}
		for _, cat := range tx.Entries(tier) {
			s.Categories = append(s.Categories, string(cat.Category))
			if taxonomyPhrases {
				s.Phrases[string(cat.Category)] = cat.Phrases
			}
		}
		return s
	}

	out := map[string]any{
		"version": tx.Version(),
		"hash":    tx.Hash(),
		"phrase_count": map[string]int{
			"C": tx.PhraseCount(model.TierC),
			"B": tx.PhraseCount(model.TierB),
			"A": tx.PhraseCount(model.TierA),
		},
		"context_words": tx.ContextWords(),
		"tier_c":        summarize(model.TierC),
		"tier_b":        summarize(model.TierB),
		"tier_a":        summarize(model.TierA),
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
	return nil
}
