package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillhaven/safeguard/internal/escalate"
	"github.com/quillhaven/safeguard/internal/record"
)

var (
	reviewRecordDB string
	reviewAction   string
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.PersistentFlags().StringVar(&reviewRecordDB, "records", defaultRecordDB(), "Path to record database")

	reviewCmd.AddCommand(reviewListCmd)

	reviewResolveCmd.Flags().StringVar(&reviewAction, "action", "", "What was done (recorded on the record)")
	reviewCmd.AddCommand(reviewResolveCmd)

	reviewEscalateCmd.Flags().StringVar(&reviewAction, "action", "", "What was done (recorded on the record)")
	reviewCmd.AddCommand(reviewEscalateCmd)
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work the escalation review queue",
	Long: "Safeguarding-lead surface over persisted escalation records:\n" +
		"list what awaits review, mark records reviewed and resolved, or hand\n" +
		"them to external services.",
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records awaiting human review, most overdue first",
	RunE:  runReviewList,
}

var reviewResolveCmd = &cobra.Command{
	Use:   "resolve <record-id>",
	Short: "Mark a record human-reviewed and resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewResolve,
}

var reviewEscalateCmd = &cobra.Command{
	Use:   "escalate <record-id>",
	Short: "Mark a record human-reviewed and escalated to external services",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewEscalate,
}

func openReviewStore() (*record.Store, error) {
	store, err := record.OpenStore(reviewRecordDB)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return store, nil
}

func runReviewList(cmd *cobra.Command, args []string) error {
	store, err := openReviewStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.PendingReview()
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("No records awaiting review.")
		return nil
	}

	fmt.Printf("%-16s %-5s %-20s %-6s %-24s %s\n", "ID", "TIER", "CATEGORY", "LEVEL", "STATUS", "DUE")
	now := time.Now().UTC()
	for _, r := range recs {
		due := "-"
		if window := escalate.ResponseWindow(r.Level); window > 0 {
			remaining := r.CreatedAt.Add(window).Sub(now)
			if remaining < 0 {
				due = fmt.Sprintf("OVERDUE %s", (-remaining).Round(time.Minute))
			} else {
				due = fmt.Sprintf("in %s", remaining.Round(time.Minute))
			}
		}
		fmt.Printf("%-16s %-5s %-20s %-6d %-24s %s\n",
			r.ID, r.Tier, r.Category, r.Level, r.Status, due)
	}
	return nil
}

func runReviewResolve(cmd *cobra.Command, args []string) error {
	return applyReview(args[0], record.StatusResolved)
}

func runReviewEscalate(cmd *cobra.Command, args []string) error {
	return applyReview(args[0], record.StatusEscalatedExternal)
}

// applyReview advances a record through human review into a terminal state.
// Records already past review go straight to the terminal status.
func applyReview(id string, terminal record.Status) error {
	store, err := openReviewStore()
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.Get(id)
	if err != nil {
		return err
	}

	// Level 3+ records pass through human review; lower levels close directly.
	if escalate.RequiresHumanReview(r.Level) && r.Status != record.StatusHumanReviewed {
		if _, err := store.UpdateStatus(id, record.StatusHumanReviewed, reviewAction); err != nil {
			return err
		}
	}
	r, err = store.UpdateStatus(id, terminal, reviewAction)
	if err != nil {
		return err
	}

	fmt.Printf("%s -> %s\n", r.ID, r.Status)
	return nil
}
