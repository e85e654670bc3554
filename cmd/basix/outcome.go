package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tweenwrld/basix-marketplace/internal/history"
)

var (
	outcomeUser      string
	outcomePartner   string
	outcomeCompleted bool
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record how a recommended collaboration turned out",
	Long: `Feed the result of an acted-on recommendation back into the
history store. Recorded outcomes sharpen future confidence scores for
the same pair.`,
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().StringVar(&outcomeUser, "user", "", "requesting user ID (required)")
	outcomeCmd.Flags().StringVar(&outcomePartner, "partner", "", "partner user ID (required)")
	outcomeCmd.Flags().BoolVar(&outcomeCompleted, "completed", false, "the collaboration completed successfully")
	outcomeCmd.MarkFlagRequired("user")
	outcomeCmd.MarkFlagRequired("partner")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	err = store.RecordOutcome(ctx, outcomeUser, outcomePartner, history.Outcome{
		Completed:  outcomeCompleted,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	fmt.Printf("Recorded outcome for %s ↔ %s (completed=%t)\n", outcomeUser, outcomePartner, outcomeCompleted)
	fmt.Printf("Validation score is now %.2f\n", store.ValidationScore(ctx, outcomeUser, outcomePartner))
	return nil
}
