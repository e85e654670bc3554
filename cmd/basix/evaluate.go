package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

var (
	evalInitiator     string
	evalTarget        string
	evalProject       string
	evalTargetProject string
	evalMessage       string
	evalJSON          bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an incoming collaboration request",
	Long: `Score a bilateral collaboration request and decide whether to
approve it, flag it for review, or decline it.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalInitiator, "initiator", "", "requesting user ID (required)")
	evaluateCmd.Flags().StringVar(&evalTarget, "target", "", "target user ID (required)")
	evaluateCmd.Flags().StringVar(&evalProject, "project", "", "initiator's project ID")
	evaluateCmd.Flags().StringVar(&evalTargetProject, "target-project", "", "target's project ID")
	evaluateCmd.Flags().StringVar(&evalMessage, "message", "", "request message")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "emit raw JSON")
	evaluateCmd.MarkFlagRequired("initiator")
	evaluateCmd.MarkFlagRequired("target")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	request := &models.CollaborationRequest{
		ID:              uuid.NewString(),
		InitiatorID:     evalInitiator,
		TargetUserID:    evalTarget,
		ProjectID:       evalProject,
		TargetProjectID: evalTargetProject,
		Message:         evalMessage,
		CreatedAt:       time.Now().UTC(),
	}

	evaluation := a.engine.Evaluate(ctx, request)

	if evalJSON {
		return json.NewEncoder(os.Stdout).Encode(evaluation)
	}

	fmt.Printf("📋 Request %s → %s\n", evalInitiator, evalTarget)
	fmt.Printf("Decision: %s (confidence %.2f)\n", evaluation.Decision, evaluation.Confidence)
	if evaluation.Metrics != nil {
		fmt.Printf("Overall score: %.2f (%s)\n", evaluation.Metrics.Overall(), evaluation.ScoreLevel)
		fmt.Printf("Success probability: %.2f\n", evaluation.SuccessProbability)
	}
	for _, reason := range evaluation.Reasoning {
		fmt.Printf("  • %s\n", reason)
	}
	for _, risk := range evaluation.RiskFactors {
		fmt.Printf("  ⚠ %s\n", risk)
	}
	for key, value := range evaluation.SuggestedTerms {
		fmt.Printf("  term: %s = %s\n", key, value)
	}
	return nil
}
