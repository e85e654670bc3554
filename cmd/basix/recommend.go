package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	recommendUserID    string
	recommendProjectID string
	recommendAssetIDs  []string
	recommendFilters   []string
	recommendJSON      bool
	recommendSave      bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Find optimal collaboration partners for a user",
	Long: `Run the full recommendation pipeline: discover candidates through
the collaboration network, the semantic catalogue, and strategic fit,
score every pair bilaterally, and rank the results.`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendUserID, "user", "", "user ID to recommend partners for (required)")
	recommendCmd.Flags().StringVar(&recommendProjectID, "project", "", "scope the analysis to one project")
	recommendCmd.Flags().StringSliceVar(&recommendAssetIDs, "asset", nil, "include an asset in the requester's context (repeatable)")
	recommendCmd.Flags().StringSliceVar(&recommendFilters, "filter", nil, "discovery filter as key=value (repeatable)")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "emit raw JSON")
	recommendCmd.Flags().BoolVar(&recommendSave, "save", false, "persist recommendations for outcome tracking")
	recommendCmd.MarkFlagRequired("user")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	filters, err := parseFilters(recommendFilters)
	if err != nil {
		return err
	}

	recommendations := a.engine.Recommend(ctx, recommendUserID, recommendProjectID, recommendAssetIDs, filters)

	if recommendSave {
		for _, rec := range recommendations {
			if err := a.store.SaveRecommendation(ctx, recommendUserID, rec); err != nil {
				logger.WithError(err).WithField("recommendation_id", rec.ID).Warn("Failed to persist recommendation")
			}
		}
	}

	if recommendJSON {
		return json.NewEncoder(os.Stdout).Encode(recommendations)
	}

	if len(recommendations) == 0 {
		fmt.Println("No collaboration partners met the confidence bar.")
		return nil
	}

	fmt.Printf("🤝 Top collaboration partners for %s\n", recommendUserID)
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	for i, rec := range recommendations {
		fmt.Printf("\n%d. %s (%s)\n", i+1, rec.PartnerName, rec.PartnerID)
		fmt.Printf("   Score: %.2f (%s)   Confidence: %.2f\n",
			rec.Metrics.Overall(), rec.ScoreLevel, rec.Confidence)
		for _, reason := range rec.Reasoning {
			fmt.Printf("   • %s\n", reason)
		}
		fmt.Printf("   Suggested structure: %s (%s governance)\n",
			rec.Structure.Type, rec.Structure.GovernanceModel)
		for _, insight := range rec.RuleInsights {
			fmt.Printf("   ◦ %s\n", insight)
		}
	}
	return nil
}

func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
