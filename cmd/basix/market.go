package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tweenwrld/basix-marketplace/internal/market"
)

var (
	marketDays   int
	marketSocial float64
	marketJSON   bool
	marketAsset  string
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Marketplace analytics",
}

var marketTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Analyze recent market trends",
	RunE:  runMarketTrends,
}

var marketPredictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict an asset's performance under current conditions",
	RunE:  runMarketPredict,
}

func init() {
	marketTrendsCmd.Flags().IntVar(&marketDays, "days", 30, "analysis window in days")
	marketTrendsCmd.Flags().Float64Var(&marketSocial, "social-sentiment", 0.5, "external sentiment signal in [0,1]")
	marketTrendsCmd.Flags().BoolVar(&marketJSON, "json", false, "emit raw JSON")

	marketPredictCmd.Flags().StringVar(&marketAsset, "asset", "", "asset ID (required)")
	marketPredictCmd.Flags().IntVar(&marketDays, "days", 30, "analysis window in days")
	marketPredictCmd.Flags().BoolVar(&marketJSON, "json", false, "emit raw JSON")
	marketPredictCmd.MarkFlagRequired("asset")

	marketCmd.AddCommand(marketTrendsCmd)
	marketCmd.AddCommand(marketPredictCmd)
}

func runMarketTrends(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := trendReport(ctx, a)
	if err != nil {
		return err
	}

	if marketJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("📈 Market trends (last %d days)\n", marketDays)
	fmt.Printf("Sentiment: %s (confidence %.2f)\n", report.Sentiment.Overall, report.Sentiment.Confidence)
	fmt.Printf("Health score: %.1f/100\n", report.HealthScore)
	fmt.Printf("Volume: %.2f total, %.2f/day (%s)\n",
		report.Volume.TotalVolume, report.Volume.AvgDailyVolume, report.Volume.Trend)
	fmt.Printf("Price: %.2f avg, volatility %.2f (%s)\n",
		report.Price.AvgPrice, report.Price.Volatility, report.Price.Trend)
	fmt.Printf("Liquidity: %s depth, ratio %.2f\n",
		report.Liquidity.MarketDepth, report.Liquidity.LiquidityRatio)
	for _, rec := range report.Recommendations {
		fmt.Printf("  • %s\n", rec)
	}
	return nil
}

func runMarketPredict(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	asset, err := a.store.GetAsset(ctx, marketAsset)
	if err != nil {
		return fmt.Errorf("load asset %s: %w", marketAsset, err)
	}

	report, err := trendReport(ctx, a)
	if err != nil {
		return err
	}

	prediction := a.analyzer.PredictPerformance(*asset, market.Conditions{
		Sentiment:   report.Sentiment.Overall,
		Volatility:  report.Price.Volatility,
		VolumeTrend: report.Sentiment.VolumeTrend,
	})

	if marketJSON {
		return json.NewEncoder(os.Stdout).Encode(prediction)
	}

	fmt.Printf("🔮 Prediction for asset %s (%s)\n", asset.ID, asset.Type)
	fmt.Printf("Performance score: %.3f\n", prediction.PerformanceScore)
	fmt.Printf("Price bands: %.2f / %.2f / %.2f (conservative/moderate/optimistic)\n",
		prediction.PriceBands.Conservative, prediction.PriceBands.Moderate, prediction.PriceBands.Optimistic)
	fmt.Printf("Risk level: %s\n", prediction.RiskLevel)
	fmt.Printf("Recommendation: %s\n", prediction.Recommendation)
	return nil
}

func trendReport(ctx context.Context, a *app) (*market.TrendReport, error) {
	window := time.Duration(marketDays) * 24 * time.Hour
	since := time.Now().Add(-window)

	transactions, err := a.store.ListTransactions(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	assets, err := a.store.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	return a.analyzer.AnalyzeTrends(transactions, assets, window, marketSocial), nil
}
