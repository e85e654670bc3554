package market

import (
	"math"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// Conditions are the market-wide inputs to performance prediction,
// typically taken from a TrendReport.
type Conditions struct {
	Sentiment   string  `json:"sentiment"`  // bullish, neutral, bearish
	Volatility  float64 `json:"volatility"` // relative price volatility
	VolumeTrend float64 `json:"volume_trend"`
}

// PriceBands are predicted price levels at three confidence postures.
type PriceBands struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Optimistic   float64 `json:"optimistic"`
}

// Prediction is the output of PredictPerformance.
type Prediction struct {
	PerformanceScore float64    `json:"performance_score"`
	PriceBands       PriceBands `json:"price_predictions"`
	RiskLevel        string     `json:"risk_level"`     // high, medium, low
	Recommendation   string     `json:"recommendation"` // strong_buy, buy, hold, sell
}

// Base growth factor per asset type.
var basePerformance = map[string]float64{
	"NFT":            0.15,
	"Phygital":       0.25,
	"Digital":        0.10,
	"RealWorldAsset": 0.30,
}

const defaultBasePerformance = 0.12

// Utility features multiply expected performance; unknown features carry
// a small generic premium. The combined boost is capped at 2x.
var utilityMultipliers = map[string]float64{
	"streaming_rights":   1.2,
	"revenue_share":      1.4,
	"exclusive_access":   1.15,
	"commercial_license": 1.3,
	"governance_rights":  1.1,
}

const (
	unknownUtilityMultiplier = 1.05
	maxUtilityBoost          = 2.0
)

// PredictPerformance estimates an asset's growth prospects from its type,
// utility features, and current market conditions.
func (a *Analyzer) PredictPerformance(asset models.Asset, conditions Conditions) *Prediction {
	score := baseFactor(asset.Type, conditions.Volatility) *
		utilityBoost(asset.UtilityFeatures) *
		marketFactor(conditions)

	return &Prediction{
		PerformanceScore: score,
		PriceBands: PriceBands{
			Conservative: asset.Price * (1 + score*0.5),
			Moderate:     asset.Price * (1 + score),
			Optimistic:   asset.Price * (1 + score*1.5),
		},
		RiskLevel:      riskLevel(score),
		Recommendation: recommendation(score),
	}
}

func baseFactor(assetType string, volatility float64) float64 {
	base, ok := basePerformance[assetType]
	if !ok {
		base = defaultBasePerformance
	}
	return base * (1 - volatility*0.3)
}

func utilityBoost(features []string) float64 {
	boost := 1.0
	for _, feature := range features {
		if m, ok := utilityMultipliers[feature]; ok {
			boost *= m
		} else {
			boost *= unknownUtilityMultiplier
		}
	}
	return math.Min(boost, maxUtilityBoost)
}

func marketFactor(conditions Conditions) float64 {
	sentimentFactor := 1.0
	switch conditions.Sentiment {
	case "bullish":
		sentimentFactor = 1.2
	case "bearish":
		sentimentFactor = 0.8
	}
	volumeFactor := 0.8 + conditions.VolumeTrend*0.4
	return sentimentFactor * volumeFactor
}

func riskLevel(score float64) string {
	switch {
	case score > 0.3:
		return "high"
	case score > 0.15:
		return "medium"
	default:
		return "low"
	}
}

func recommendation(score float64) string {
	switch {
	case score > 0.25:
		return "strong_buy"
	case score > 0.15:
		return "buy"
	case score > 0.05:
		return "hold"
	default:
		return "sell"
	}
}
