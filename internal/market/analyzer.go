// Package market provides marketplace trend analytics and rule-based
// asset performance prediction over transaction history.
package market

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// VolumeMetrics summarizes traded volume over the analysis window.
type VolumeMetrics struct {
	TotalVolume    float64 `json:"total_volume"`
	AvgDailyVolume float64 `json:"avg_daily_volume"`
	Trend          string  `json:"volume_trend"` // increasing, stable, decreasing
}

// PriceMetrics summarizes price behavior over the analysis window.
type PriceMetrics struct {
	AvgPrice   float64 `json:"avg_price"`
	Volatility float64 `json:"price_volatility"` // stddev relative to mean
	Trend      string  `json:"price_trend"`
}

// TypeDistribution is the asset mix of the marketplace.
type TypeDistribution struct {
	Absolute       map[string]int     `json:"absolute"`
	Percentage     map[string]float64 `json:"percentage"`
	DiversityIndex float64            `json:"diversity_index"`
}

// Sentiment is the blended market mood signal.
type Sentiment struct {
	Overall         string  `json:"overall"` // bullish, neutral, bearish
	Confidence      float64 `json:"confidence"`
	VolumeTrend     float64 `json:"volume_trend"`
	PriceTrend      float64 `json:"price_trend"`
	SocialSentiment float64 `json:"social_sentiment"`
}

// Liquidity describes how readily assets trade.
type Liquidity struct {
	MarketDepth          string  `json:"market_depth"` // high, medium, low
	LiquidityRatio       float64 `json:"liquidity_ratio"`
	TransactionFrequency float64 `json:"transaction_frequency"`
}

// TrendReport is the full output of AnalyzeTrends.
type TrendReport struct {
	Volume          VolumeMetrics    `json:"volume_metrics"`
	Price           PriceMetrics     `json:"price_metrics"`
	Distribution    TypeDistribution `json:"type_distribution"`
	Sentiment       Sentiment        `json:"sentiment"`
	Liquidity       Liquidity        `json:"liquidity"`
	HealthScore     float64          `json:"market_health_score"` // 0-100
	Recommendations []string         `json:"recommendations"`
}

// Analyzer computes market analytics. All methods are pure over their
// inputs; persistence and transport live with the caller.
type Analyzer struct {
	logger *logrus.Logger
}

func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{logger: logger}
}

// AnalyzeTrends builds a trend report over transactions inside the window.
// socialSentiment is an external mood signal in [0,1]; pass 0.5 when no
// social feed is wired.
func (a *Analyzer) AnalyzeTrends(transactions []models.Transaction, assets []models.Asset, window time.Duration, socialSentiment float64) *TrendReport {
	cutoff := time.Now().Add(-window)
	recent := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.Timestamp.Before(cutoff) {
			recent = append(recent, tx)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp.Before(recent[j].Timestamp) })

	report := &TrendReport{
		Volume:       volumeMetrics(recent),
		Price:        priceMetrics(recent),
		Distribution: typeDistribution(assets),
		Sentiment:    marketSentiment(recent, socialSentiment),
		Liquidity:    liquidityMetrics(recent, assets, window),
	}
	report.HealthScore = healthScore(report.Volume, report.Price, report.Sentiment)
	report.Recommendations = recommendations(report.Volume, report.Price, report.Sentiment)

	a.logger.WithFields(logrus.Fields{
		"transactions": len(recent),
		"sentiment":    report.Sentiment.Overall,
		"health_score": report.HealthScore,
	}).Debug("Market trend analysis complete")

	return report
}

func volumeMetrics(transactions []models.Transaction) VolumeMetrics {
	if len(transactions) == 0 {
		return VolumeMetrics{Trend: "stable"}
	}

	total := 0.0
	byDay := make(map[string]float64)
	var dayOrder []string
	for _, tx := range transactions {
		total += tx.Volume
		day := tx.Timestamp.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] += tx.Volume
	}

	daily := make([]float64, len(dayOrder))
	for i, day := range dayOrder {
		daily[i] = byDay[day]
	}

	trend := "stable"
	if len(daily) > 1 {
		split := len(daily) - 7
		if split < 1 {
			split = 1
		}
		earlier := mean(daily[:split])
		recent := mean(daily[split:])
		if len(daily) <= 7 {
			earlier = recent
		}
		if recent > earlier*1.1 {
			trend = "increasing"
		} else if recent < earlier*0.9 {
			trend = "decreasing"
		}
	}

	return VolumeMetrics{
		TotalVolume:    total,
		AvgDailyVolume: mean(daily),
		Trend:          trend,
	}
}

func priceMetrics(transactions []models.Transaction) PriceMetrics {
	prices := make([]float64, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Price > 0 {
			prices = append(prices, tx.Price)
		}
	}
	if len(prices) == 0 {
		return PriceMetrics{Trend: "stable"}
	}

	avg := mean(prices)
	volatility := 0.0
	if avg > 0 {
		volatility = stddev(prices) / avg
	}

	trend := "stable"
	if len(prices) > 1 && prices[0] != 0 {
		change := (prices[len(prices)-1] - prices[0]) / prices[0]
		if change > 0.05 {
			trend = "increasing"
		} else if change < -0.05 {
			trend = "decreasing"
		}
	}

	return PriceMetrics{AvgPrice: avg, Volatility: volatility, Trend: trend}
}

func typeDistribution(assets []models.Asset) TypeDistribution {
	if len(assets) == 0 {
		return TypeDistribution{}
	}
	absolute := make(map[string]int)
	for _, asset := range assets {
		absolute[asset.Type]++
	}
	percentage := make(map[string]float64, len(absolute))
	for t, n := range absolute {
		percentage[t] = float64(n) / float64(len(assets)) * 100
	}
	return TypeDistribution{
		Absolute:       absolute,
		Percentage:     percentage,
		DiversityIndex: float64(len(absolute)) / float64(len(assets)),
	}
}

const (
	bullishThreshold = 0.6
	bearishThreshold = 0.4
)

// marketSentiment blends volume and price trend direction with the social
// signal at 70/30 and classifies the result.
func marketSentiment(transactions []models.Transaction, socialSentiment float64) Sentiment {
	if len(transactions) == 0 {
		return Sentiment{Overall: "neutral", Confidence: 0.5, SocialSentiment: socialSentiment}
	}

	// Only the most recent trades shape the mood.
	window := transactions
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	volumes := make([]float64, len(window))
	prices := make([]float64, len(window))
	for i, tx := range window {
		volumes[i] = tx.Volume
		prices[i] = tx.Price
	}

	volumeTrend := trendDirection(volumes)
	priceTrend := trendDirection(prices)
	blended := (volumeTrend + priceTrend) / 2
	final := blended*0.7 + socialSentiment*0.3

	overall := "neutral"
	if final > bullishThreshold {
		overall = "bullish"
	} else if final < bearishThreshold {
		overall = "bearish"
	}

	return Sentiment{
		Overall:         overall,
		Confidence:      math.Abs(final-0.5) * 2,
		VolumeTrend:     volumeTrend,
		PriceTrend:      priceTrend,
		SocialSentiment: socialSentiment,
	}
}

// trendDirection maps a series to [0,1] around a neutral 0.5 using the
// correlation of value against time.
func trendDirection(values []float64) float64 {
	if len(values) < 2 || stddev(values) == 0 {
		return 0.5
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	meanX, meanY := mean(xs), mean(values)

	cov, varX, varY := 0.0, 0.0, 0.0
	for i := range values {
		dx := xs[i] - meanX
		dy := values[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0.5
	}
	corr := cov / math.Sqrt(varX*varY)
	return clamp01(0.5 + corr)
}

func liquidityMetrics(transactions []models.Transaction, assets []models.Asset, window time.Duration) Liquidity {
	if len(transactions) == 0 {
		return Liquidity{MarketDepth: "low"}
	}

	traded := make(map[string]bool)
	for _, tx := range transactions {
		traded[tx.AssetID] = true
	}
	ratio := 0.0
	if len(assets) > 0 {
		ratio = float64(len(traded)) / float64(len(assets))
	}

	depth := "low"
	if ratio > 0.3 {
		depth = "high"
	} else if ratio > 0.1 {
		depth = "medium"
	}

	days := window.Hours() / 24
	if days < 1 {
		days = 1
	}

	return Liquidity{
		MarketDepth:          depth,
		LiquidityRatio:       ratio,
		TransactionFrequency: float64(len(transactions)) / days,
	}
}

func healthScore(volume VolumeMetrics, price PriceMetrics, sentiment Sentiment) float64 {
	volumeScore := math.Min(volume.TotalVolume/1000, 100)
	volatilityPenalty := math.Max(0, 100-price.Volatility*100)
	sentimentScore := 50.0
	switch sentiment.Overall {
	case "bullish":
		sentimentScore = 80
	case "bearish":
		sentimentScore = 20
	}
	return volumeScore*0.3 + volatilityPenalty*0.3 + sentimentScore*0.4
}

func recommendations(volume VolumeMetrics, price PriceMetrics, sentiment Sentiment) []string {
	var out []string
	if volume.Trend == "increasing" {
		out = append(out, "Market volume is increasing - consider increased participation")
	}
	if price.Volatility > 0.2 {
		out = append(out, "High price volatility detected - consider risk management strategies")
	}
	switch sentiment.Overall {
	case "bullish":
		out = append(out, "Bullish sentiment - favorable conditions for asset creation and investment")
	case "bearish":
		out = append(out, "Bearish sentiment - consider defensive positioning or value opportunities")
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
