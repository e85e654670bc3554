package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedInsights struct {
	insight string
	err     error
}

func (c cannedInsights) Insight(_ context.Context, _ ScoredPartner) (string, error) {
	return c.insight, c.err
}

func TestConditionMatches(t *testing.T) {
	metrics := map[string]float64{"strategic_alignment": 0.85}

	assert.True(t, Condition{Metric: "strategic_alignment", Above: ptr(0.8)}.matches(metrics))
	assert.False(t, Condition{Metric: "strategic_alignment", Above: ptr(0.85)}.matches(metrics), "boundary is exclusive")
	assert.True(t, Condition{Metric: "strategic_alignment", Below: ptr(0.9)}.matches(metrics))
	assert.False(t, Condition{Metric: "missing", Above: ptr(0.1)}.matches(metrics))
	assert.False(t, Condition{Metric: "strategic_alignment"}.matches(metrics), "no bound never fires")
}

func TestEvaluateRequest(t *testing.T) {
	engine := NewEngine(nil, nil)

	eval, err := engine.EvaluateRequest(context.Background(), RequestFacts{Metrics: map[string]float64{
		"technical_compatibility":  0.9,
		"strategic_alignment":      0.75,
		"resource_complementarity": 0.3,
		"execution_feasibility":    0.4,
		"legal_compatibility":      0.5,
		"risk_assessment":          0.6,
	}})
	require.NoError(t, err)

	assert.Len(t, eval.Reasoning, 2)
	assert.Len(t, eval.Risks, 3)
	assert.Equal(t, "3_months", eval.SuggestedTerms["pilot_phase"])
	assert.Equal(t, "cross_licensing", eval.SuggestedTerms["ip_arrangement"])
	assert.Equal(t, "monthly", eval.SuggestedTerms["review_cadence"])
}

func TestEvaluateRequestNothingFires(t *testing.T) {
	engine := NewEngine(nil, nil)

	eval, err := engine.EvaluateRequest(context.Background(), RequestFacts{Metrics: map[string]float64{
		"technical_compatibility": 0.7,
		"execution_feasibility":   0.7,
	}})
	require.NoError(t, err)
	assert.Empty(t, eval.Reasoning)
	assert.Empty(t, eval.Risks)
	assert.Empty(t, eval.SuggestedTerms)
}

func TestOptimizeRecommendationsPositional(t *testing.T) {
	engine := NewEngine(nil, nil)

	partners := []ScoredPartner{
		{PartnerID: "a", Metrics: map[string]float64{"strategic_alignment": 0.9}},
		{PartnerID: "b", Metrics: map[string]float64{}},
		{PartnerID: "c", Metrics: map[string]float64{"risk_assessment": 0.8}},
	}
	adjustments, err := engine.OptimizeRecommendations(context.Background(), partners)
	require.NoError(t, err)
	require.Len(t, adjustments, len(partners))

	assert.InDelta(t, 0.05, adjustments[0].ConfidenceAdjustment, 1e-9)
	assert.Len(t, adjustments[0].Insights, 1)

	assert.Zero(t, adjustments[1].ConfidenceAdjustment)
	assert.Empty(t, adjustments[1].Insights)

	assert.InDelta(t, -0.05, adjustments[2].ConfidenceAdjustment, 1e-9)
}

func TestOptimizeRecommendationsClampsAdjustment(t *testing.T) {
	kb := &KnowledgeBase{Optimization: []OptimizationRule{
		{Condition: Condition{Metric: "strategic_alignment", Above: ptr(0.5)}, Insight: "one", Adjustment: 0.08},
		{Condition: Condition{Metric: "strategic_alignment", Above: ptr(0.6)}, Insight: "two", Adjustment: 0.08},
	}}
	engine := NewEngine(kb, nil)

	adjustments, err := engine.OptimizeRecommendations(context.Background(), []ScoredPartner{
		{PartnerID: "a", Metrics: map[string]float64{"strategic_alignment": 0.9}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.1, adjustments[0].ConfidenceAdjustment)
	assert.Len(t, adjustments[0].Insights, 2)
}

func TestOptimizeRecommendationsInsightProvider(t *testing.T) {
	engine := NewEngine(nil, cannedInsights{insight: "generated insight"})

	adjustments, err := engine.OptimizeRecommendations(context.Background(), []ScoredPartner{
		{PartnerID: "a", Metrics: map[string]float64{"strategic_alignment": 0.9}},
	})
	require.NoError(t, err)
	assert.Contains(t, adjustments[0].Insights, "generated insight")

	// Provider failure keeps the deterministic output.
	failing := NewEngine(nil, cannedInsights{err: errors.New("rate limited")})
	adjustments, err = failing.OptimizeRecommendations(context.Background(), []ScoredPartner{
		{PartnerID: "a", Metrics: map[string]float64{"strategic_alignment": 0.9}},
	})
	require.NoError(t, err)
	assert.Len(t, adjustments[0].Insights, 1)
	assert.InDelta(t, 0.05, adjustments[0].ConfidenceAdjustment, 1e-9)
}
