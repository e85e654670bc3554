package rules

import (
	"context"
	"log/slog"
)

// ScoredPartner is the per-recommendation input to the optimization pass.
// Metrics carries the bilateral dimensions by their snake_case names.
type ScoredPartner struct {
	PartnerID string
	Metrics   map[string]float64
	Score     float64
	Reasoning []string
}

// Adjustment is the optimization output for one recommendation, positional
// with the input slice.
type Adjustment struct {
	Insights             []string `json:"insights"`
	ConfidenceAdjustment float64  `json:"confidence_adjustment"`
}

// RequestFacts is the input to a collaboration request evaluation.
type RequestFacts struct {
	Metrics map[string]float64
	Message string
}

// Evaluation is the rule-derived portion of a request decision.
type Evaluation struct {
	Reasoning      []string          `json:"reasoning"`
	SuggestedTerms map[string]string `json:"suggested_terms"`
	Risks          []string          `json:"risks"`
}

// InsightProvider augments rule-table insights with generated ones. Any
// failure must degrade: implementations return an error and the engine
// keeps the deterministic output.
type InsightProvider interface {
	Insight(ctx context.Context, partner ScoredPartner) (string, error)
}

// Engine applies the declarative collaboration knowledge base. Evaluation
// and optimization are pure table walks; the optional insight provider is
// the only non-deterministic input and its failures are absorbed.
type Engine struct {
	kb       *KnowledgeBase
	insights InsightProvider
	logger   *slog.Logger
}

func NewEngine(kb *KnowledgeBase, insights InsightProvider) *Engine {
	if kb == nil {
		kb = defaultKnowledgeBase()
	}
	return &Engine{
		kb:       kb,
		insights: insights,
		logger:   slog.Default().With("component", "rules"),
	}
}

// EvaluateRequest walks the evaluation rules against the request's metric
// set and collects reasoning, suggested deal terms, and risks.
func (e *Engine) EvaluateRequest(ctx context.Context, facts RequestFacts) (*Evaluation, error) {
	out := &Evaluation{SuggestedTerms: make(map[string]string)}
	for _, rule := range e.kb.Evaluation {
		if !rule.matches(facts.Metrics) {
			continue
		}
		if rule.Reasoning != "" {
			out.Reasoning = append(out.Reasoning, rule.Reasoning)
		}
		if rule.Risk != "" {
			out.Risks = append(out.Risks, rule.Risk)
		}
		if rule.TermKey != "" {
			out.SuggestedTerms[rule.TermKey] = rule.TermValue
		}
	}
	return out, nil
}

// OptimizeRecommendations produces one adjustment per input partner, in
// input order. Per-partner confidence adjustments are the sum of all
// matching rules, clamped to [-0.1, 0.1] so rules refine the ranking
// without overturning the bilateral score.
func (e *Engine) OptimizeRecommendations(ctx context.Context, partners []ScoredPartner) ([]Adjustment, error) {
	adjustments := make([]Adjustment, len(partners))
	for i, partner := range partners {
		adj := Adjustment{}
		for _, rule := range e.kb.Optimization {
			if !rule.matches(partner.Metrics) {
				continue
			}
			adj.Insights = append(adj.Insights, rule.Insight)
			adj.ConfidenceAdjustment += rule.Adjustment
		}
		adj.ConfidenceAdjustment = clampAdjustment(adj.ConfidenceAdjustment)

		if e.insights != nil {
			insight, err := e.insights.Insight(ctx, partner)
			if err != nil {
				e.logger.Debug("insight provider failed, keeping rule output",
					"partner_id", partner.PartnerID, "error", err)
			} else if insight != "" {
				adj.Insights = append(adj.Insights, insight)
			}
		}
		adjustments[i] = adj
	}
	return adjustments, nil
}

const maxConfidenceAdjustment = 0.1

func clampAdjustment(v float64) float64 {
	if v > maxConfidenceAdjustment {
		return maxConfidenceAdjustment
	}
	if v < -maxConfidenceAdjustment {
		return -maxConfidenceAdjustment
	}
	return v
}
