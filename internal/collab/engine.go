package collab

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Tweenwrld/basix-marketplace/internal/cache"
	"github.com/Tweenwrld/basix-marketplace/internal/models"
	"github.com/Tweenwrld/basix-marketplace/internal/rules"
)

// ContextSource builds the analysis context for a user, optionally scoped
// to one of their projects.
type ContextSource interface {
	GetContext(ctx context.Context, userID, projectID string) (*models.Context, error)
}

// BilateralScorer scores one requester/candidate pair.
type BilateralScorer interface {
	Score(ctx context.Context, requester, candidate *models.Context) (*Recommendation, error)
}

// RuleEngine is the declarative reasoning pass applied after scoring.
type RuleEngine interface {
	OptimizeRecommendations(ctx context.Context, partners []rules.ScoredPartner) ([]rules.Adjustment, error)
	EvaluateRequest(ctx context.Context, facts rules.RequestFacts) (*rules.Evaluation, error)
}

// Request evaluation decisions.
const (
	DecisionApprove          = "approve"
	DecisionReview           = "review"
	DecisionDecline          = "decline"
	DecisionInsufficientData = "insufficient_data"
	DecisionError            = "error"
)

// RequestEvaluation is the outcome of evaluating an incoming
// collaboration request.
type RequestEvaluation struct {
	Decision           string            `json:"recommendation"`
	Confidence         float64           `json:"confidence"`
	ScoreLevel         ScoreLevel        `json:"score_level,omitempty"`
	Metrics            *Metrics          `json:"detailed_metrics,omitempty"`
	Reasoning          []string          `json:"reasoning,omitempty"`
	SuggestedTerms     map[string]string `json:"suggested_terms,omitempty"`
	RiskFactors        []string          `json:"risk_factors,omitempty"`
	SuccessProbability float64           `json:"success_probability,omitempty"`
}

// Options tune the recommendation pipeline.
type Options struct {
	MinConfidence      float64
	MaxRecommendations int
	ScoringTimeout     time.Duration
	ContextTTL         time.Duration
}

func DefaultOptions() Options {
	return Options{
		MinConfidence:      0.7,
		MaxRecommendations: 10,
		ScoringTimeout:     30 * time.Second,
		ContextTTL:         5 * time.Minute,
	}
}

// Engine runs the full recommendation pipeline: context lookup, candidate
// discovery, concurrent bilateral scoring under a deadline, rule-based
// optimization, and final ranking. It also evaluates incoming requests.
type Engine struct {
	contexts ContextSource
	finder   *Finder
	scorer   BilateralScorer
	rules    RuleEngine
	cache    cache.Cache
	opts     Options
	logger   *logrus.Logger
}

func NewEngine(contexts ContextSource, finder *Finder, scorer BilateralScorer, ruleEngine RuleEngine, c cache.Cache, opts Options, logger *logrus.Logger) *Engine {
	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultOptions().MinConfidence
	}
	if opts.MaxRecommendations == 0 {
		opts.MaxRecommendations = DefaultOptions().MaxRecommendations
	}
	if opts.ScoringTimeout == 0 {
		opts.ScoringTimeout = DefaultOptions().ScoringTimeout
	}
	if opts.ContextTTL == 0 {
		opts.ContextTTL = DefaultOptions().ContextTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		contexts: contexts,
		finder:   finder,
		scorer:   scorer,
		rules:    ruleEngine,
		cache:    c,
		opts:     opts,
		logger:   logger,
	}
}

// Recommend finds the best collaboration partners for a user. Explicit
// asset IDs scope the requester's context beyond their owned assets. It
// never returns an error: any failure degrades to an empty list, logged.
func (e *Engine) Recommend(ctx context.Context, userID, projectID string, assetIDs []string, filters map[string]string) []*Recommendation {
	start := time.Now()

	requester, err := e.userContext(ctx, userID, projectID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Error("Collaboration analysis failed")
		return nil
	}
	if len(assetIDs) > 0 {
		scoped := *requester
		scoped.AssetIDs = mergeAssetIDs(requester.AssetIDs, assetIDs)
		requester = &scoped
	}

	candidates := e.finder.Find(ctx, requester, filters)
	recommendations := e.scoreParallel(ctx, requester, candidates)
	recommendations = e.applyRules(ctx, recommendations)

	if len(recommendations) > e.opts.MaxRecommendations {
		recommendations = recommendations[:e.opts.MaxRecommendations]
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"candidates":      len(candidates),
		"recommendations": len(recommendations),
		"elapsed":         time.Since(start).Round(time.Millisecond),
	}).Info("Generated collaboration recommendations")

	return recommendations
}

// scoreParallel scores every candidate concurrently under the scoring
// timeout. Results arriving after the deadline are abandoned; whatever
// completed in time is filtered by confidence and sorted by overall score.
func (e *Engine) scoreParallel(ctx context.Context, requester *models.Context, candidates []string) []*Recommendation {
	if len(candidates) == 0 {
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, e.opts.ScoringTimeout)
	defer cancel()

	// Buffered to candidate count so abandoned goroutines never block.
	results := make(chan *Recommendation, len(candidates))
	for _, candidateID := range candidates {
		go func(id string) {
			results <- e.scoreOne(sctx, requester, id)
		}(candidateID)
	}

	var recommendations []*Recommendation
collect:
	for range candidates {
		select {
		case rec := <-results:
			if rec != nil && rec.Confidence >= e.opts.MinConfidence {
				recommendations = append(recommendations, rec)
			}
		case <-sctx.Done():
			e.logger.Warn("Collaboration scoring timed out")
			break collect
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Metrics.Overall() > recommendations[j].Metrics.Overall()
	})
	return recommendations
}

func (e *Engine) scoreOne(ctx context.Context, requester *models.Context, candidateID string) *Recommendation {
	candidate, err := e.userContext(ctx, candidateID, "")
	if err != nil {
		e.logger.WithError(err).WithField("candidate_id", candidateID).Debug("Skipping candidate without context")
		return nil
	}
	rec, err := e.scorer.Score(ctx, requester, candidate)
	if err != nil {
		e.logger.WithError(err).WithField("candidate_id", candidateID).Warn("Bilateral scoring failed")
		return nil
	}
	return rec
}

// applyRules runs the rule engine's optimization pass over the ranked
// recommendations, folding insights and confidence adjustments back in,
// then re-ranks by confidence-weighted score. Rule failures leave the
// input ranking untouched.
func (e *Engine) applyRules(ctx context.Context, recommendations []*Recommendation) []*Recommendation {
	if len(recommendations) == 0 || e.rules == nil {
		return recommendations
	}

	partners := make([]rules.ScoredPartner, len(recommendations))
	for i, rec := range recommendations {
		partners[i] = rules.ScoredPartner{
			PartnerID: rec.PartnerID,
			Metrics:   rec.Metrics.Map(),
			Score:     rec.Metrics.Overall(),
			Reasoning: rec.Reasoning,
		}
	}

	adjustments, err := e.rules.OptimizeRecommendations(ctx, partners)
	if err != nil {
		e.logger.WithError(err).Error("Rule optimization failed")
		return recommendations
	}

	for i, rec := range recommendations {
		if i >= len(adjustments) {
			break
		}
		rec.RuleInsights = adjustments[i].Insights
		rec.Confidence = math.Min(1.0, rec.Confidence+adjustments[i].ConfidenceAdjustment)
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence*recommendations[i].Metrics.Overall() >
			recommendations[j].Confidence*recommendations[j].Metrics.Overall()
	})
	return recommendations
}

// Evaluate judges an incoming collaboration request. Both parties need a
// resolvable context; without one the decision is insufficient_data. Rule
// engine failures yield an error decision rather than a half-reasoned one.
func (e *Engine) Evaluate(ctx context.Context, req *models.CollaborationRequest) *RequestEvaluation {
	initiator, err := e.userContext(ctx, req.InitiatorID, req.ProjectID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", req.InitiatorID).Warn("Initiator context unavailable")
		return &RequestEvaluation{Decision: DecisionInsufficientData}
	}
	target, err := e.userContext(ctx, req.TargetUserID, req.TargetProjectID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", req.TargetUserID).Warn("Target context unavailable")
		return &RequestEvaluation{Decision: DecisionInsufficientData}
	}

	metrics := calculateMetrics(initiator, target)
	overall := metrics.Overall()

	evaluation := &RequestEvaluation{
		Decision:           decisionFor(overall),
		Confidence:         math.Min(1.0, overall+0.1),
		ScoreLevel:         ScoreFromOverall(overall),
		Metrics:            &metrics,
		SuccessProbability: SuccessProbability(metrics),
	}

	if e.rules != nil {
		ruleEval, err := e.rules.EvaluateRequest(ctx, rules.RequestFacts{
			Metrics: metrics.Map(),
			Message: req.Message,
		})
		if err != nil {
			e.logger.WithError(err).Error("Collaboration request evaluation failed")
			return &RequestEvaluation{Decision: DecisionError}
		}
		evaluation.Reasoning = ruleEval.Reasoning
		evaluation.SuggestedTerms = ruleEval.SuggestedTerms
		evaluation.RiskFactors = ruleEval.Risks
	}

	return evaluation
}

// mergeAssetIDs unions explicitly requested asset IDs into the ones
// already on the context, keeping first-seen order.
func mergeAssetIDs(owned, requested []string) []string {
	seen := make(map[string]bool, len(owned)+len(requested))
	merged := make([]string, 0, len(owned)+len(requested))
	for _, id := range append(append([]string{}, owned...), requested...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	return merged
}

func decisionFor(overall float64) string {
	switch {
	case overall >= 0.7:
		return DecisionApprove
	case overall >= 0.5:
		return DecisionReview
	default:
		return DecisionDecline
	}
}

// userContext resolves a user's analysis context through the cache.
func (e *Engine) userContext(ctx context.Context, userID, projectID string) (*models.Context, error) {
	key := cache.ContextKey(userID, projectID)
	if e.cache != nil {
		var cached models.Context
		if found, err := e.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	built, err := e.contexts.GetContext(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("build context for user %s: %w", userID, err)
	}
	if built == nil {
		return nil, fmt.Errorf("no context for user %s", userID)
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, built, e.opts.ContextTTL); err != nil {
			e.logger.WithError(err).Debug("Context cache write failed")
		}
	}
	return built, nil
}
