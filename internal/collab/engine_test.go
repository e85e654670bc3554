package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
	"github.com/Tweenwrld/basix-marketplace/internal/rules"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeContexts struct {
	mu       sync.Mutex
	contexts map[string]*models.Context
	calls    int
}

func (s *fakeContexts) GetContext(_ context.Context, userID, _ string) (*models.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	c, ok := s.contexts[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return c, nil
}

// fakeScorer returns a canned confidence per candidate and can block a
// candidate until the scoring deadline fires.
type fakeScorer struct {
	confidences map[string]float64
	overall     map[string]float64
	hang        map[string]bool
}

func (s *fakeScorer) Score(ctx context.Context, _, candidate *models.Context) (*Recommendation, error) {
	if s.hang[candidate.UserID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	overall := s.overall[candidate.UserID]
	return &Recommendation{
		ID:         candidate.UserID + "-rec",
		PartnerID:  candidate.UserID,
		Metrics:    Metrics{TechnicalCompatibility: overall / weightTechnical},
		Confidence: s.confidences[candidate.UserID],
	}, nil
}

type fakeRules struct {
	adjustments []rules.Adjustment
	evaluation  *rules.Evaluation
	err         error
}

func (r *fakeRules) OptimizeRecommendations(_ context.Context, partners []rules.ScoredPartner) ([]rules.Adjustment, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.adjustments != nil {
		return r.adjustments, nil
	}
	return make([]rules.Adjustment, len(partners)), nil
}

func (r *fakeRules) EvaluateRequest(_ context.Context, _ rules.RequestFacts) (*rules.Evaluation, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.evaluation, nil
}

func contextsFor(ids ...string) *fakeContexts {
	s := &fakeContexts{contexts: make(map[string]*models.Context)}
	for _, id := range ids {
		s.contexts[id] = fullContext(id)
	}
	return s
}

func newTestEngine(contexts ContextSource, scorer BilateralScorer, ruleEngine RuleEngine, opts Options) *Engine {
	finder := NewFinder(nil, nil, nil, nil, quietLogger())
	return NewEngine(contexts, finder, scorer, ruleEngine, newFakeCache(), opts, quietLogger())
}

func TestScoreParallelFiltersByConfidence(t *testing.T) {
	scorer := &fakeScorer{confidences: map[string]float64{
		"bob":   0.9,
		"carol": 0.7,
		"dave":  0.69,
	}}
	e := newTestEngine(contextsFor("bob", "carol", "dave"), scorer, nil, Options{})

	recs := e.scoreParallel(context.Background(), fullContext("alice"), []string{"bob", "carol", "dave"})

	require.Len(t, recs, 2)
	ids := []string{recs[0].PartnerID, recs[1].PartnerID}
	assert.ElementsMatch(t, []string{"bob", "carol"}, ids)
}

func TestScoreParallelSortsByOverall(t *testing.T) {
	scorer := &fakeScorer{
		confidences: map[string]float64{"bob": 0.8, "carol": 0.8, "dave": 0.8},
		overall:     map[string]float64{"bob": 0.05, "carol": 0.15, "dave": 0.10},
	}
	e := newTestEngine(contextsFor("bob", "carol", "dave"), scorer, nil, Options{})

	recs := e.scoreParallel(context.Background(), fullContext("alice"), []string{"bob", "carol", "dave"})

	require.Len(t, recs, 3)
	assert.Equal(t, "carol", recs[0].PartnerID)
	assert.Equal(t, "dave", recs[1].PartnerID)
	assert.Equal(t, "bob", recs[2].PartnerID)
}

func TestScoreParallelTimeoutKeepsPartialResults(t *testing.T) {
	scorer := &fakeScorer{
		confidences: map[string]float64{"bob": 0.9},
		hang:        map[string]bool{"carol": true},
	}
	e := newTestEngine(contextsFor("bob", "carol"), scorer, nil, Options{ScoringTimeout: 50 * time.Millisecond})

	start := time.Now()
	recs := e.scoreParallel(context.Background(), fullContext("alice"), []string{"bob", "carol"})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, recs, 1)
	assert.Equal(t, "bob", recs[0].PartnerID)
}

func TestScoreParallelSkipsUnknownCandidates(t *testing.T) {
	scorer := &fakeScorer{confidences: map[string]float64{"bob": 0.9}}
	e := newTestEngine(contextsFor("bob"), scorer, nil, Options{})

	recs := e.scoreParallel(context.Background(), fullContext("alice"), []string{"bob", "ghost"})

	require.Len(t, recs, 1)
	assert.Equal(t, "bob", recs[0].PartnerID)
}

func TestApplyRulesAdjustsAndResorts(t *testing.T) {
	ruleEngine := &fakeRules{adjustments: []rules.Adjustment{
		{Insights: []string{"strong strategic alignment"}, ConfidenceAdjustment: -0.1},
		{ConfidenceAdjustment: 0.5},
	}}
	e := newTestEngine(nil, nil, ruleEngine, Options{})

	recs := []*Recommendation{
		{PartnerID: "bob", Confidence: 0.8, Metrics: Metrics{TechnicalCompatibility: 1.0}},
		{PartnerID: "carol", Confidence: 0.8, Metrics: Metrics{TechnicalCompatibility: 1.0}},
	}
	out := e.applyRules(context.Background(), recs)

	require.Len(t, out, 2)
	// Carol's boost clamps at 1.0 and lifts her above bob.
	assert.Equal(t, "carol", out[0].PartnerID)
	assert.Equal(t, 1.0, out[0].Confidence)
	assert.Equal(t, "bob", out[1].PartnerID)
	assert.InDelta(t, 0.7, out[1].Confidence, 1e-9)
	assert.Equal(t, []string{"strong strategic alignment"}, out[1].RuleInsights)
}

func TestApplyRulesFailureKeepsRanking(t *testing.T) {
	e := newTestEngine(nil, nil, &fakeRules{err: errors.New("kb corrupt")}, Options{})

	recs := []*Recommendation{
		{PartnerID: "bob", Confidence: 0.9},
		{PartnerID: "carol", Confidence: 0.8},
	}
	out := e.applyRules(context.Background(), recs)

	require.Len(t, out, 2)
	assert.Equal(t, "bob", out[0].PartnerID)
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Empty(t, out[0].RuleInsights)
}

func TestRecommendTruncates(t *testing.T) {
	var ids []string
	confidences := make(map[string]float64)
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("user-%02d", i)
		ids = append(ids, id)
		confidences[id] = 0.9
	}
	contexts := contextsFor(append(ids, "alice")...)
	scorer := &fakeScorer{confidences: confidences}

	finder := NewFinder(nil, &fakeSource{ids: ids}, nil, nil, quietLogger())
	e := NewEngine(contexts, finder, scorer, &fakeRules{}, newFakeCache(), Options{MaxRecommendations: 10}, quietLogger())

	recs := e.Recommend(context.Background(), "alice", "", nil, nil)
	assert.Len(t, recs, 10)
}

func TestRecommendUnknownUser(t *testing.T) {
	e := newTestEngine(contextsFor(), &fakeScorer{}, nil, Options{})
	assert.Nil(t, e.Recommend(context.Background(), "ghost", "", nil, nil))
}

// captureScorer records the requester context of every scoring call.
type captureScorer struct {
	mu         sync.Mutex
	requesters []*models.Context
}

func (s *captureScorer) Score(_ context.Context, requester, candidate *models.Context) (*Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requesters = append(s.requesters, requester)
	return &Recommendation{PartnerID: candidate.UserID, Confidence: 0.9}, nil
}

func TestRecommendScopesRequesterAssets(t *testing.T) {
	contexts := contextsFor("alice", "bob")
	contexts.contexts["alice"].AssetIDs = []string{"asset-1"}
	scorer := &captureScorer{}

	finder := NewFinder(nil, &fakeSource{ids: []string{"bob"}}, nil, nil, quietLogger())
	e := NewEngine(contexts, finder, scorer, nil, newFakeCache(), Options{}, quietLogger())

	recs := e.Recommend(context.Background(), "alice", "", []string{"asset-2", "asset-1"}, nil)

	require.Len(t, recs, 1)
	require.Len(t, scorer.requesters, 1)
	assert.Equal(t, []string{"asset-1", "asset-2"}, scorer.requesters[0].AssetIDs)
	// The stored context stays unscoped.
	assert.Equal(t, []string{"asset-1"}, contexts.contexts["alice"].AssetIDs)
}

func TestMergeAssetIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, mergeAssetIDs([]string{"a", "b"}, []string{"b", "", "c"}))
	assert.Equal(t, []string{"x"}, mergeAssetIDs(nil, []string{"x", "x"}))
	assert.Empty(t, mergeAssetIDs(nil, nil))
}

func TestDecisionBands(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{0.95, DecisionApprove},
		{0.7, DecisionApprove},
		{0.69999, DecisionReview},
		{0.5, DecisionReview},
		{0.49999, DecisionDecline},
		{0.0, DecisionDecline},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decisionFor(tt.overall), "overall %v", tt.overall)
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	e := newTestEngine(contextsFor("target"), &fakeScorer{}, nil, Options{})

	eval := e.Evaluate(context.Background(), &models.CollaborationRequest{
		InitiatorID:  "ghost",
		TargetUserID: "target",
	})
	assert.Equal(t, DecisionInsufficientData, eval.Decision)
	assert.Zero(t, eval.Confidence)
}

func TestEvaluateRuleFailure(t *testing.T) {
	e := newTestEngine(contextsFor("alice", "bob"), &fakeScorer{}, &fakeRules{err: errors.New("kb corrupt")}, Options{})

	eval := e.Evaluate(context.Background(), &models.CollaborationRequest{
		InitiatorID:  "alice",
		TargetUserID: "bob",
	})
	assert.Equal(t, DecisionError, eval.Decision)
}

func TestEvaluate(t *testing.T) {
	ruleEngine := &fakeRules{evaluation: &rules.Evaluation{
		Reasoning:      []string{"strong metrics"},
		SuggestedTerms: map[string]string{"ip_arrangement": "cross_licensing"},
		Risks:          []string{"ip overlap"},
	}}
	e := newTestEngine(contextsFor("alice", "bob"), &fakeScorer{}, ruleEngine, Options{})

	eval := e.Evaluate(context.Background(), &models.CollaborationRequest{
		InitiatorID:  "alice",
		TargetUserID: "bob",
	})

	require.NotNil(t, eval.Metrics)
	overall := eval.Metrics.Overall()
	assert.Equal(t, decisionFor(overall), eval.Decision)
	assert.InDelta(t, overall+0.1, eval.Confidence, 1e-9)
	assert.Equal(t, ScoreFromOverall(overall), eval.ScoreLevel)
	assert.Equal(t, []string{"strong metrics"}, eval.Reasoning)
	assert.Equal(t, map[string]string{"ip_arrangement": "cross_licensing"}, eval.SuggestedTerms)
	assert.Equal(t, []string{"ip overlap"}, eval.RiskFactors)
	assert.Greater(t, eval.SuccessProbability, 0.0)
}

func TestUserContextCached(t *testing.T) {
	contexts := contextsFor("alice")
	e := newTestEngine(contexts, &fakeScorer{}, nil, Options{})

	first, err := e.userContext(context.Background(), "alice", "")
	require.NoError(t, err)
	second, err := e.userContext(context.Background(), "alice", "")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, contexts.calls)
}
