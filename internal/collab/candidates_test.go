package collab

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

type fakeNetwork struct {
	edges map[string][]string
	err   error
}

func (n *fakeNetwork) Neighbors(_ context.Context, userID string) ([]string, error) {
	if n.err != nil {
		return nil, n.err
	}
	return n.edges[userID], nil
}

type fakeSource struct {
	ids      []string
	err      error
	criteria models.StrategicCriteria
}

func (s *fakeSource) QueryCandidates(_ context.Context, criteria models.StrategicCriteria) ([]string, error) {
	s.criteria = criteria
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type fakeCatalogue struct {
	docs  []models.CatalogueDoc
	err   error
	calls int
}

func (c *fakeCatalogue) ListCatalogue(_ context.Context) ([]models.CatalogueDoc, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.docs, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNetworkCandidatesTwoHop(t *testing.T) {
	network := &fakeNetwork{edges: map[string][]string{
		"alice": {"bob", "carol"},
		"bob":   {"alice", "dave"},
		"carol": {"alice", "dave", "erin"},
	}}
	finder := NewFinder(network, nil, nil, nil, quietLogger())

	out := finder.networkCandidates(context.Background(), "alice")
	// Second-degree only: direct connections and the requester are excluded,
	// and dave appears once despite two paths.
	assert.Equal(t, []string{"dave", "erin"}, out)
}

func TestNetworkCandidatesCap(t *testing.T) {
	edges := map[string][]string{"alice": {"hub"}}
	var second []string
	for i := 0; i < networkCandidateCap+20; i++ {
		second = append(second, fmt.Sprintf("user-%03d", i))
	}
	edges["hub"] = second
	finder := NewFinder(&fakeNetwork{edges: edges}, nil, nil, nil, quietLogger())

	out := finder.networkCandidates(context.Background(), "alice")
	assert.Len(t, out, networkCandidateCap)
}

func TestSemanticCandidates(t *testing.T) {
	catalogue := &fakeCatalogue{docs: []models.CatalogueDoc{
		{Type: "project", ID: "p1", OwnerID: "bob", Title: "Blockchain royalty engine",
			Description: "Smart contracts for music royalty distribution", Domain: "blockchain"},
		{Type: "project", ID: "p2", OwnerID: "carol", Title: "Organic farming cooperative",
			Description: "Community supported agriculture logistics", Domain: "agriculture"},
		{Type: "asset", ID: "a1", OwnerID: "dave", Title: "Blockchain smart contracts toolkit",
			Description: "Smart contracts library", Domain: "blockchain"},
		{Type: "project", ID: "mine", OwnerID: "alice", Title: "Blockchain smart contracts",
			Description: "Smart contracts platform", Domain: "blockchain"},
	}}
	finder := NewFinder(nil, nil, catalogue, nil, quietLogger())

	requester := &models.Context{
		UserID:         "alice",
		ProjectID:      "mine",
		ExpertiseAreas: []string{"blockchain", "smart", "contracts"},
		StrategicGoals: []string{"royalty", "distribution"},
	}
	out := finder.semanticCandidates(context.Background(), requester)

	// Assets and the requester's own project never surface; the unrelated
	// farming project falls under the similarity threshold.
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "dave")
	assert.NotContains(t, out, "alice")
	assert.NotContains(t, out, "carol")
}

func TestStrategicCandidatesFilters(t *testing.T) {
	source := &fakeSource{ids: []string{"zed"}}
	finder := NewFinder(nil, source, nil, nil, quietLogger())

	requester := &models.Context{
		UserID:          "alice",
		ExpertiseAreas:  []string{"ai"},
		StrategicGoals:  []string{"licensing"},
		ProjectStage:    "seed",
		Location:        "Nairobi",
		Resources:       models.ResourceCapacity{FundingTier: models.FundingLow},
		TimelineUrgency: "high",
	}
	filters := map[string]string{
		"collaboration_stage": "growth",
		"partner_type":        "studio",
	}

	out := finder.strategicCandidates(context.Background(), requester, filters)
	require.Equal(t, []string{"zed"}, out)

	assert.Equal(t, []string{"ai", "licensing"}, source.criteria.Domains)
	assert.Equal(t, "growth", source.criteria.Stage, "filter overrides derived stage")
	assert.Equal(t, "Nairobi", source.criteria.Geography)
	assert.Equal(t, "low", source.criteria.ResourceNeeds)
	assert.Equal(t, "high", source.criteria.TimelineUrgency)
	assert.Equal(t, map[string]string{"partner_type": "studio"}, source.criteria.Overrides)
}

func TestFindUnionDedup(t *testing.T) {
	network := &fakeNetwork{edges: map[string][]string{
		"alice": {"bob"},
		"bob":   {"alice", "carol"},
	}}
	source := &fakeSource{ids: []string{"carol", "dave", "alice"}}
	finder := NewFinder(network, source, nil, nil, quietLogger())

	out := finder.Find(context.Background(), &models.Context{UserID: "alice"}, nil)
	// Network order first, then strategic; carol deduped, alice excluded.
	assert.Equal(t, []string{"carol", "dave"}, out)
}

func TestFindToleratesStrategyFailures(t *testing.T) {
	network := &fakeNetwork{err: errors.New("neo4j unavailable")}
	source := &fakeSource{err: errors.New("db down")}
	catalogue := &fakeCatalogue{err: errors.New("catalogue down")}
	finder := NewFinder(network, source, catalogue, nil, quietLogger())

	out := finder.Find(context.Background(), &models.Context{UserID: "alice"}, nil)
	assert.Empty(t, out)
}

func TestLoadCatalogueCaches(t *testing.T) {
	catalogue := &fakeCatalogue{docs: []models.CatalogueDoc{{Type: "project", ID: "p1", OwnerID: "bob"}}}
	store := newFakeCache()
	finder := NewFinder(nil, nil, catalogue, store, quietLogger())

	first, err := finder.loadCatalogue(context.Background())
	require.NoError(t, err)
	second, err := finder.loadCatalogue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, catalogue.calls, "second load served from cache")
}
