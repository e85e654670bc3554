package collab

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Tweenwrld/basix-marketplace/internal/cache"
	"github.com/Tweenwrld/basix-marketplace/internal/match"
	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

const (
	networkCandidateCap  = 50
	semanticCandidateCap = 30
	semanticThreshold    = 0.3

	catalogueCacheTTL = time.Hour
)

// Network exposes first-degree collaboration edges. The production
// implementation is backed by Neo4j; tests use an in-memory adjacency map.
type Network interface {
	Neighbors(ctx context.Context, userID string) ([]string, error)
}

// CandidateSource answers strategic candidate queries from persistent storage.
type CandidateSource interface {
	QueryCandidates(ctx context.Context, criteria models.StrategicCriteria) ([]string, error)
}

// CatalogueSource lists the project catalogue used for semantic discovery.
type CatalogueSource interface {
	ListCatalogue(ctx context.Context) ([]models.CatalogueDoc, error)
}

// Finder discovers candidate partners through three independent strategies:
// network traversal, semantic catalogue matching, and strategic fit queries.
// Strategies run concurrently; a failing strategy contributes an empty set
// rather than failing the discovery as a whole.
type Finder struct {
	network   Network
	source    CandidateSource
	catalogue CatalogueSource
	cache     cache.Cache
	matcher   *match.Matcher
	logger    *logrus.Logger
}

func NewFinder(network Network, source CandidateSource, catalogue CatalogueSource, c cache.Cache, logger *logrus.Logger) *Finder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Finder{
		network:   network,
		source:    source,
		catalogue: catalogue,
		cache:     c,
		matcher:   match.NewMatcher(),
		logger:    logger,
	}
}

// Find runs all three discovery strategies and returns the union of their
// results with duplicates removed. Order is deterministic: network results
// first, then semantic, then strategic, each in its strategy's own order.
// The requester never appears in the result.
func (f *Finder) Find(ctx context.Context, requester *models.Context, filters map[string]string) []string {
	var network, semantic, strategic []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		network = f.networkCandidates(gctx, requester.UserID)
		return nil
	})
	g.Go(func() error {
		semantic = f.semanticCandidates(gctx, requester)
		return nil
	})
	g.Go(func() error {
		strategic = f.strategicCandidates(gctx, requester, filters)
		return nil
	})
	g.Wait() //nolint:errcheck // strategies never return errors

	seen := map[string]bool{requester.UserID: true}
	var out []string
	for _, batch := range [][]string{network, semantic, strategic} {
		for _, id := range batch {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}

	f.logger.WithFields(logrus.Fields{
		"user_id":   requester.UserID,
		"network":   len(network),
		"semantic":  len(semantic),
		"strategic": len(strategic),
		"total":     len(out),
	}).Debug("Candidate discovery complete")

	return out
}

// networkCandidates returns second-degree connections: users reachable in
// exactly two hops, excluding direct connections and the requester.
func (f *Finder) networkCandidates(ctx context.Context, userID string) []string {
	if f.network == nil {
		return nil
	}

	direct, err := f.network.Neighbors(ctx, userID)
	if err != nil {
		f.logger.WithError(err).WithField("user_id", userID).Warn("Network strategy failed")
		return nil
	}

	oneHop := make(map[string]bool, len(direct))
	for _, id := range direct {
		oneHop[id] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, neighbor := range direct {
		second, err := f.network.Neighbors(ctx, neighbor)
		if err != nil {
			f.logger.WithError(err).WithField("user_id", neighbor).Warn("Second-hop traversal failed")
			continue
		}
		for _, id := range second {
			if id == userID || oneHop[id] || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
			if len(out) >= networkCandidateCap {
				return out
			}
		}
	}
	return out
}

// semanticCandidates matches the requester's expertise and goals against the
// project catalogue with TF-IDF cosine similarity. The catalogue is cached
// for an hour to keep repeated discoveries cheap.
func (f *Finder) semanticCandidates(ctx context.Context, requester *models.Context) []string {
	if f.catalogue == nil {
		return nil
	}

	docs, err := f.loadCatalogue(ctx)
	if err != nil {
		f.logger.WithError(err).Warn("Semantic strategy failed")
		return nil
	}
	if len(docs) == 0 {
		return nil
	}

	idx := match.BuildIndex(f.matcher, docs)
	profile := requesterProfile(requester)

	var out []string
	for i, doc := range idx.Docs() {
		if doc.Type != "project" || doc.ID == requester.ProjectID {
			continue
		}
		if idx.Similarity(profile, i) > semanticThreshold {
			out = append(out, doc.OwnerID)
			if len(out) >= semanticCandidateCap {
				break
			}
		}
	}
	return out
}

func (f *Finder) loadCatalogue(ctx context.Context) ([]models.CatalogueDoc, error) {
	var docs []models.CatalogueDoc
	if f.cache != nil {
		found, err := f.cache.Get(ctx, cache.CatalogueKey, &docs)
		if err != nil {
			f.logger.WithError(err).Debug("Catalogue cache read failed")
		} else if found {
			return docs, nil
		}
	}

	docs, err := f.catalogue.ListCatalogue(ctx)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		if err := f.cache.Set(ctx, cache.CatalogueKey, docs, catalogueCacheTTL); err != nil {
			f.logger.WithError(err).Debug("Catalogue cache write failed")
		}
	}
	return docs, nil
}

// strategicCandidates queries storage for users matching the requester's
// strategic profile. Explicit filters override the derived criteria.
func (f *Finder) strategicCandidates(ctx context.Context, requester *models.Context, filters map[string]string) []string {
	if f.source == nil {
		return nil
	}

	criteria := models.StrategicCriteria{
		Domains:         append(append([]string{}, requester.ExpertiseAreas...), requester.StrategicGoals...),
		Stage:           requester.ProjectStage,
		Geography:       requester.Location,
		ResourceNeeds:   string(requester.Resources.FundingTier),
		TimelineUrgency: requester.TimelineUrgency,
	}
	for key, value := range filters {
		switch key {
		case "collaboration_stage":
			criteria.Stage = value
		case "geographic_preference":
			criteria.Geography = value
		case "resource_needs":
			criteria.ResourceNeeds = value
		case "timeline_constraints":
			criteria.TimelineUrgency = value
		default:
			if criteria.Overrides == nil {
				criteria.Overrides = make(map[string]string)
			}
			criteria.Overrides[key] = value
		}
	}

	ids, err := f.source.QueryCandidates(ctx, criteria)
	if err != nil {
		f.logger.WithError(err).WithField("user_id", requester.UserID).Warn("Strategic strategy failed")
		return nil
	}
	return ids
}

// requesterProfile flattens the requester's expertise, goals, and project
// description into the text matched against catalogue entries.
func requesterProfile(c *models.Context) string {
	parts := make([]string, 0, len(c.ExpertiseAreas)+len(c.StrategicGoals)+1)
	parts = append(parts, c.ExpertiseAreas...)
	parts = append(parts, c.StrategicGoals...)
	if c.ProjectDescription != "" {
		parts = append(parts, c.ProjectDescription)
	}
	return strings.Join(parts, " ")
}
