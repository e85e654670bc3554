package main

import (
	"context"
	"fmt"

	"github.com/Tweenwrld/basix-marketplace/internal/cache"
	"github.com/Tweenwrld/basix-marketplace/internal/collab"
	"github.com/Tweenwrld/basix-marketplace/internal/graph"
	"github.com/Tweenwrld/basix-marketplace/internal/history"
	"github.com/Tweenwrld/basix-marketplace/internal/market"
	"github.com/Tweenwrld/basix-marketplace/internal/rules"
	"github.com/Tweenwrld/basix-marketplace/internal/storage"
)

// app bundles every wired dependency a command might need.
type app struct {
	store    storage.Store
	cache    cache.Cache
	network  collab.Network
	history  *history.Store
	engine   *collab.Engine
	analyzer *market.Analyzer

	closers []func()
}

// buildApp wires storage, cache, graph, history, rules, and the engine
// according to the configured mode. "server" mode talks to Postgres,
// Redis, and Neo4j; anything else runs fully in-process over SQLite.
func buildApp(ctx context.Context) (*app, error) {
	a := &app{}

	store, err := buildStore()
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, func() { store.Close() })

	a.buildCache(ctx)
	if err := a.buildNetwork(ctx, store); err != nil {
		a.close()
		return nil, err
	}

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.WithError(err).Warn("History store unavailable, confidence uses the neutral prior")
	} else {
		a.history = hist
		a.closers = append(a.closers, func() { hist.Close() })
	}

	kb, err := rules.LoadKnowledgeBase(cfg.Rules.Directory)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load rule knowledge base: %w", err)
	}
	var insights rules.InsightProvider
	if provider := rules.NewOpenAIInsights(cfg.API.OpenAIKey); provider != nil {
		insights = provider
	}
	ruleEngine := rules.NewEngine(kb, insights)

	var validator collab.Validator
	if a.history != nil {
		validator = a.history
	}
	scorer := collab.NewScorer(validator)
	finder := collab.NewFinder(a.network, store, store, a.cache, logger)
	a.engine = collab.NewEngine(store, finder, scorer, ruleEngine, a.cache, collab.Options{
		MinConfidence:      cfg.Engine.MinConfidence,
		MaxRecommendations: cfg.Engine.MaxRecommendations,
		ScoringTimeout:     cfg.Engine.ScoringTimeout,
		ContextTTL:         cfg.Engine.ContextTTL,
	}, logger)
	a.analyzer = market.NewAnalyzer(logger)

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildStore() (storage.Store, error) {
	if cfg.Storage.Type == "postgres" {
		store, err := storage.NewPostgresStore(cfg.Storage.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	}
	store, err := storage.NewSQLiteStore(cfg.Storage.LocalPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

// buildCache prefers Redis in server mode and degrades to the in-process
// cache when Redis is unreachable.
func (a *app) buildCache(ctx context.Context) {
	if cfg.Mode == "server" {
		redis, err := cache.NewRedis(ctx, cfg.Cache.RedisHost, cfg.Cache.RedisPort, cfg.Cache.RedisPassword)
		if err == nil {
			a.cache = redis
			a.closers = append(a.closers, func() { redis.Close() })
			return
		}
		logger.WithError(err).Warn("Redis unavailable, using in-process cache")
	}
	a.cache = cache.NewMemory()
}

// buildNetwork connects to Neo4j in server mode; otherwise it loads the
// collaboration edges from storage into an in-process graph.
func (a *app) buildNetwork(ctx context.Context, store storage.Store) error {
	if cfg.Mode == "server" {
		client, err := graph.NewClient(ctx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPassword)
		if err != nil {
			return fmt.Errorf("connect collaboration graph: %w", err)
		}
		a.network = client
		a.closers = append(a.closers, func() { client.Close(context.Background()) })
		return nil
	}

	mem := graph.NewMemoryNetwork()
	pairs, err := store.ListCollaborationPairs(ctx)
	if err != nil {
		logger.WithError(err).Warn("Could not seed collaboration network, network discovery disabled")
	}
	for _, pair := range pairs {
		mem.Connect(pair[0], pair[1])
	}
	a.network = mem
	return nil
}
