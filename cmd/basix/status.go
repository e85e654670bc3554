package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tweenwrld/basix-marketplace/internal/cache"
	"github.com/Tweenwrld/basix-marketplace/internal/graph"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and backend connectivity",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Printf("🔍 Basix Status\n")
	fmt.Printf("%s\n", strings.Repeat("═", 50))

	fmt.Printf("\n📋 Configuration:\n")
	fmt.Printf("  Mode: %s\n", cfg.Mode)
	fmt.Printf("  Storage: %s\n", cfg.Storage.Type)
	fmt.Printf("  Rules directory: %s\n", orDefault(cfg.Rules.Directory, "(compiled defaults)"))
	fmt.Printf("  History: %s\n", cfg.History.Path)
	fmt.Printf("  Insights: %s\n", insightStatus())

	if cfg.Mode != "server" {
		fmt.Printf("\n💾 Backends: in-process (SQLite + memory cache + memory graph)\n")
		return nil
	}

	fmt.Printf("\n💾 Backends:\n")

	if redis, err := cache.NewRedis(ctx, cfg.Cache.RedisHost, cfg.Cache.RedisPort, cfg.Cache.RedisPassword); err != nil {
		fmt.Printf("  Redis: ❌ %v\n", err)
	} else {
		fmt.Printf("  Redis: ✅ %s:%d\n", cfg.Cache.RedisHost, cfg.Cache.RedisPort)
		redis.Close()
	}

	if client, err := graph.NewClient(ctx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPassword); err != nil {
		fmt.Printf("  Neo4j: ❌ %v\n", err)
	} else {
		fmt.Printf("  Neo4j: ✅ %s\n", cfg.Graph.Neo4jURI)
		client.Close(ctx)
	}

	if store, err := buildStore(); err != nil {
		fmt.Printf("  Storage: ❌ %v\n", err)
	} else {
		fmt.Printf("  Storage: ✅ %s\n", cfg.Storage.Type)
		store.Close()
	}

	return nil
}

func insightStatus() string {
	if cfg.API.OpenAIKey != "" {
		return "enabled (OpenAI)"
	}
	return "rules-only"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
