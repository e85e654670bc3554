package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client wraps the Neo4j driver for collaboration network queries. Users
// are nodes, completed or active collaborations are COLLABORATED_WITH
// edges.
type Client struct {
	driver   neo4j.DriverWithContext
	logger   *slog.Logger
	database string
}

// NewClient connects to Neo4j and verifies connectivity before returning,
// so a misconfigured deployment fails at startup rather than mid-request.
func NewClient(ctx context.Context, uri, user, password string) (*Client, error) {
	if uri == "" || user == "" || password == "" {
		return nil, fmt.Errorf("neo4j credentials missing: uri=%s, user=%s", uri, user)
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = 50
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = time.Hour
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}

	logger := slog.Default().With("component", "neo4j")
	logger.Info("neo4j client connected", "uri", uri, "user", user)

	return &Client{
		driver:   driver,
		logger:   logger,
		database: "neo4j",
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if err := c.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	c.logger.Info("neo4j client closed")
	return nil
}

// HealthCheck verifies Neo4j connectivity.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j health check failed: %w", err)
	}
	return nil
}

// Neighbors returns the user IDs directly connected to userID.
func (c *Client) Neighbors(ctx context.Context, userID string) ([]string, error) {
	query := `
		MATCH (u:User {id: $id})-[:COLLABORATED_WITH]-(partner:User)
		RETURN DISTINCT partner.id AS id
	`
	result, err := neo4j.ExecuteQuery(ctx, c.driver, query,
		map[string]any{"id": userID},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, fmt.Errorf("neighbor query failed for %s: %w", userID, err)
	}

	ids := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		value, ok := record.Get("id")
		if !ok {
			continue
		}
		id, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type for partner id: %T", value)
		}
		ids = append(ids, id)
	}

	c.logger.Debug("neighbors fetched", "user_id", userID, "count", len(ids))
	return ids, nil
}

// RecordCollaboration upserts a collaboration edge between two users.
// Called when a request is approved so future discoveries see the link.
func (c *Client) RecordCollaboration(ctx context.Context, userID, partnerID string) error {
	query := `
		MERGE (a:User {id: $a})
		MERGE (b:User {id: $b})
		MERGE (a)-[r:COLLABORATED_WITH]-(b)
		ON CREATE SET r.created_at = timestamp()
	`
	_, err := neo4j.ExecuteQuery(ctx, c.driver, query,
		map[string]any{"a": userID, "b": partnerID},
		neo4j.EagerResultTransformer)
	if err != nil {
		return fmt.Errorf("record collaboration %s-%s: %w", userID, partnerID, err)
	}
	return nil
}
