package graph

import (
	"context"
	"sort"
	"sync"
)

// MemoryNetwork is an in-process adjacency map used in local mode and
// tests. Edges are undirected.
type MemoryNetwork struct {
	mu    sync.RWMutex
	edges map[string]map[string]bool
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{edges: make(map[string]map[string]bool)}
}

// Connect adds an undirected edge between two users.
func (n *MemoryNetwork) Connect(userID, partnerID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connect(userID, partnerID)
	n.connect(partnerID, userID)
}

func (n *MemoryNetwork) connect(from, to string) {
	if n.edges[from] == nil {
		n.edges[from] = make(map[string]bool)
	}
	n.edges[from][to] = true
}

// Neighbors returns the direct connections of userID in sorted order.
func (n *MemoryNetwork) Neighbors(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	adjacent := n.edges[userID]
	if len(adjacent) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(adjacent))
	for id := range adjacent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// RecordCollaboration mirrors the Neo4j client's write path.
func (n *MemoryNetwork) RecordCollaboration(ctx context.Context, userID, partnerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.Connect(userID, partnerID)
	return nil
}
