package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Tweenwrld/basix-marketplace/internal/collab"
	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Store defines the marketplace storage interface. It satisfies the
// recommendation engine's ContextSource, CandidateSource, and
// CatalogueSource contracts.
type Store interface {
	// Context assembly
	GetContext(ctx context.Context, userID, projectID string) (*models.Context, error)

	// Candidate discovery
	ListCatalogue(ctx context.Context) ([]models.CatalogueDoc, error)
	QueryCandidates(ctx context.Context, criteria models.StrategicCriteria) ([]string, error)
	ListCollaborationPairs(ctx context.Context) ([][2]string, error)

	// Market analytics
	ListTransactions(ctx context.Context, since time.Time) ([]models.Transaction, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetAsset(ctx context.Context, assetID string) (*models.Asset, error)

	// Recommendation persistence
	SaveRecommendation(ctx context.Context, userID string, rec *collab.Recommendation) error
	GetRecommendations(ctx context.Context, userID string, limit int) ([]*collab.Recommendation, error)

	// Close connection
	Close() error
}
