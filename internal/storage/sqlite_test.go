package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tweenwrld/basix-marketplace/internal/collab"
	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store, err := NewSQLiteStore(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLiteStore, id, name string) {
	t.Helper()
	_, err := store.db.Exec(`INSERT INTO users
		(id, name, expertise_areas, strategic_goals, location, funding_tier, team_size,
		 target_markets, timeline_urgency, has_ip_portfolio, innovation_record)
		VALUES (?, ?, '["blockchain","licensing"]', '["market_expansion"]', 'Nairobi', 'medium', 4,
		 '["Africa"]', 'normal', 1, 1)`, id, name)
	require.NoError(t, err)
}

func seedProject(t *testing.T, store *SQLiteStore, id, ownerID, title, stage string, createdAt time.Time) {
	t.Helper()
	_, err := store.db.Exec(`INSERT INTO projects
		(id, owner_id, title, description, domain, stage, technology_areas, created_at)
		VALUES (?, ?, ?, 'A project description', 'blockchain', ?, '["solidity"]', ?)`,
		id, ownerID, title, stage, createdAt)
	require.NoError(t, err)
}

func seedCollaboration(t *testing.T, store *SQLiteStore, userID, partnerID, status string, createdAt time.Time) {
	t.Helper()
	_, err := store.db.Exec(`INSERT INTO collaborations
		(user_id, partner_id, status, duration_months, created_at)
		VALUES (?, ?, ?, 6, ?)`, userID, partnerID, status, createdAt)
	require.NoError(t, err)
}

func TestGetContextAssembly(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "alice", "Alice")
	now := time.Now().UTC()
	seedProject(t, store, "proj-old", "alice", "Old project", "seed", now.Add(-48*time.Hour))
	seedProject(t, store, "proj-new", "alice", "New project", "growth", now)
	seedCollaboration(t, store, "alice", "bob", "completed", now.Add(-3*time.Hour))
	seedCollaboration(t, store, "alice", "carol", "cancelled", now.Add(-2*time.Hour))
	seedCollaboration(t, store, "alice", "dave", "active", now.Add(-time.Hour))
	_, err := store.db.Exec(`INSERT INTO assets (id, owner_id, asset_type, title, price)
		VALUES ('asset-1', 'alice', 'NFT', 'Artwork', 100)`)
	require.NoError(t, err)

	built, err := store.GetContext(ctx, "alice", "")
	require.NoError(t, err)

	assert.Equal(t, "alice", built.UserID)
	assert.Equal(t, "Alice", built.Name)
	assert.Equal(t, []string{"blockchain", "licensing"}, built.ExpertiseAreas)
	assert.Equal(t, []string{"market_expansion"}, built.StrategicGoals)
	assert.Equal(t, models.FundingMedium, built.Resources.FundingTier)
	assert.Equal(t, 4, built.Resources.TeamSize)
	assert.True(t, built.HasIPPortfolio)

	// Without an explicit project ID the latest project wins.
	assert.Equal(t, "proj-new", built.ProjectID)
	assert.Equal(t, "growth", built.ProjectStage)
	assert.Contains(t, built.ProjectDescription, "New project")

	assert.Len(t, built.History, 3)
	// One completed of two finished; the active one does not count.
	assert.InDelta(t, 0.5, built.SuccessRate, 1e-9)

	assert.Equal(t, []string{"asset-1"}, built.AssetIDs)
}

func TestGetContextExplicitProject(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "alice", "Alice")
	now := time.Now().UTC()
	seedProject(t, store, "proj-old", "alice", "Old project", "seed", now.Add(-48*time.Hour))
	seedProject(t, store, "proj-new", "alice", "New project", "growth", now)

	built, err := store.GetContext(context.Background(), "alice", "proj-old")
	require.NoError(t, err)
	assert.Equal(t, "proj-old", built.ProjectID)
	assert.Equal(t, "seed", built.ProjectStage)
}

func TestGetContextDefaults(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "alice", "Alice")

	built, err := store.GetContext(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, built.ProjectID, "missing project is not an error")
	assert.Empty(t, built.History)
	assert.InDelta(t, 0.5, built.SuccessRate, 1e-9, "no finished collaborations scores neutral")
}

func TestGetContextUnknownUser(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetContext(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCatalogue(t *testing.T) {
	store := setupTestStore(t)
	seedUser(t, store, "alice", "Alice")
	seedProject(t, store, "proj-1", "alice", "Royalty engine", "growth", time.Now().UTC())
	_, err := store.db.Exec(`INSERT INTO assets (id, owner_id, asset_type, title, description, domain, price)
		VALUES ('asset-1', 'alice', 'Digital', 'Sample pack', 'Audio samples', 'music', 20)`)
	require.NoError(t, err)

	docs, err := store.ListCatalogue(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := make(map[string]models.CatalogueDoc, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	assert.Equal(t, "project", byID["proj-1"].Type)
	assert.Equal(t, []string{"solidity"}, byID["proj-1"].TechnologyAreas)
	assert.Equal(t, "asset", byID["asset-1"].Type)
	assert.Empty(t, byID["asset-1"].TechnologyAreas)
	assert.Equal(t, "alice", byID["asset-1"].OwnerID)
}

func TestQueryCandidates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedUser(t, store, "alice", "Alice")
	seedUser(t, store, "bob", "Bob")
	seedUser(t, store, "carol", "Carol")
	seedProject(t, store, "p-alice", "alice", "A", "growth", now)
	seedProject(t, store, "p-bob", "bob", "B", "growth", now)
	seedProject(t, store, "p-carol", "carol", "C", "seed", now)

	ids, err := store.QueryCandidates(ctx, models.StrategicCriteria{Stage: "growth"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	ids, err = store.QueryCandidates(ctx, models.StrategicCriteria{
		Stage:   "growth",
		Domains: []string{"blockchain", "music"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)

	ids, err = store.QueryCandidates(ctx, models.StrategicCriteria{Domains: []string{"agritech"}})
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Empty criteria match everyone.
	ids, err = store.QueryCandidates(ctx, models.StrategicCriteria{})
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestListCollaborationPairs(t *testing.T) {
	store := setupTestStore(t)
	now := time.Now().UTC()
	seedCollaboration(t, store, "alice", "bob", "completed", now.Add(-2*time.Hour))
	seedCollaboration(t, store, "alice", "carol", "active", now.Add(-time.Hour))

	pairs, err := store.ListCollaborationPairs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]string{{"alice", "bob"}, {"alice", "carol"}}, pairs)
}

func TestRecommendationRoundtrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &collab.Recommendation{
		ID:          uuid.NewString(),
		PartnerID:   "bob",
		PartnerName: "Bob",
		Metrics:     collab.Metrics{TechnicalCompatibility: 0.9},
		ScoreLevel:  collab.ScoreGood,
		Reasoning:   []string{"shared expertise"},
		Confidence:  0.82,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveRecommendation(ctx, "alice", rec))

	recs, err := store.GetRecommendations(ctx, "alice", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "bob", got.PartnerID)
	assert.Equal(t, 0.82, got.Confidence)
	assert.Equal(t, collab.ScoreGood, got.ScoreLevel)
	assert.Equal(t, rec.Metrics, got.Metrics)

	none, err := store.GetRecommendations(ctx, "bob", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetRecommendationsLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		rec := &collab.Recommendation{
			ID:        uuid.NewString(),
			PartnerID: "bob",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SaveRecommendation(ctx, "alice", rec))
	}

	recs, err := store.GetRecommendations(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestAssets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice", "Alice")
	_, err := store.db.Exec(`INSERT INTO assets
		(id, owner_id, asset_type, title, price, utility_features, creator_reputation)
		VALUES ('asset-1', 'alice', 'NFT', 'Artwork', 250, '["revenue_share"]', 88)`)
	require.NoError(t, err)

	asset, err := store.GetAsset(ctx, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "NFT", asset.Type)
	assert.Equal(t, 250.0, asset.Price)
	assert.Equal(t, []string{"revenue_share"}, asset.UtilityFeatures)
	assert.Equal(t, 88.0, asset.CreatorReputation)

	_, err = store.GetAsset(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestListTransactionsSince(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := func(id string, ts time.Time) {
		_, err := store.db.Exec(`INSERT INTO transactions (id, asset_id, asset_type, price, volume, ts)
			VALUES (?, 'asset-1', 'NFT', 100, 1, ?)`, id, ts)
		require.NoError(t, err)
	}
	insert("tx-old", now.Add(-60*24*time.Hour))
	insert("tx-mid", now.Add(-10*24*time.Hour))
	insert("tx-new", now.Add(-time.Hour))

	txs, err := store.ListTransactions(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-mid", txs[0].ID)
	assert.Equal(t, "tx-new", txs[1].ID)
}
