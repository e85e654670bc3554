package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/Tweenwrld/basix-marketplace/internal/collab"
	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// sqlStore carries the query implementations shared by the Postgres and
// SQLite stores. List-valued columns are stored as JSON text.
type sqlStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

type userRow struct {
	ID               string `db:"id"`
	Name             string `db:"name"`
	ExpertiseAreas   string `db:"expertise_areas"`
	StrategicGoals   string `db:"strategic_goals"`
	Location         string `db:"location"`
	FundingTier      string `db:"funding_tier"`
	TeamSize         int    `db:"team_size"`
	TargetMarkets    string `db:"target_markets"`
	TimelineUrgency  string `db:"timeline_urgency"`
	HasIPPortfolio   bool   `db:"has_ip_portfolio"`
	InnovationRecord bool   `db:"innovation_record"`
}

type projectRow struct {
	ID              string `db:"id"`
	OwnerID         string `db:"owner_id"`
	Title           string `db:"title"`
	Description     string `db:"description"`
	Domain          string `db:"domain"`
	Stage           string `db:"stage"`
	TechnologyAreas string `db:"technology_areas"`
}

type catalogueRow struct {
	Type            string `db:"doc_type"`
	ID              string `db:"id"`
	OwnerID         string `db:"owner_id"`
	Domain          string `db:"domain"`
	TechnologyAreas string `db:"technology_areas"`
	Title           string `db:"title"`
	Description     string `db:"description"`
}

type assetRow struct {
	ID                string  `db:"id"`
	OwnerID           string  `db:"owner_id"`
	Type              string  `db:"asset_type"`
	Price             float64 `db:"price"`
	UtilityFeatures   string  `db:"utility_features"`
	CreatorReputation float64 `db:"creator_reputation"`
}

// GetContext assembles a scoring context from the user record, their most
// relevant project, collaboration history, and owned assets.
func (s *sqlStore) GetContext(ctx context.Context, userID, projectID string) (*models.Context, error) {
	var user userRow
	query := s.db.Rebind(`SELECT id, name, expertise_areas, strategic_goals, location,
		funding_tier, team_size, target_markets, timeline_urgency,
		has_ip_portfolio, innovation_record
		FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &user, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	built := &models.Context{
		UserID:           user.ID,
		Name:             user.Name,
		ExpertiseAreas:   decodeList(user.ExpertiseAreas),
		StrategicGoals:   decodeList(user.StrategicGoals),
		Location:         user.Location,
		TargetMarkets:    decodeList(user.TargetMarkets),
		TimelineUrgency:  user.TimelineUrgency,
		HasIPPortfolio:   user.HasIPPortfolio,
		InnovationRecord: user.InnovationRecord,
		Resources: models.ResourceCapacity{
			FundingTier: models.FundingTier(user.FundingTier),
			TeamSize:    user.TeamSize,
		},
		BuiltAt: time.Now().UTC(),
	}

	project, err := s.projectFor(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project != nil {
		built.ProjectID = project.ID
		built.ProjectStage = project.Stage
		built.ProjectDescription = project.Title + " " + project.Description
	}

	history, err := s.collabHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	built.History = history
	built.SuccessRate = successRate(history)

	assetIDs, err := s.assetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	built.AssetIDs = assetIDs

	return built, nil
}

func (s *sqlStore) projectFor(ctx context.Context, userID, projectID string) (*projectRow, error) {
	var project projectRow
	var err error
	if projectID != "" {
		query := s.db.Rebind(`SELECT id, owner_id, title, description, domain, stage, technology_areas
			FROM projects WHERE id = ?`)
		err = s.db.GetContext(ctx, &project, query, projectID)
	} else {
		query := s.db.Rebind(`SELECT id, owner_id, title, description, domain, stage, technology_areas
			FROM projects WHERE owner_id = ? ORDER BY created_at DESC LIMIT 1`)
		err = s.db.GetContext(ctx, &project, query, userID)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get project for user %s: %w", userID, err)
	}
	return &project, nil
}

func (s *sqlStore) collabHistory(ctx context.Context, userID string) ([]models.CollabRecord, error) {
	var history []models.CollabRecord
	query := s.db.Rebind(`SELECT partner_id, status, duration_months
		FROM collaborations WHERE user_id = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &history, query, userID); err != nil {
		return nil, fmt.Errorf("get collaboration history for %s: %w", userID, err)
	}
	return history, nil
}

// successRate is the completed share of finished collaborations. A user
// with no finished collaborations gets the neutral 0.5.
func successRate(history []models.CollabRecord) float64 {
	completed, finished := 0, 0
	for _, record := range history {
		switch record.Status {
		case "completed":
			completed++
			finished++
		case "cancelled":
			finished++
		}
	}
	if finished == 0 {
		return 0.5
	}
	return float64(completed) / float64(finished)
}

func (s *sqlStore) assetIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := s.db.Rebind(`SELECT id FROM assets WHERE owner_id = ?`)
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("get assets for %s: %w", userID, err)
	}
	return ids, nil
}

// ListCatalogue returns all asset and project listings as a flat document
// catalogue for the semantic matcher.
func (s *sqlStore) ListCatalogue(ctx context.Context) ([]models.CatalogueDoc, error) {
	var rows []catalogueRow
	query := `
		SELECT 'project' AS doc_type, id, owner_id, domain, technology_areas, title, description
		FROM projects
		UNION ALL
		SELECT 'asset' AS doc_type, id, owner_id, domain, '[]' AS technology_areas, title, description
		FROM assets
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}

	docs := make([]models.CatalogueDoc, len(rows))
	for i, row := range rows {
		docs[i] = models.CatalogueDoc{
			Type:            row.Type,
			ID:              row.ID,
			OwnerID:         row.OwnerID,
			Domain:          row.Domain,
			TechnologyAreas: decodeList(row.TechnologyAreas),
			Title:           row.Title,
			Description:     row.Description,
		}
	}
	return docs, nil
}

const candidateQueryLimit = 50

// QueryCandidates returns user IDs matching the strategic criteria. Empty
// criteria fields do not constrain the query.
func (s *sqlStore) QueryCandidates(ctx context.Context, criteria models.StrategicCriteria) ([]string, error) {
	query := `SELECT DISTINCT u.id FROM users u
		LEFT JOIN projects p ON p.owner_id = u.id
		WHERE 1=1`
	var args []interface{}

	if criteria.Stage != "" {
		query += ` AND p.stage = ?`
		args = append(args, criteria.Stage)
	}
	if criteria.Geography != "" {
		query += ` AND u.location = ?`
		args = append(args, criteria.Geography)
	}
	if criteria.ResourceNeeds != "" {
		query += ` AND u.funding_tier = ?`
		args = append(args, criteria.ResourceNeeds)
	}
	if criteria.TimelineUrgency != "" {
		query += ` AND u.timeline_urgency = ?`
		args = append(args, criteria.TimelineUrgency)
	}
	if len(criteria.Domains) > 0 {
		in, inArgs, err := sqlx.In(` AND p.domain IN (?)`, criteria.Domains)
		if err != nil {
			return nil, fmt.Errorf("build domain filter: %w", err)
		}
		query += in
		args = append(args, inArgs...)
	}
	query += ` ORDER BY u.id LIMIT ?`
	args = append(args, candidateQueryLimit)

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	return ids, nil
}

// ListCollaborationPairs returns every (user, partner) edge recorded in
// the collaborations table. Used to seed the in-process network graph
// when no Neo4j instance is configured.
func (s *sqlStore) ListCollaborationPairs(ctx context.Context) ([][2]string, error) {
	type pairRow struct {
		UserID    string `db:"user_id"`
		PartnerID string `db:"partner_id"`
	}
	var rows []pairRow
	query := `SELECT DISTINCT user_id, partner_id FROM collaborations`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list collaboration pairs: %w", err)
	}
	pairs := make([][2]string, len(rows))
	for i, row := range rows {
		pairs[i] = [2]string{row.UserID, row.PartnerID}
	}
	return pairs, nil
}

func (s *sqlStore) ListTransactions(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	query := s.db.Rebind(`SELECT id, asset_id, asset_type, price, volume, ts
		FROM transactions WHERE ts >= ? ORDER BY ts`)
	if err := s.db.SelectContext(ctx, &txs, query, since); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *sqlStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	var rows []assetRow
	query := `SELECT id, owner_id, asset_type, price, utility_features, creator_reputation FROM assets`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	assets := make([]models.Asset, len(rows))
	for i, row := range rows {
		assets[i] = assetFromRow(row)
	}
	return assets, nil
}

func (s *sqlStore) GetAsset(ctx context.Context, assetID string) (*models.Asset, error) {
	var row assetRow
	query := s.db.Rebind(`SELECT id, owner_id, asset_type, price, utility_features, creator_reputation
		FROM assets WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, assetID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	asset := assetFromRow(row)
	return &asset, nil
}

func assetFromRow(row assetRow) models.Asset {
	return models.Asset{
		ID:                row.ID,
		OwnerID:           row.OwnerID,
		Type:              row.Type,
		Price:             row.Price,
		UtilityFeatures:   decodeList(row.UtilityFeatures),
		CreatorReputation: row.CreatorReputation,
	}
}

// SaveRecommendation persists a recommendation as a JSON document keyed by
// its ID, for audit and later outcome tracking.
func (s *sqlStore) SaveRecommendation(ctx context.Context, userID string, rec *collab.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation %s: %w", rec.ID, err)
	}

	query := s.db.Rebind(`INSERT INTO recommendations (id, user_id, partner_id, confidence, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		rec.ID, userID, rec.PartnerID, rec.Confidence, string(payload), rec.CreatedAt); err != nil {
		return fmt.Errorf("save recommendation %s: %w", rec.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"recommendation_id": rec.ID,
		"user_id":           userID,
		"partner_id":        rec.PartnerID,
	}).Debug("Recommendation saved")
	return nil
}

func (s *sqlStore) GetRecommendations(ctx context.Context, userID string, limit int) ([]*collab.Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}
	var payloads []string
	query := s.db.Rebind(`SELECT payload FROM recommendations
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &payloads, query, userID, limit); err != nil {
		return nil, fmt.Errorf("get recommendations for %s: %w", userID, err)
	}

	recs := make([]*collab.Recommendation, 0, len(payloads))
	for _, payload := range payloads {
		var rec collab.Recommendation
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal stored recommendation: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// decodeList parses a JSON array column. Legacy empty or null columns
// decode to nil.
func decodeList(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
