package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore implements Store using SQLite, for local mode and tests.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (and if necessary creates) a SQLite database at
// path and bootstraps the schema.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if logger == nil {
		logger = logrus.New()
	}
	store := &SQLiteStore{sqlStore{db: db, logger: logger}}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		expertise_areas TEXT DEFAULT '[]',
		strategic_goals TEXT DEFAULT '[]',
		location TEXT DEFAULT '',
		funding_tier TEXT DEFAULT '',
		team_size INTEGER DEFAULT 0,
		target_markets TEXT DEFAULT '[]',
		timeline_urgency TEXT DEFAULT '',
		has_ip_portfolio BOOLEAN DEFAULT 0,
		innovation_record BOOLEAN DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT DEFAULT '',
		description TEXT DEFAULT '',
		domain TEXT DEFAULT '',
		stage TEXT DEFAULT '',
		technology_areas TEXT DEFAULT '[]',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		title TEXT DEFAULT '',
		description TEXT DEFAULT '',
		domain TEXT DEFAULT '',
		price REAL DEFAULT 0,
		utility_features TEXT DEFAULT '[]',
		creator_reputation REAL DEFAULT 50,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS collaborations (
		user_id TEXT NOT NULL,
		partner_id TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_months INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, partner_id, created_at)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		price REAL DEFAULT 0,
		volume REAL DEFAULT 0,
		ts DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recommendations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		partner_id TEXT NOT NULL,
		confidence REAL DEFAULT 0,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id);
	CREATE INDEX IF NOT EXISTS idx_assets_owner ON assets(owner_id);
	CREATE INDEX IF NOT EXISTS idx_collaborations_user ON collaborations(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_ts ON transactions(ts);
	CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}
