// Package history tracks recommendation outcomes so scoring confidence
// can learn from how past partnerships actually went.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	outcomesBucket = "outcomes"

	// Smoothing constant for the validation prior: a pair with no
	// recorded outcomes scores the neutral prior of 0.8, and each
	// recorded outcome pulls the score toward the observed rate.
	smoothingWeight = 5.0
	neutralPrior    = 0.8
)

// Outcome is the recorded result of one acted-on recommendation.
type Outcome struct {
	Completed  bool      `json:"completed"`
	RecordedAt time.Time `json:"recorded_at"`
}

type pairRecord struct {
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists per-pair outcome counts in a local bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordOutcome registers whether a recommended collaboration between the
// two users completed. The pair key is order-independent.
func (s *Store) RecordOutcome(ctx context.Context, requesterID, partnerID string, outcome Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := pairKey(requesterID, partnerID)
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(outcomesBucket))
		if err != nil {
			return fmt.Errorf("create outcomes bucket: %w", err)
		}

		var record pairRecord
		if raw := bucket.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("decode outcome record: %w", err)
			}
		}

		record.Total++
		if outcome.Completed {
			record.Completed++
		}
		record.UpdatedAt = outcome.RecordedAt
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = time.Now().UTC()
		}

		raw, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode outcome record: %w", err)
		}
		return bucket.Put(key, raw)
	})
}

// ValidationScore returns the smoothed completion rate for a pair in
// [0,1]. With no recorded outcomes it returns the neutral prior 0.8.
func (s *Store) ValidationScore(ctx context.Context, requesterID, partnerID string) float64 {
	if ctx.Err() != nil {
		return neutralPrior
	}

	var record pairRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomesBucket))
		if bucket == nil {
			return nil
		}
		raw := bucket.Get(pairKey(requesterID, partnerID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &record)
	})
	if err != nil || record.Total == 0 {
		return neutralPrior
	}

	total := float64(record.Total)
	return (float64(record.Completed) + neutralPrior*smoothingWeight) / (total + smoothingWeight)
}

func pairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte(a + "|" + b)
}
