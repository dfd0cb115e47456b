// internal/adapter/storage/snapshot_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendwatch/internal/domain/trends"
)

// SnapshotStore implements storage for keyword statistics snapshots
type SnapshotStore struct {
	db *pgxpool.Pool
}

// NewSnapshotStore creates a new snapshot store
func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{
		db: db,
	}
}

// Init creates the backing table and index if they do not exist
func (s *SnapshotStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS keyword_snapshots (
			id UUID PRIMARY KEY,
			keyword TEXT NOT NULL,
			geo TEXT NOT NULL DEFAULT '',
			timeframe TEXT NOT NULL,
			stats JSONB NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating keyword_snapshots table: %w", err)
	}

	index := `
		CREATE INDEX IF NOT EXISTS keyword_snapshots_keyword_idx
		ON keyword_snapshots (keyword, captured_at DESC)
	`

	if _, err := s.db.Exec(ctx, index); err != nil {
		return fmt.Errorf("error creating keyword_snapshots index: %w", err)
	}

	return nil
}

// SaveSnapshots persists one snapshot row per keyword, all stamped with
// the same capture time
func (s *SnapshotStore) SaveSnapshots(ctx context.Context, geo, timeframe string, stats map[string]trends.KeywordStats) error {
	query := `
		INSERT INTO keyword_snapshots (
			id, keyword, geo, timeframe, stats, captured_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	capturedAt := time.Now().UTC()

	for keyword, keywordStats := range stats {
		statsJSON, err := json.Marshal(keywordStats)
		if err != nil {
			return fmt.Errorf("error marshaling stats: %w", err)
		}

		_, err = s.db.Exec(
			ctx,
			query,
			uuid.New().String(),
			keyword,
			geo,
			timeframe,
			statsJSON,
			capturedAt,
		)

		if err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	return nil
}

// History retrieves the most recent snapshots for a keyword, newest first
func (s *SnapshotStore) History(ctx context.Context, keyword string, limit int) ([]trends.KeywordSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, keyword, geo, timeframe, stats, captured_at
		FROM keyword_snapshots
		WHERE keyword = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var snapshots []trends.KeywordSnapshot
	for rows.Next() {
		var snap trends.KeywordSnapshot
		var statsJSON []byte

		err := rows.Scan(
			&snap.ID,
			&snap.Keyword,
			&snap.Geo,
			&snap.Timeframe,
			&statsJSON,
			&snap.CapturedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}

		if err := json.Unmarshal(statsJSON, &snap.Stats); err != nil {
			return nil, fmt.Errorf("error unmarshaling stats: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
