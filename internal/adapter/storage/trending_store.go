// internal/adapter/storage/trending_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendwatch/internal/domain/trends"
)

// TrendingStore implements storage for trending search captures
type TrendingStore struct {
	db *pgxpool.Pool
}

// NewTrendingStore creates a new trending store
func NewTrendingStore(db *pgxpool.Pool) *TrendingStore {
	return &TrendingStore{
		db: db,
	}
}

// Init creates the backing table and index if they do not exist
func (s *TrendingStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS trending_captures (
			id UUID PRIMARY KEY,
			geo TEXT NOT NULL,
			terms TEXT[] NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating trending_captures table: %w", err)
	}

	index := `
		CREATE INDEX IF NOT EXISTS trending_captures_geo_idx
		ON trending_captures (geo, captured_at DESC)
	`

	if _, err := s.db.Exec(ctx, index); err != nil {
		return fmt.Errorf("error creating trending_captures index: %w", err)
	}

	return nil
}

// SaveCapture saves one trending snapshot for a geo
func (s *TrendingStore) SaveCapture(ctx context.Context, capture trends.TrendingCapture) error {
	query := `
		INSERT INTO trending_captures (
			id, geo, terms, captured_at
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		uuid.New().String(),
		capture.Geo,
		capture.Terms,
		capture.CapturedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// RecentCaptures retrieves the latest trending snapshots, newest first.
// An empty geo returns captures for every geo.
func (s *TrendingStore) RecentCaptures(ctx context.Context, geo string, limit int) ([]trends.TrendingCapture, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT geo, terms, captured_at
		FROM trending_captures
	`

	args := []interface{}{}
	if geo != "" {
		query += ` WHERE geo = $1`
		args = append(args, geo)
	}

	query += fmt.Sprintf(` ORDER BY captured_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var captures []trends.TrendingCapture
	for rows.Next() {
		var capture trends.TrendingCapture

		if err := rows.Scan(&capture.Geo, &capture.Terms, &capture.CapturedAt); err != nil {
			return nil, fmt.Errorf("error scanning capture: %w", err)
		}

		captures = append(captures, capture)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating captures: %w", err)
	}

	return captures, nil
}
