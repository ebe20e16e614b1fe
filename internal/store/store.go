// Package store provides PostgreSQL persistence for scan history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-scanner/internal/types"
)

// ErrNotFound is returned when a requested scan record does not exist.
var ErrNotFound = errors.New("scan not found")

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ScanRecord is one stored scan with its extraction payload
type ScanRecord struct {
	ID          uuid.UUID              `json:"id"`
	ContentHash string                 `json:"content_hash"`
	SourceURL   string                 `json:"source_url,omitempty"`
	Source      string                 `json:"source"`
	Result      types.ExtractionResult `json:"result"`
	CreatedAt   time.Time              `json:"created_at"`
}

// SaveScan stores a completed scan keyed by its content hash. A repeat
// scan of the same content replaces the previous record.
func (s *Store) SaveScan(ctx context.Context, contentHash, sourceURL string, result types.ExtractionResult) (uuid.UUID, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal scan result: %w", err)
	}

	var id uuid.UUID
	err = s.pool.QueryRow(ctx,
		`INSERT INTO scans (content_hash, source_url, source, result)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (content_hash) DO UPDATE SET
		     source_url = $2,
		     source = $3,
		     result = $4,
		     created_at = NOW()
		 RETURNING id`,
		contentHash, nullIfEmpty(sourceURL), string(result.Source), payload,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save scan: %w", err)
	}
	return id, nil
}

// GetScanByHash retrieves a stored scan by content hash, or nil when
// none exists.
func (s *Store) GetScanByHash(ctx context.Context, contentHash string) (*ScanRecord, error) {
	var rec ScanRecord
	var sourceURL *string
	var payload []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, content_hash, source_url, source, result, created_at
		 FROM scans WHERE content_hash = $1`,
		contentHash,
	).Scan(&rec.ID, &rec.ContentHash, &sourceURL, &rec.Source, &payload, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	if sourceURL != nil {
		rec.SourceURL = *sourceURL
	}
	if err := json.Unmarshal(payload, &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return &rec, nil
}

// ListRecent retrieves the most recent scans, newest first
func (s *Store) ListRecent(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, content_hash, source_url, source, result, created_at
		 FROM scans ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var sourceURL *string
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.ContentHash, &sourceURL, &rec.Source, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if sourceURL != nil {
			rec.SourceURL = *sourceURL
		}
		if err := json.Unmarshal(payload, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan result: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteScan removes a stored scan by ID
func (s *Store) DeleteScan(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM scans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
