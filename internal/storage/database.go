// Package storage persists the delivery history.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/auto-me-bot/internal/core"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Store defines the interface for all database operations.
type Store interface {
	core.DeliveryRecorder
	ListRecentDeliveries(ctx context.Context, limit int) ([]core.DeliveryRecord, error)
}

type postgresStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db, now: time.Now}
}

// SaveDelivery inserts a delivery record and fills in its ID.
func (s *postgresStore) SaveDelivery(ctx context.Context, d *core.DeliveryRecord) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}

	query := `
		INSERT INTO deliveries (delivery_id, event, action, repo_full_name, outcome, error, duration_ms, created_at)
		VALUES (:delivery_id, :event, :action, :repo_full_name, :outcome, :error, :duration_ms, :created_at)
		RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, d)
	if err != nil {
		return fmt.Errorf("failed to save delivery %s: %w", d.DeliveryID, err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&d.ID); err != nil {
			return fmt.Errorf("failed to read delivery id: %w", err)
		}
	}
	return rows.Err()
}

// ListRecentDeliveries returns the newest deliveries first.
func (s *postgresStore) ListRecentDeliveries(ctx context.Context, limit int) ([]core.DeliveryRecord, error) {
	query := `
		SELECT id, delivery_id, event, action, repo_full_name, outcome, error, duration_ms, created_at
		FROM deliveries
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var records []core.DeliveryRecord
	if err := s.db.SelectContext(ctx, &records, query, clampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return records, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
