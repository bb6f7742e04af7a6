package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/auto-me-bot/internal/core"
)

func newMockStore(t *testing.T) (*postgresStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := NewStore(sqlx.NewDb(conn, "postgres")).(*postgresStore)
	return store, mock
}

func TestSaveDelivery(t *testing.T) {
	store, mock := newMockStore(t)
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return createdAt }

	record := &core.DeliveryRecord{
		DeliveryID:   "d-1",
		Event:        "pull_request",
		Action:       "opened",
		RepoFullName: "octo-org/octo-repo",
		Outcome:      core.DeliveryProcessed,
		DurationMS:   42,
	}

	mock.ExpectQuery(`INSERT INTO deliveries \(delivery_id, event, action, repo_full_name, outcome, error, duration_ms, created_at\)`).
		WithArgs("d-1", "pull_request", "opened", "octo-org/octo-repo", core.DeliveryProcessed, "", int64(42), createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, store.SaveDelivery(context.Background(), record))
	assert.Equal(t, int64(17), record.ID)
	assert.Equal(t, createdAt, record.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDelivery_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO deliveries`).WillReturnError(errors.New("relation does not exist"))

	err := store.SaveDelivery(context.Background(), &core.DeliveryRecord{DeliveryID: "d-2", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "d-2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentDeliveries(t *testing.T) {
	store, mock := newMockStore(t)
	newer := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	columns := []string{"id", "delivery_id", "event", "action", "repo_full_name", "outcome", "error", "duration_ms", "created_at"}
	mock.ExpectQuery(`SELECT id, delivery_id, event, action, repo_full_name, outcome, error, duration_ms, created_at\s+FROM deliveries`).
		WithArgs(defaultListLimit).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(2), "d-2", "pull_request", "synchronize", "octo-org/octo-repo", core.DeliveryFailed, "boom", int64(120), newer).
			AddRow(int64(1), "d-1", "pull_request", "opened", "octo-org/octo-repo", core.DeliveryProcessed, "", int64(80), older))

	records, err := store.ListRecentDeliveries(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, core.DeliveryRecord{
		ID: 2, DeliveryID: "d-2", Event: "pull_request", Action: "synchronize",
		RepoFullName: "octo-org/octo-repo", Outcome: core.DeliveryFailed, Error: "boom",
		DurationMS: 120, CreatedAt: newer,
	}, records[0])
	assert.Equal(t, "d-1", records[1].DeliveryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentDeliveries_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`FROM deliveries`).WithArgs(maxListLimit).WillReturnError(errors.New("timeout"))

	_, err := store.ListRecentDeliveries(context.Background(), 10_000)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: -1, want: defaultListLimit},
		{in: 0, want: defaultListLimit},
		{in: 1, want: 1},
		{in: 50, want: 50},
		{in: maxListLimit, want: maxListLimit},
		{in: maxListLimit + 1, want: maxListLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.in), "limit %d", tt.in)
	}
}
