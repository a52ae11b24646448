package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Providers recorded in the dedupe table.
const (
	ProviderLINE       = "line"
	ProviderAutomation = "automation"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ProcessedStore records webhook events that were already handled.
// LINE redelivers webhooks on slow responses, so every event id passes
// through MarkProcessed before the dispatcher runs. Rows have no value
// past the redelivery horizon; PurgeExpired trims them on a timer.
type ProcessedStore struct {
	pool      execer
	retention time.Duration
}

func NewProcessedStore(pool *pgxpool.Pool, retention time.Duration) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return newProcessedStoreWithExec(pool, retention)
}

func newProcessedStoreWithExec(exec execer, retention time.Duration) *ProcessedStore {
	if exec == nil {
		panic("events: exec required")
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &ProcessedStore{pool: exec, retention: retention}
}

// MarkProcessed inserts an event id for the provider, returning false if it already exists.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	query := `
		INSERT INTO processed_events (provider, event_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	ct, err := s.pool.Exec(ctx, query, provider, eventID)
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// PurgeExpired deletes dedupe rows older than the retention window,
// returning how many were removed.
func (s *ProcessedStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM processed_events WHERE processed_at < $1`
	ct, err := s.pool.Exec(ctx, query, now.Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("events: purge processed: %w", err)
	}
	return ct.RowsAffected(), nil
}
