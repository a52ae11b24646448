package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buskerbot/permit-assistant/internal/dates"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists application records to PostgreSQL.
type Store struct {
	pool querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("application: pgx pool required")
	}
	return &Store{pool: pool}
}

func newStoreWithExec(exec querier) *Store {
	if exec == nil {
		panic("application: exec required")
	}
	return &Store{pool: exec}
}

// Insert writes a new record. The caller sets RequestID; ID and
// timestamps are assigned here.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if s == nil || s.pool == nil {
		return nil
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusSubmitted
	}

	datesJSON, err := json.Marshal(rec.Dates)
	if err != nil {
		return fmt.Errorf("application: marshal dates: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO applications (
			id, request_id, user_id, target_year, target_month,
			dates, use_default_video, video_bucket, video_key,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, rec.ID, rec.RequestID, rec.UserID, rec.TargetYear, rec.TargetMonth,
		datesJSON, rec.UseDefaultVideo, rec.VideoBucket, rec.VideoKey,
		rec.Status, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("application: failed to insert: %w", err)
	}
	return nil
}

// SettleResult applies an automation callback to the record it
// belongs to. Unknown request ids return false without error, since
// callbacks can outlive records in test environments.
func (s *Store) SettleResult(ctx context.Context, requestID string, success bool, screenshotURL, failureReason string) (bool, error) {
	if s == nil || s.pool == nil {
		return false, nil
	}

	status := StatusConfirmed
	if !success {
		status = StatusFailed
	}

	ct, err := s.pool.Exec(ctx, `
		UPDATE applications SET
			status = $1,
			screenshot_url = $2,
			failure_reason = $3,
			updated_at = $4
		WHERE request_id = $5
	`, status, screenshotURL, failureReason, time.Now(), requestID)
	if err != nil {
		return false, fmt.Errorf("application: failed to settle result: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// GetByRequestID loads one record, or nil when absent.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (*Record, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}

	var rec Record
	var datesJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, request_id, user_id, target_year, target_month,
			   dates, use_default_video,
			   COALESCE(video_bucket, ''), COALESCE(video_key, ''),
			   status, COALESCE(screenshot_url, ''), COALESCE(failure_reason, ''),
			   created_at, updated_at
		FROM applications
		WHERE request_id = $1
	`, requestID).Scan(
		&rec.ID, &rec.RequestID, &rec.UserID, &rec.TargetYear, &rec.TargetMonth,
		&datesJSON, &rec.UseDefaultVideo, &rec.VideoBucket, &rec.VideoKey,
		&rec.Status, &rec.ScreenshotURL, &rec.FailureReason,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("application: failed to get: %w", err)
	}

	if len(datesJSON) > 0 {
		var decoded []dates.SelectedDate
		if err := json.Unmarshal(datesJSON, &decoded); err != nil {
			return nil, fmt.Errorf("application: decode dates: %w", err)
		}
		rec.Dates = decoded
	}
	return &rec, nil
}
