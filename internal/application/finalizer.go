package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/buskerbot/permit-assistant/internal/docs"
	"github.com/buskerbot/permit-assistant/internal/session"
)

type sessionDeleter interface {
	Delete(ctx context.Context, userID string) error
}

// Finalizer turns a confirmed session into a persisted application and
// kicks off the paperwork automation. The session is cleared no matter
// what: once the user confirmed, the conversation is over, and any
// downstream failure is reported through the callback path instead of
// trapping the user in a stuck state.
type Finalizer struct {
	records    *Store
	automation *docs.Client
	sessions   sessionDeleter
	logger     *slog.Logger

	callbackURL   string
	submitTimeout time.Duration
	newRequestID  func() string
}

func NewFinalizer(records *Store, automation *docs.Client, sessions sessionDeleter, callbackURL string, submitTimeout time.Duration, logger *slog.Logger) *Finalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if submitTimeout <= 0 {
		submitTimeout = 15 * time.Second
	}
	return &Finalizer{
		records:       records,
		automation:    automation,
		sessions:      sessions,
		logger:        logger,
		callbackURL:   callbackURL,
		submitTimeout: submitTimeout,
		newRequestID:  func() string { return uuid.NewString() },
	}
}

// Finalize persists the application and dispatches the automation
// request in the background, then clears the session. Persistence
// failures are logged but non-fatal: the submission still goes out and
// the user still gets their completion reply.
func (f *Finalizer) Finalize(ctx context.Context, sess *session.Session) (*Record, error) {
	rec := &Record{
		RequestID:       f.newRequestID(),
		UserID:          sess.UserID,
		TargetYear:      sess.TargetMonth.Year,
		TargetMonth:     int(sess.TargetMonth.Month),
		Dates:           sess.SelectedDates,
		UseDefaultVideo: sess.UseDefaultVideo,
		Status:          StatusSubmitted,
	}
	if sess.NewVideo != nil {
		rec.VideoBucket = sess.NewVideo.Bucket
		rec.VideoKey = sess.NewVideo.Key
	}

	if err := f.records.Insert(ctx, rec); err != nil {
		f.logger.Error("application record insert failed",
			"user_id", sess.UserID,
			"request_id", rec.RequestID,
			"error", err.Error(),
		)
	}

	if err := f.sessions.Delete(ctx, sess.UserID); err != nil {
		f.logger.Error("session cleanup failed after finalize",
			"user_id", sess.UserID,
			"error", err.Error(),
		)
	}

	f.dispatchSubmit(rec)
	return rec, nil
}

// dispatchSubmit fires the automation request without blocking the
// reply. The detached context bounds the call so a dead automation
// service cannot accumulate goroutines.
func (f *Finalizer) dispatchSubmit(rec *Record) {
	if !f.automation.Enabled() {
		return
	}

	req := docs.SubmitRequest{
		RequestID:       rec.RequestID,
		UserID:          rec.UserID,
		TargetMonth:     targetMonthDisplay(rec),
		Dates:           rec.Dates,
		UseDefaultVideo: rec.UseDefaultVideo,
		VideoBucket:     rec.VideoBucket,
		VideoKey:        rec.VideoKey,
		CallbackURL:     f.callbackURL,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), f.submitTimeout)
		defer cancel()

		if err := f.automation.Submit(ctx, req); err != nil {
			f.logger.Error("automation submit failed",
				"request_id", rec.RequestID,
				"user_id", rec.UserID,
				"error", err.Error(),
			)
		}
	}()
}

func targetMonthDisplay(rec *Record) string {
	return monthDisplay(rec.TargetYear, rec.TargetMonth)
}

func monthDisplay(year, month int) string {
	// Matches the reply format, e.g. "2025年10月".
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006年1月")
}
