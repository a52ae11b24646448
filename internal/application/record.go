// Package application persists finished permit applications and runs
// the finalize step that hands them to the paperwork automation.
package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/buskerbot/permit-assistant/internal/dates"
)

// Statuses an application record moves through. Submitted means the
// automation request went out; the callback settles it to confirmed or
// failed.
const (
	StatusSubmitted = "submitted"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// Record is one completed application as stored in Postgres.
type Record struct {
	ID          uuid.UUID
	RequestID   string
	UserID      string
	TargetYear  int
	TargetMonth int

	Dates           []dates.SelectedDate
	UseDefaultVideo bool
	VideoBucket     string
	VideoKey        string

	Status        string
	ScreenshotURL string
	FailureReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}
