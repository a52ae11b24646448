// Package session tracks one user's in-flight permit application. State
// lives in Redis under a TTL: an abandoned application simply expires
// and the next message starts fresh.
package session

import (
	"time"

	"github.com/buskerbot/permit-assistant/internal/dates"
	"github.com/buskerbot/permit-assistant/internal/window"
)

// Step is the closed set of conversation states. Every dispatcher
// switch over Step handles all members.
type Step string

const (
	StepStarted             Step = "application_started"
	StepSelectingDate       Step = "selecting_date"
	StepConfirmingDates     Step = "confirming_dates"
	StepWaitingVideoUpload  Step = "waiting_video_upload"
	StepWaitingConfirmation Step = "waiting_confirmation"
)

// Valid reports whether s is a known step. Sessions deserialized from
// storage can carry steps written by older builds.
func (s Step) Valid() bool {
	switch s {
	case StepStarted, StepSelectingDate, StepConfirmingDates,
		StepWaitingVideoUpload, StepWaitingConfirmation:
		return true
	}
	return false
}

// PendingDates holds a date proposal awaiting the user's yes/no.
type PendingDates struct {
	Dates     []dates.SelectedDate `json:"dates"`
	IsDefault bool                 `json:"is_default"`
}

// PendingIntent holds a medium-confidence interpretation awaiting the
// user's yes/no before it is acted on. Only set in
// StepWaitingConfirmation.
type PendingIntent struct {
	Intent        string `json:"intent"`
	CorrectedText string `json:"corrected_text"`
	ReturnStep    Step   `json:"return_step"`
}

// VideoRef points at an uploaded performance video.
type VideoRef struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	MessageID string    `json:"message_id"`
	Size      int64     `json:"size,omitempty"`
	StoredAt  time.Time `json:"stored_at"`
}

// Session is everything remembered about one user's application between
// messages.
type Session struct {
	UserID      string          `json:"user_id"`
	Step        Step            `json:"step"`
	TargetMonth window.MonthRef `json:"target_month"`

	SelectedDates []dates.SelectedDate `json:"selected_dates,omitempty"`
	Pending       *PendingDates        `json:"pending,omitempty"`
	Unconfirmed   *PendingIntent       `json:"unconfirmed,omitempty"`

	UseDefaultVideo bool      `json:"use_default_video"`
	NewVideo        *VideoRef `json:"new_video,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New starts a session for a fresh application targeting the month the
// current window books.
func New(userID string, target window.MonthRef, now time.Time) *Session {
	return &Session{
		UserID:      userID,
		Step:        StepStarted,
		TargetMonth: target,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Advance moves the session to the next step and stamps the update time.
func (s *Session) Advance(step Step, now time.Time) {
	s.Step = step
	s.UpdatedAt = now
}

// Propose records a date proposal awaiting confirmation.
func (s *Session) Propose(dates []dates.SelectedDate, isDefault bool, now time.Time) {
	s.Pending = &PendingDates{Dates: dates, IsDefault: isDefault}
	s.Advance(StepConfirmingDates, now)
}

// AcceptPending promotes the pending proposal into the confirmed
// selection and clears it.
func (s *Session) AcceptPending(now time.Time) {
	if s.Pending == nil {
		return
	}
	s.SelectedDates = s.Pending.Dates
	s.Pending = nil
	s.UpdatedAt = now
}

// RejectPending discards the proposal and returns to date selection.
func (s *Session) RejectPending(now time.Time) {
	s.Pending = nil
	s.Advance(StepSelectingDate, now)
}

// Suspend parks a medium-confidence interpretation for a yes/no check
// and remembers which step to resume on rejection.
func (s *Session) Suspend(intent, correctedText string, now time.Time) {
	s.Unconfirmed = &PendingIntent{
		Intent:        intent,
		CorrectedText: correctedText,
		ReturnStep:    s.Step,
	}
	s.Advance(StepWaitingConfirmation, now)
}

// Resume clears the suspended interpretation and returns to the step
// it interrupted.
func (s *Session) Resume(now time.Time) {
	if s.Unconfirmed == nil {
		return
	}
	step := s.Unconfirmed.ReturnStep
	s.Unconfirmed = nil
	s.Advance(step, now)
}
