// Package window decides whether street-performance applications are
// currently accepted and, if so, which month they target.
//
// The issuing office accepts applications in two windows each month:
// early-month submissions book slots one month ahead, late-month
// submissions book two months ahead. Between the windows, and after the
// second window closes, applications are rejected until the next window
// opens.
package window

import (
	"fmt"
	"time"
)

// Period is one acceptance window inside a month, expressed as an
// inclusive day-of-month range plus how many months ahead the resulting
// application targets.
type Period struct {
	StartDay      int
	EndDay        int
	AdvanceMonths int
}

// Rules holds both acceptance periods. The zero value is not usable;
// construct with DefaultRules or from configuration.
type Rules struct {
	First  Period
	Second Period
}

// DefaultRules mirrors the issuing office's schedule: days 1-15 apply
// for next month, days 20-31 apply for the month after next.
func DefaultRules() Rules {
	return Rules{
		First:  Period{StartDay: 1, EndDay: 15, AdvanceMonths: 1},
		Second: Period{StartDay: 20, EndDay: 31, AdvanceMonths: 2},
	}
}

// MonthRef identifies the calendar month an application targets.
type MonthRef struct {
	Year  int
	Month time.Month
}

// Display renders the month the way replies show it, e.g. "2025年10月".
func (m MonthRef) Display() string {
	return fmt.Sprintf("%d年%d月", m.Year, int(m.Month))
}

// First returns midnight on the first day of the month.
func (m MonthRef) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month.
func (m MonthRef) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Status describes the acceptance window at a given instant.
type Status struct {
	Open bool

	// Target is the month applications submitted now would book.
	// Only meaningful when Open is true.
	Target MonthRef

	// NextOpen is the first day applications are accepted again.
	// Only meaningful when Open is false.
	NextOpen time.Time
}

// Check evaluates the acceptance window at the given instant. The
// instant's location determines the calendar used, so callers pass
// time.Now() already shifted to the office's timezone.
func (r Rules) Check(now time.Time) Status {
	day := now.Day()

	if p, ok := r.periodFor(day); ok {
		target := now.AddDate(0, p.AdvanceMonths, -(day - 1))
		return Status{
			Open:   true,
			Target: MonthRef{Year: target.Year(), Month: target.Month()},
		}
	}

	return Status{Open: false, NextOpen: r.nextOpen(now)}
}

func (r Rules) periodFor(day int) (Period, bool) {
	switch {
	case day >= r.First.StartDay && day <= r.First.EndDay:
		return r.First, true
	case day >= r.Second.StartDay && day <= r.Second.EndDay:
		return r.Second, true
	}
	return Period{}, false
}

// nextOpen assumes now falls outside both periods: either before the
// first period, in the gap between them, or after the second.
func (r Rules) nextOpen(now time.Time) time.Time {
	day := now.Day()
	loc := now.Location()

	switch {
	case day < r.First.StartDay:
		return time.Date(now.Year(), now.Month(), r.First.StartDay, 0, 0, 0, 0, loc)
	case day < r.Second.StartDay:
		return time.Date(now.Year(), now.Month(), r.Second.StartDay, 0, 0, 0, 0, loc)
	default:
		next := now.AddDate(0, 1, -(day - 1))
		return time.Date(next.Year(), next.Month(), r.First.StartDay, 0, 0, 0, 0, loc)
	}
}
