package dates

import (
	"time"

	"github.com/buskerbot/permit-assistant/internal/window"
)

// DaysOfWeekday lists every day-of-month in the target month that
// falls on the given weekday, in ascending order.
func DaysOfWeekday(target window.MonthRef, wd time.Weekday) []SelectedDate {
	var out []SelectedDate
	for day := 1; day <= target.Days(); day++ {
		t := time.Date(target.Year, target.Month, day, 0, 0, 0, 0, time.UTC)
		if t.Weekday() == wd {
			out = append(out, resolve(day, target))
		}
	}
	return out
}

// Saturdays lists the Saturdays of the target month.
func Saturdays(target window.MonthRef) []SelectedDate {
	return DaysOfWeekday(target, time.Saturday)
}

// Sundays lists the Sundays of the target month.
func Sundays(target window.MonthRef) []SelectedDate {
	return DaysOfWeekday(target, time.Sunday)
}

// DefaultDates picks the fallback schedule for users who don't name
// specific days: the first n Saturdays of the target month.
func DefaultDates(target window.MonthRef, n int) []SelectedDate {
	sats := Saturdays(target)
	if len(sats) > n {
		sats = sats[:n]
	}
	return sats
}
