package dates

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buskerbot/permit-assistant/internal/window"
)

// dayPattern matches a 1-2 digit day with an optional date suffix.
// Both the traditional 號 and simplified 号 appear in transcripts.
var dayPattern = regexp.MustCompile(`(\d{1,2})[號号日]?`)

// SelectedDate is one performance date the user picked, resolved
// against the target month.
type SelectedDate struct {
	Day     int    `json:"day"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Weekday string `json:"weekday"`
	Display string `json:"display"`
}

// Time returns midnight of the date in the given location.
func (d SelectedDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

// ParseResult reports which requested days resolved to dates and which
// were rejected. Parsing succeeds partially: one bad day does not
// discard the good ones.
type ParseResult struct {
	Dates   []SelectedDate
	Invalid []int
}

// Ok reports whether at least one date was accepted.
func (r ParseResult) Ok() bool {
	return len(r.Dates) > 0
}

// ParseDays extracts day-of-month numbers from user text and resolves
// them against the target month. Input goes through Normalize first, so
// spoken numerals are accepted. Duplicate days collapse to one entry
// and results come back in ascending order.
func ParseDays(text string, target window.MonthRef) ParseResult {
	normalized := Normalize(text)
	matches := dayPattern.FindAllStringSubmatch(normalized, -1)

	maxDay := target.Days()
	seen := make(map[int]bool)

	var result ParseResult
	for _, m := range matches {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seen[day] {
			continue
		}
		seen[day] = true

		if day < 1 || day > maxDay {
			result.Invalid = append(result.Invalid, day)
			continue
		}
		result.Dates = append(result.Dates, resolve(day, target))
	}

	sort.Slice(result.Dates, func(i, j int) bool {
		return result.Dates[i].Day < result.Dates[j].Day
	})
	sort.Ints(result.Invalid)
	return result
}

func resolve(day int, target window.MonthRef) SelectedDate {
	t := time.Date(target.Year, target.Month, day, 0, 0, 0, 0, time.UTC)
	return SelectedDate{
		Day:     day,
		Month:   int(target.Month),
		Year:    target.Year,
		Weekday: weekdayNames[t.Weekday()],
		Display: fmt.Sprintf("%d月%d日（%s）", int(target.Month), day, weekdayNames[t.Weekday()]),
	}
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "週日",
	time.Monday:    "週一",
	time.Tuesday:   "週二",
	time.Wednesday: "週三",
	time.Thursday:  "週四",
	time.Friday:    "週五",
	time.Saturday:  "週六",
}

// FormatList renders selected dates as a reply-ready bullet list.
func FormatList(dates []SelectedDate) string {
	lines := make([]string, 0, len(dates))
	for _, d := range dates {
		lines = append(lines, "・"+d.Display)
	}
	return strings.Join(lines, "\n")
}

// FormatInvalid renders rejected days for the partial-failure reply,
// e.g. "35號、40號".
func FormatInvalid(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, fmt.Sprintf("%d號", d))
	}
	return strings.Join(parts, "、")
}
