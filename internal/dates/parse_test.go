package dates

import (
	"testing"
	"time"

	"github.com/buskerbot/permit-assistant/internal/window"
)

var october = window.MonthRef{Year: 2025, Month: time.October}

func TestParseDaysNumeric(t *testing.T) {
	res := ParseDays("11號、12號、26號", october)

	if len(res.Invalid) != 0 {
		t.Fatalf("unexpected invalid days: %v", res.Invalid)
	}
	if len(res.Dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(res.Dates))
	}

	want := []struct {
		day     int
		weekday string
	}{
		{11, "週六"},
		{12, "週日"},
		{26, "週日"},
	}
	for i, w := range want {
		d := res.Dates[i]
		if d.Day != w.day || d.Weekday != w.weekday {
			t.Errorf("date[%d] = %d %s, want %d %s", i, d.Day, d.Weekday, w.day, w.weekday)
		}
		if d.Month != 10 || d.Year != 2025 {
			t.Errorf("date[%d] resolved to %d-%d, want 2025-10", i, d.Year, d.Month)
		}
	}
}

func TestParseDaysSpoken(t *testing.T) {
	res := ParseDays("十一號、十二號和二十六號", october)
	if len(res.Dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(res.Dates))
	}
	if res.Dates[0].Day != 11 || res.Dates[1].Day != 12 || res.Dates[2].Day != 26 {
		t.Errorf("days = %d,%d,%d", res.Dates[0].Day, res.Dates[1].Day, res.Dates[2].Day)
	}
}

func TestParseDaysOutOfRange(t *testing.T) {
	res := ParseDays("35號", october)
	if res.Ok() {
		t.Fatal("expected no valid dates")
	}
	if len(res.Invalid) != 1 || res.Invalid[0] != 35 {
		t.Errorf("invalid = %v, want [35]", res.Invalid)
	}
}

func TestParseDaysPartialSuccess(t *testing.T) {
	res := ParseDays("5號、35號、12號", october)
	if !res.Ok() {
		t.Fatal("expected valid dates to survive a bad one")
	}
	if len(res.Dates) != 2 || res.Dates[0].Day != 5 || res.Dates[1].Day != 12 {
		t.Errorf("dates = %+v", res.Dates)
	}
	if len(res.Invalid) != 1 || res.Invalid[0] != 35 {
		t.Errorf("invalid = %v, want [35]", res.Invalid)
	}
}

func TestParseDaysMonthLengthBound(t *testing.T) {
	feb := window.MonthRef{Year: 2025, Month: time.February}
	res := ParseDays("28號、29號", feb)
	if len(res.Dates) != 1 || res.Dates[0].Day != 28 {
		t.Errorf("dates = %+v, want only the 28th", res.Dates)
	}
	if len(res.Invalid) != 1 || res.Invalid[0] != 29 {
		t.Errorf("invalid = %v, want [29]", res.Invalid)
	}
}

func TestParseDaysDedupeAndSort(t *testing.T) {
	res := ParseDays("26號、11號、26號", october)
	if len(res.Dates) != 2 {
		t.Fatalf("got %d dates, want 2 after dedupe", len(res.Dates))
	}
	if res.Dates[0].Day != 11 || res.Dates[1].Day != 26 {
		t.Errorf("days = %d,%d, want ascending 11,26", res.Dates[0].Day, res.Dates[1].Day)
	}
}

func TestParseDaysZeroRejected(t *testing.T) {
	res := ParseDays("0號", october)
	if res.Ok() {
		t.Fatal("day 0 should be invalid")
	}
	if len(res.Invalid) != 1 || res.Invalid[0] != 0 {
		t.Errorf("invalid = %v, want [0]", res.Invalid)
	}
}

func TestParseDaysNoDigits(t *testing.T) {
	res := ParseDays("我想想再說", october)
	if res.Ok() || len(res.Invalid) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestFormatters(t *testing.T) {
	res := ParseDays("11號", october)
	if got := FormatList(res.Dates); got != "・10月11日（週六）" {
		t.Errorf("FormatList = %q", got)
	}
	if got := FormatInvalid([]int{35, 40}); got != "35號、40號" {
		t.Errorf("FormatInvalid = %q", got)
	}
}
