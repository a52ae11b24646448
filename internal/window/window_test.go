package window

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestCheckOpenPeriods(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		now       time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{"first day of early window", date(2025, time.September, 1), 2025, time.October},
		{"mid early window", date(2025, time.September, 10), 2025, time.October},
		{"last day of early window", date(2025, time.September, 15), 2025, time.October},
		{"first day of late window", date(2025, time.September, 20), 2025, time.November},
		{"last day of late window", date(2025, time.September, 30), 2025, time.November},
		{"early window year rollover", date(2025, time.December, 5), 2026, time.January},
		{"late window year rollover", date(2025, time.November, 25), 2026, time.January},
		{"day 31 still in late window", date(2025, time.October, 31), 2025, time.December},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := rules.Check(tt.now)
			if !st.Open {
				t.Fatal("window should be open")
			}
			if st.Target.Year != tt.wantYear || st.Target.Month != tt.wantMonth {
				t.Errorf("target = %d-%d, want %d-%d",
					st.Target.Year, st.Target.Month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestCheckClosedGap(t *testing.T) {
	rules := DefaultRules()

	for day := 16; day <= 19; day++ {
		st := rules.Check(date(2025, time.September, day))
		if st.Open {
			t.Fatalf("day %d should be closed", day)
		}
		want := time.Date(2025, time.September, 20, 0, 0, 0, 0, time.UTC)
		if !st.NextOpen.Equal(want) {
			t.Errorf("day %d: nextOpen = %v, want %v", day, st.NextOpen, want)
		}
	}
}

func TestCheckClosedRollsToNextMonth(t *testing.T) {
	rules := Rules{
		First:  Period{StartDay: 1, EndDay: 15, AdvanceMonths: 1},
		Second: Period{StartDay: 20, EndDay: 28, AdvanceMonths: 2},
	}

	st := rules.Check(date(2025, time.December, 30))
	if st.Open {
		t.Fatal("day 30 should be closed under the shortened second period")
	}
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !st.NextOpen.Equal(want) {
		t.Errorf("nextOpen = %v, want %v", st.NextOpen, want)
	}
}

func TestCheckClosedBeforeFirstPeriod(t *testing.T) {
	rules := Rules{
		First:  Period{StartDay: 3, EndDay: 15, AdvanceMonths: 1},
		Second: Period{StartDay: 20, EndDay: 31, AdvanceMonths: 2},
	}

	st := rules.Check(date(2025, time.September, 2))
	if st.Open {
		t.Fatal("day 2 should be closed when the first period starts on day 3")
	}
	want := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	if !st.NextOpen.Equal(want) {
		t.Errorf("nextOpen = %v, want %v", st.NextOpen, want)
	}
}

func TestMonthRefDisplay(t *testing.T) {
	m := MonthRef{Year: 2025, Month: time.October}
	if got := m.Display(); got != "2025年10月" {
		t.Errorf("Display = %q", got)
	}
}

func TestMonthRefDays(t *testing.T) {
	tests := []struct {
		m    MonthRef
		want int
	}{
		{MonthRef{2025, time.February}, 28},
		{MonthRef{2024, time.February}, 29},
		{MonthRef{2025, time.October}, 31},
		{MonthRef{2025, time.November}, 30},
	}
	for _, tt := range tests {
		if got := tt.m.Days(); got != tt.want {
			t.Errorf("%d-%d: Days = %d, want %d", tt.m.Year, tt.m.Month, got, tt.want)
		}
	}
}
