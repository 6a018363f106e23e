package reportmath

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTruncatePeriod(t *testing.T) {
	thu := time.Date(2024, 6, 13, 15, 30, 0, 0, time.UTC) // Thursday
	cases := []struct {
		period string
		want   time.Time
	}{
		{PeriodDaily, date(2024, 6, 13)},
		{PeriodWeekly, date(2024, 6, 10)}, // ISO Monday
		{PeriodMonthly, date(2024, 6, 1)},
	}
	for _, tc := range cases {
		if got := TruncatePeriod(thu, tc.period); !got.Equal(tc.want) {
			t.Errorf("TruncatePeriod(%s)=%v want %v", tc.period, got, tc.want)
		}
	}
	// Sunday belongs to the week that started the previous Monday
	sun := date(2024, 6, 16)
	if got := TruncatePeriod(sun, PeriodWeekly); !got.Equal(date(2024, 6, 10)) {
		t.Errorf("sunday week start=%v want 2024-06-10", got)
	}
}

func TestPeriodSeriesNoGaps(t *testing.T) {
	start := date(2024, 6, 1)
	end := date(2024, 6, 30)

	days := PeriodSeries(start, end, PeriodDaily)
	if len(days) != 30 {
		t.Fatalf("daily series length=%d want 30", len(days))
	}
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			t.Fatalf("gap between %v and %v", days[i-1], days[i])
		}
	}

	months := PeriodSeries(date(2024, 1, 15), date(2024, 12, 1), PeriodMonthly)
	if len(months) != 12 {
		t.Fatalf("monthly series length=%d want 12", len(months))
	}

	if got := PeriodSeries(end, start, PeriodDaily); len(got) != 0 {
		t.Fatalf("inverted range should be empty, got %d entries", len(got))
	}
}

func TestFillSeriesZeroFills(t *testing.T) {
	type point struct {
		Date      time.Time
		Collected int64
	}
	queried := map[string]point{
		"2024-06-02": {date(2024, 6, 2), 500},
		"2024-06-04": {date(2024, 6, 4), 250},
	}
	got := FillSeries(date(2024, 6, 1), date(2024, 6, 5), PeriodDaily,
		func(key string) (point, bool) { p, ok := queried[key]; return p, ok },
		func(t time.Time) point { return point{Date: t} },
	)
	if len(got) != 5 {
		t.Fatalf("filled series length=%d want 5", len(got))
	}
	wantCollected := []int64{0, 500, 0, 250, 0}
	for i, w := range wantCollected {
		if got[i].Collected != w {
			t.Errorf("day %d collected=%d want %d", i+1, got[i].Collected, w)
		}
	}
}

func TestPreviousWindow(t *testing.T) {
	start := date(2024, 6, 11)
	end := date(2024, 6, 20)
	ps, pe := PreviousWindow(start, end)
	if ps != date(2024, 6, 2) {
		t.Errorf("previous start=%v want 2024-06-02", ps)
	}
	if !pe.Before(start) {
		t.Errorf("previous end %v must precede requested start %v", pe, start)
	}
	if end.Sub(start) != start.Sub(ps) {
		t.Errorf("previous window duration mismatch")
	}
}
