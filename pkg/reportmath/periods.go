package reportmath

import "time"

// Trend granularities accepted by the trend and performance endpoints.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

func ValidPeriod(p string) bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// TruncatePeriod aligns t to the start of its period: midnight for daily,
// ISO Monday for weekly (matching Postgres date_trunc), first of month for
// monthly.
func TruncatePeriod(t time.Time, period string) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch period {
	case PeriodWeekly:
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7 // Sunday
		}
		return day.AddDate(0, 0, -(wd - 1))
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// NextPeriod advances one period from an already-truncated time.
func NextPeriod(t time.Time, period string) time.Time {
	switch period {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// PeriodKey is the merge key for gap-filling: the truncated period start in
// ISO date form.
func PeriodKey(t time.Time, period string) string {
	return TruncatePeriod(t, period).Format("2006-01-02")
}

// PeriodSeries returns every period start between start and end inclusive.
// An inverted range yields an empty series.
func PeriodSeries(start, end time.Time, period string) []time.Time {
	var out []time.Time
	last := TruncatePeriod(end, period)
	for t := TruncatePeriod(start, period); !t.After(last); t = NextPeriod(t, period) {
		out = append(out, t)
	}
	return out
}

// FillSeries produces one entry per period in [start, end] with no gaps.
// lookup resolves a queried row by period key; zero builds the placeholder
// for periods with no activity.
func FillSeries[T any](start, end time.Time, period string, lookup func(key string) (T, bool), zero func(t time.Time) T) []T {
	series := PeriodSeries(start, end, period)
	out := make([]T, 0, len(series))
	for _, t := range series {
		if row, ok := lookup(PeriodKey(t, period)); ok {
			out = append(out, row)
		} else {
			out = append(out, zero(t))
		}
	}
	return out
}

// PreviousWindow derives the equal-length window immediately preceding
// [start, end]: same duration, ending the instant before start.
func PreviousWindow(start, end time.Time) (time.Time, time.Time) {
	dur := end.Sub(start)
	return start.Add(-dur), start.Add(-time.Second)
}
