// Package period resolves report period keywords into concrete date windows.
package period

import "time"

const (
	Today   = "today"
	Week    = "week"
	Month   = "month"
	Quarter = "quarter"
	Year    = "year"
)

// Range is an inclusive [Start, End] date window. Both bounds are UTC
// midnights.
type Range struct {
	Start time.Time
	End   time.Time
}

// Resolve maps a period keyword onto a date window ending today. Unrecognized
// keywords (including the empty string) fall back to the current calendar
// month.
func Resolve(keyword string, now time.Time) Range {
	today := Date(now)

	switch keyword {
	case Today:
		return Range{Start: today, End: today}
	case Week:
		// Monday on or before today.
		offset := (int(today.Weekday()) + 6) % 7
		return Range{Start: today.AddDate(0, 0, -offset), End: today}
	case Quarter:
		quarterMonth := time.Month((int(today.Month())-1)/3*3 + 1)
		return Range{
			Start: time.Date(today.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC),
			End:   today,
		}
	case Year:
		return Range{
			Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   today,
		}
	default:
		return Range{
			Start: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC),
			End:   today,
		}
	}
}

// Previous returns the contiguous window of equal length immediately before r:
// the previous window ends the day before r starts.
func (r Range) Previous() Range {
	length := r.End.Sub(r.Start)
	prevEnd := r.Start.AddDate(0, 0, -1)
	return Range{Start: prevEnd.Add(-length), End: prevEnd}
}

// Days returns the number of calendar days covered by the window.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the window.
func (r Range) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// ExclusiveEnd returns the first instant after the window, for use in
// half-open timestamp comparisons (created_at < ExclusiveEnd).
func (r Range) ExclusiveEnd() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Date truncates t to its UTC calendar day.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
