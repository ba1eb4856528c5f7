package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	// Wednesday, mid-quarter.
	now := time.Date(2024, time.August, 14, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		keyword string
		start   time.Time
	}{
		{Today, date(2024, time.August, 14)},
		{Week, date(2024, time.August, 12)},
		{Month, date(2024, time.August, 1)},
		{Quarter, date(2024, time.July, 1)},
		{Year, date(2024, time.January, 1)},
		{"", date(2024, time.August, 1)},
		{"fortnight", date(2024, time.August, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			r := Resolve(tt.keyword, now)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, date(2024, time.August, 14), r.End)
			assert.False(t, r.Start.After(r.End))
		})
	}
}

func TestResolveWeekStartsMonday(t *testing.T) {
	for day := 1; day <= 14; day++ {
		now := time.Date(2024, time.July, day, 12, 0, 0, 0, time.UTC)
		r := Resolve(Week, now)
		assert.Equal(t, time.Monday, r.Start.Weekday(), "day %d", day)
		assert.False(t, r.Start.After(r.End))
	}

	// A Monday resolves to itself.
	r := Resolve(Week, date(2024, time.July, 8))
	assert.Equal(t, date(2024, time.July, 8), r.Start)
}

func TestResolveQuarterBoundaries(t *testing.T) {
	tests := []struct {
		month time.Month
		start time.Month
	}{
		{time.January, time.January},
		{time.March, time.January},
		{time.April, time.April},
		{time.June, time.April},
		{time.July, time.July},
		{time.September, time.July},
		{time.October, time.October},
		{time.December, time.October},
	}
	for _, tt := range tests {
		r := Resolve(Quarter, date(2024, tt.month, 20))
		assert.Equal(t, date(2024, tt.start, 1), r.Start, "month %s", tt.month)
	}
}

func TestResolveUnknownMatchesMonth(t *testing.T) {
	now := time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, Resolve(Month, now), Resolve("whatever", now))
}

func TestPrevious(t *testing.T) {
	for _, keyword := range []string{Today, Week, Month, Quarter, Year} {
		now := time.Date(2024, time.August, 14, 10, 0, 0, 0, time.UTC)
		r := Resolve(keyword, now)
		prev := r.Previous()

		// Equal length, adjacent with no gap or overlap.
		assert.Equal(t, r.End.Sub(r.Start), prev.End.Sub(prev.Start), keyword)
		assert.Equal(t, r.Start, prev.End.AddDate(0, 0, 1), keyword)
		assert.False(t, prev.Start.After(prev.End), keyword)
	}
}

func TestPreviousSingleDay(t *testing.T) {
	r := Range{Start: date(2024, time.May, 10), End: date(2024, time.May, 10)}
	prev := r.Previous()
	assert.Equal(t, date(2024, time.May, 9), prev.Start)
	assert.Equal(t, date(2024, time.May, 9), prev.End)
}

func TestContains(t *testing.T) {
	r := Range{Start: date(2024, time.May, 1), End: date(2024, time.May, 31)}
	assert.True(t, r.Contains(time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, r.Contains(date(2024, time.May, 1)))
	assert.False(t, r.Contains(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, time.April, 30, 12, 0, 0, 0, time.UTC)))
}
