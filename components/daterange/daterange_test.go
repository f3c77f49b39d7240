package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bogota = time.FixedZone("COT", -5*60*60)

// Wednesday.
var fixedNow = time.Date(2025, time.March, 12, 15, 30, 0, 0, bogota)

func TestResolveTodaySameCalendarDay(t *testing.T) {
	t.Parallel()
	r := Resolve("today", fixedNow)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, bogota), r.Start)
	assert.Equal(t, time.Date(2025, time.March, 12, 23, 59, 59, 999_000_000, bogota), r.End)
	assert.Equal(t, r.Start.YearDay(), r.End.YearDay())
	assert.Equal(t, 1, r.Days())
}

func TestResolveYesterdayShiftsBothBoundaries(t *testing.T) {
	t.Parallel()
	r := Resolve("yesterday", fixedNow)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, bogota), r.Start)
	assert.Equal(t, time.Date(2025, time.March, 11, 23, 59, 59, 999_000_000, bogota), r.End)
}

func TestResolveTrailingDays(t *testing.T) {
	t.Parallel()
	midnight := time.Date(2025, time.March, 12, 0, 0, 0, 0, bogota)
	for sel, days := range trailingDays {
		r := ResolveSelector(sel, fixedNow)
		assert.Equal(t, midnight.AddDate(0, 0, -days), r.Start, sel)
		assert.Equal(t, endOfDay(fixedNow), r.End, sel)
	}
	r := Resolve("last_7_days", fixedNow)
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, bogota), r.Start)
}

func TestResolveCalendarSnaps(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, bogota), Resolve("this_week", fixedNow).Start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, bogota), Resolve("this_month", fixedNow).Start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, bogota), Resolve("this_year", fixedNow).Start)
	assert.Equal(t, time.Date(2024, time.September, 12, 0, 0, 0, 0, bogota), Resolve("last_6_months", fixedNow).Start)
	assert.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, bogota), Resolve("last_year", fixedNow).Start)
}

func TestResolveThisWeekOnSundayBelongsToPreviousWeek(t *testing.T) {
	t.Parallel()
	sunday := time.Date(2025, time.March, 16, 9, 0, 0, 0, bogota)
	r := Resolve("this_week", sunday)
	assert.Equal(t, time.Monday, r.Start.Weekday())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, bogota), r.Start)
	assert.Equal(t, 7, r.Days())

	monday := time.Date(2025, time.March, 10, 9, 0, 0, 0, bogota)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, bogota), Resolve("this_week", monday).Start)
}

func TestResolveUnknownFallsBackToLast30Days(t *testing.T) {
	t.Parallel()
	bogus := Resolve("bogus_key", fixedNow)
	want := Resolve("last_30_days", fixedNow)
	assert.Equal(t, want, bogus)
	assert.Equal(t, Last30Days, bogus.Selector)
	assert.Equal(t, want, Resolve("", fixedNow))
}

func TestParseNormalizes(t *testing.T) {
	t.Parallel()
	sel, ok := Parse("  LAST_7_DAYS ")
	require.True(t, ok)
	assert.Equal(t, Last7Days, sel)

	sel, ok = Parse("next_week")
	assert.False(t, ok)
	assert.Equal(t, DefaultRange, sel)
}

func TestRangeISO(t *testing.T) {
	t.Parallel()
	r := Resolve("today", fixedNow)
	iso := r.ISO()
	assert.Equal(t, "2025-03-12T05:00:00.000Z", iso.StartDate)
	assert.Equal(t, "2025-03-13T04:59:59.999Z", iso.EndDate)
}

func TestLabels(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Last 7 days", Last7Days.Label())
	assert.Equal(t, "Last 30 days", Selector("weird").Label())
	assert.Equal(t, "daterange.this_month", ThisMonth.TranslationKey())
	assert.Len(t, Selectors(), 12)
	for _, sel := range Selectors() {
		assert.NotEmpty(t, sel.Label())
	}
}

func TestResolverUsesClockAndLocation(t *testing.T) {
	t.Parallel()
	utcNow := time.Date(2025, time.March, 13, 2, 0, 0, 0, time.UTC)
	resolver := Resolver{
		Now:      func() time.Time { return utcNow },
		Location: bogota,
	}
	r := resolver.Resolve("today")
	assert.Equal(t, 12, r.Start.Day())
	assert.True(t, r.Contains(utcNow))
}
