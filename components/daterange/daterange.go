// Package daterange resolves symbolic date-range selectors ("last_30_days")
// into concrete calendar boundaries.
package daterange

import (
	"strings"
	"time"
)

// Selector identifies a date range from a closed set.
type Selector string

const (
	Today        Selector = "today"
	Yesterday    Selector = "yesterday"
	Last7Days    Selector = "last_7_days"
	Last14Days   Selector = "last_14_days"
	Last30Days   Selector = "last_30_days"
	Last60Days   Selector = "last_60_days"
	Last90Days   Selector = "last_90_days"
	Last6Months  Selector = "last_6_months"
	LastYear     Selector = "last_year"
	ThisWeek     Selector = "this_week"
	ThisMonth    Selector = "this_month"
	ThisYear     Selector = "this_year"
	DefaultRange          = Last30Days
)

// ISOLayout matches the millisecond UTC form produced by browsers.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var selectorOrder = []Selector{
	Today, Yesterday,
	Last7Days, Last14Days, Last30Days, Last60Days, Last90Days,
	Last6Months, LastYear,
	ThisWeek, ThisMonth, ThisYear,
}

var selectorLabels = map[Selector]string{
	Today:       "Today",
	Yesterday:   "Yesterday",
	Last7Days:   "Last 7 days",
	Last14Days:  "Last 14 days",
	Last30Days:  "Last 30 days",
	Last60Days:  "Last 60 days",
	Last90Days:  "Last 90 days",
	Last6Months: "Last 6 months",
	LastYear:    "Last year",
	ThisWeek:    "This week",
	ThisMonth:   "This month",
	ThisYear:    "This year",
}

var trailingDays = map[Selector]int{
	Last7Days:  7,
	Last14Days: 14,
	Last30Days: 30,
	Last60Days: 60,
	Last90Days: 90,
}

// Selectors lists every supported selector in display order.
func Selectors() []Selector {
	return append([]Selector(nil), selectorOrder...)
}

// Parse normalizes id and reports whether it names a known selector.
// Unknown ids return DefaultRange and false.
func Parse(id string) (Selector, bool) {
	sel := Selector(strings.ToLower(strings.TrimSpace(id)))
	if _, ok := selectorLabels[sel]; ok {
		return sel, true
	}
	return DefaultRange, false
}

// Valid reports whether s is part of the enumeration.
func (s Selector) Valid() bool {
	_, ok := selectorLabels[s]
	return ok
}

// Label returns the English display text for the selector.
func (s Selector) Label() string {
	if label, ok := selectorLabels[s]; ok {
		return label
	}
	return selectorLabels[DefaultRange]
}

// TranslationKey is the i18n key for the selector label.
func (s Selector) TranslationKey() string {
	return "daterange." + string(s)
}

func (s Selector) String() string { return string(s) }

// Range is a resolved pair of calendar boundaries in the caller's location.
type Range struct {
	Selector Selector  `json:"selector"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ISORange is the wire form of a Range.
type ISORange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// StartISO renders the start boundary as an ISO 8601 UTC timestamp.
func (r Range) StartISO() string { return r.Start.UTC().Format(ISOLayout) }

// EndISO renders the end boundary as an ISO 8601 UTC timestamp.
func (r Range) EndISO() string { return r.End.UTC().Format(ISOLayout) }

// ISO returns both boundaries in wire form.
func (r Range) ISO() ISORange {
	return ISORange{StartDate: r.StartISO(), EndDate: r.EndISO()}
}

// Label returns the display text of the selector that produced the range.
func (r Range) Label() string { return r.Selector.Label() }

// Days counts the calendar days covered by the range, inclusive.
func (r Range) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Resolve converts id into calendar boundaries relative to now, in now's
// location. Unknown ids resolve like last_30_days.
func Resolve(id string, now time.Time) Range {
	sel, _ := Parse(id)
	return ResolveSelector(sel, now)
}

// ResolveSelector is Resolve for an already parsed selector.
func ResolveSelector(sel Selector, now time.Time) Range {
	if !sel.Valid() {
		sel = DefaultRange
	}
	start := startOfDay(now)
	end := endOfDay(now)

	switch sel {
	case Today:
	case Yesterday:
		start = start.AddDate(0, 0, -1)
		end = end.AddDate(0, 0, -1)
	case Last6Months:
		start = start.AddDate(0, -6, 0)
	case LastYear:
		start = start.AddDate(-1, 0, 0)
	case ThisWeek:
		weekday := int(start.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = start.AddDate(0, 0, -(weekday - 1))
	case ThisMonth:
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	case ThisYear:
		start = time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, start.Location())
	default:
		start = start.AddDate(0, 0, -trailingDays[sel])
	}
	return Range{Selector: sel, Start: start, End: end}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Resolver resolves selectors against an injectable clock and location.
// The zero value uses time.Now in the local time zone.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

// Resolve converts id into a Range using the resolver's clock.
func (r Resolver) Resolve(id string) Range {
	return Resolve(id, r.now())
}

func (r Resolver) now() time.Time {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	if r.Location != nil {
		now = now.In(r.Location)
	}
	return now
}
