// Package alerts normalizes business alerts for display and runs the actions
// a viewer can take on them.
package alerts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// Alert is a single business alert raised by the analytics backend.
type Alert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Actions     []Action  `json:"actions,omitempty"`
}

// Source lists the alerts raised in a date range.
type Source interface {
	FetchAlerts(ctx context.Context, sel daterange.Selector) ([]Alert, error)
}

// Translator resolves display strings for a locale.
type Translator interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeKey turns a raw status or severity into a lookup key: trimmed,
// lower-cased, with internal whitespace runs replaced by a single
// underscore. "In Review", "in_review" and "IN REVIEW" share one key.
func NormalizeKey(raw string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "_")
}

// Style is the resolved label and CSS class of a status or severity.
type Style struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Class string `json:"class"`
	Known bool   `json:"known"`
}

type styleEntry struct {
	label string
	class string
	rank  int
}

const defaultClass = "alert-default"

var statusTable = map[string]styleEntry{
	"new":          {label: "New", class: "alert-status-new"},
	"open":         {label: "Open", class: "alert-status-open"},
	"in_review":    {label: "In review", class: "alert-status-review"},
	"acknowledged": {label: "Acknowledged", class: "alert-status-review"},
	"applied":      {label: "Applied", class: "alert-status-applied"},
	"ignored":      {label: "Ignored", class: "alert-status-muted"},
	"resolved":     {label: "Resolved", class: "alert-status-resolved"},
}

var severityTable = map[string]styleEntry{
	"critical": {label: "Critical", class: "alert-severity-critical", rank: 0},
	"high":     {label: "High", class: "alert-severity-high", rank: 1},
	"medium":   {label: "Medium", class: "alert-severity-medium", rank: 2},
	"low":      {label: "Low", class: "alert-severity-low", rank: 3},
	"info":     {label: "Info", class: "alert-severity-info", rank: 4},
}

const unknownSeverityRank = 5

// StatusStyle resolves a raw status. Unknown statuses keep the raw string
// as label and take the default class.
func StatusStyle(raw string) Style {
	return lookup(statusTable, raw)
}

// SeverityStyle resolves a raw severity.
func SeverityStyle(raw string) Style {
	return lookup(severityTable, raw)
}

// SeverityRank orders severities from most to least urgent.
func SeverityRank(raw string) int {
	if entry, ok := severityTable[NormalizeKey(raw)]; ok {
		return entry.rank
	}
	return unknownSeverityRank
}

func lookup(table map[string]styleEntry, raw string) Style {
	key := NormalizeKey(raw)
	if entry, ok := table[key]; ok {
		return Style{Key: key, Label: entry.label, Class: entry.class, Known: true}
	}
	return Style{Key: key, Label: raw, Class: defaultClass}
}
