package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goodsign/monday"
)

// DefaultDateLayout is used by Date when layout is empty.
const DefaultDateLayout = "Jan 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"es":    monday.LocaleEsES,
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtBR,
	"pt_pt": monday.LocalePtPT,
}

// ParseTime accepts a time.Time, *time.Time or ISO 8601 string.
func ParseTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Date renders value with a Go time layout.
func Date(value any, layout string) string {
	t, ok := ParseTime(value)
	if !ok {
		return Placeholder
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// DateLocale renders value with month and day names in the given locale
// ("es", "de-DE", "pt-BR"). Unsupported locales fall back to English.
func DateLocale(value any, layout, locale string) string {
	t, ok := ParseTime(value)
	if !ok {
		return Placeholder
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return monday.Format(t, layout, mondayLocale(locale))
}

func mondayLocale(locale string) monday.Locale {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
	if l, ok := mondayLocales[key]; ok {
		return l
	}
	if idx := strings.Index(key, "_"); idx > 0 {
		if l, ok := mondayLocales[key[:idx]]; ok {
			return l
		}
	}
	return monday.LocaleEnUS
}

// RelativeTime renders value relative to the current time ("3 hours ago").
func RelativeTime(value any) string {
	return RelativeTimeFrom(value, time.Now())
}

// RelativeTimeFrom renders value relative to now.
func RelativeTimeFrom(value any, now time.Time) string {
	t, ok := ParseTime(value)
	if !ok {
		return Placeholder
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Truncate returns text unchanged when it fits in max characters, and the
// first max characters followed by "..." otherwise.
func Truncate(text string, max int) string {
	if max < 0 {
		max = 0
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
