// Package format converts raw metric values into display strings.
//
// Every formatter accepts a possibly absent value and never panics: nil,
// NaN and unparseable inputs render as Placeholder.
package format

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is rendered for absent or invalid values.
const Placeholder = "-"

// DefaultCurrency is used when callers pass an empty currency code.
const DefaultCurrency = "USD"

const nbsp = "\u00a0"

type currencyStyle struct {
	tag    language.Tag
	suffix bool
	gap    string
}

var (
	styleEnUS = currencyStyle{tag: language.MustParse("en-US")}
	styleEsCO = currencyStyle{tag: language.MustParse("es-CO"), gap: nbsp}
	styleDeDE = currencyStyle{tag: language.MustParse("de-DE"), suffix: true, gap: nbsp}
	styleEnGB = currencyStyle{tag: language.MustParse("en-GB")}
	styleEsMX = currencyStyle{tag: language.MustParse("es-MX")}
)

var currencyStyles = map[string]currencyStyle{
	"USD": styleEnUS,
	"COP": styleEsCO,
	"EUR": styleDeDE,
	"GBP": styleEnGB,
	"MXN": styleEsMX,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"COP": "$",
	"MXN": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"BRL": "R$",
	"CAD": "CA$",
	"AUD": "A$",
}

type compactStep struct {
	limit  float64
	suffix string
}

var compactSteps = []compactStep{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Currency renders value as an amount of the given ISO currency with exactly
// two fraction digits. Known codes use their home locale; any other code is
// rendered with en-US digit rules and its own symbol.
func Currency(value *float64, code string) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	code, style := resolveCurrency(code)
	digits := message.NewPrinter(style.tag).Sprint(number.Decimal(math.Abs(v),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return placeSymbol(v < 0, digits, code, style)
}

// CurrencyCompact renders amounts of one million or more in compact notation
// ("$2.5M") with at most one fraction digit. Smaller amounts defer to Currency.
func CurrencyCompact(value *float64, code string) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	abs := math.Abs(v)
	if abs < 1e6 {
		return Currency(value, code)
	}
	code, style := resolveCurrency(code)
	scaled, suffix := compact(abs, 1, compactSteps)
	digits := message.NewPrinter(style.tag).Sprint(number.Decimal(scaled, number.MaxFractionDigits(1)))
	return placeSymbol(v < 0, digits+suffix, code, style)
}

// CurrencyLocale reports the locale used to render the given currency code.
func CurrencyLocale(code string) string {
	_, style := resolveCurrency(code)
	return style.tag.String()
}

func resolveCurrency(code string) (string, currencyStyle) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	style, ok := currencyStyles[code]
	if !ok {
		style = styleEnUS
	}
	return code, style
}

func placeSymbol(negative bool, digits, code string, style currencyStyle) string {
	symbol, gap := currencySymbols[code], style.gap
	if symbol == "" {
		symbol, gap = code, nbsp
	}
	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	if style.suffix {
		b.WriteString(digits)
		b.WriteString(gap)
		b.WriteString(symbol)
		return b.String()
	}
	b.WriteString(symbol)
	b.WriteString(gap)
	b.WriteString(digits)
	return b.String()
}

// compact scales abs by the largest step it reaches. When rounding to
// decimals would print 1000 of a step, the next larger step is used instead.
func compact(abs float64, decimals int, steps []compactStep) (float64, string) {
	for i, step := range steps {
		if abs < step.limit {
			continue
		}
		scaled := abs / step.limit
		if i > 0 && roundTo(scaled, decimals) >= 1000 {
			return abs / steps[i-1].limit, steps[i-1].suffix
		}
		return scaled, step.suffix
	}
	return abs, ""
}

func roundTo(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func finite(value *float64) (float64, bool) {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return 0, false
	}
	return *value, true
}

// Float returns a pointer to v, for callers building optional values inline.
func Float(v float64) *float64 {
	return &v
}
