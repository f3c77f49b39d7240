package format

import (
	"math"
	"strconv"
)

// DefaultDecimals is the precision used by MetricValue when none is set.
const DefaultDecimals = 2

// Percentage multiplies a fractional value by 100 and appends "%":
// 0.05 renders as "5.00%" with two decimals. Values already expressed in
// points must not be passed here.
func Percentage(value *float64, decimals int) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	return fixed(v*100, decimals) + "%"
}

// PercentagePoints appends "%" to a value already expressed in points:
// 35.5 renders as "35.50%".
func PercentagePoints(value *float64, decimals int) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	return fixed(v, decimals) + "%"
}

// Number renders value with a B, M or K suffix once its magnitude reaches
// 1e9, 1e6 or 1e3, and as a plain fixed-point number below that.
func Number(value *float64, decimals int) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	scaled, suffix := compact(math.Abs(v), decimals, compactSteps[1:])
	if suffix == "" {
		return fixed(v, decimals)
	}
	if v < 0 {
		scaled = -scaled
	}
	return fixed(scaled, decimals) + suffix
}

// Change renders a signed percentage change: "+5.5%" or "-5.5%".
func Change(value *float64, decimals int) string {
	v, ok := finite(value)
	if !ok {
		return Placeholder
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	prefix := ""
	if v >= 0 {
		prefix = "+"
	}
	return prefix + fixed(v, decimals) + "%"
}

func fixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
