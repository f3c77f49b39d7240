package format

// Kind tags the semantic meaning of a metric value.
type Kind string

const (
	KindCurrency   Kind = "currency"
	KindPercentage Kind = "percentage"
	KindNumber     Kind = "number"
	KindChange     Kind = "change"
)

// MetricValue is an optional number tagged with how it should be displayed.
type MetricValue struct {
	Value    *float64 `json:"value"`
	Kind     Kind     `json:"kind"`
	Currency string   `json:"currency,omitempty"`
	Compact  bool     `json:"compact,omitempty"`
	Decimals *int     `json:"decimals,omitempty"`
}

// CurrencyValue builds a currency metric.
func CurrencyValue(v *float64, code string) MetricValue {
	return MetricValue{Value: v, Kind: KindCurrency, Currency: code}
}

// NumberValue builds a plain number metric.
func NumberValue(v *float64) MetricValue {
	return MetricValue{Value: v, Kind: KindNumber}
}

// PercentageValue builds a fractional percentage metric.
func PercentageValue(v *float64) MetricValue {
	return MetricValue{Value: v, Kind: KindPercentage}
}

// Format renders the value according to its kind. Unknown kinds are
// rendered as numbers.
func (m MetricValue) Format() string {
	decimals := DefaultDecimals
	if m.Decimals != nil {
		decimals = *m.Decimals
	}
	switch m.Kind {
	case KindCurrency:
		if m.Compact {
			return CurrencyCompact(m.Value, m.Currency)
		}
		return Currency(m.Value, m.Currency)
	case KindPercentage:
		return Percentage(m.Value, decimals)
	case KindChange:
		return Change(m.Value, decimals)
	default:
		return Number(m.Value, decimals)
	}
}
