package dashboard

// FallbackPeriodLabel labels synthesized points when no range label is known.
const FallbackPeriodLabel = "Current period"

// Point is a chartable row that can report whether it carries any value.
type Point interface {
	IsZero() bool
	Row() map[string]any
}

// Series is a named dataset ready for a chart, possibly synthesized from
// summary figures when the source omitted it.
type Series[T Point] struct {
	Points      []T  `json:"points"`
	Synthesized bool `json:"synthesized"`
	HasData     bool `json:"has_data"`
}

// Rows converts the points into chart rows.
func (s Series[T]) Rows() []map[string]any {
	rows := make([]map[string]any, len(s.Points))
	for i, p := range s.Points {
		rows[i] = p.Row()
	}
	return rows
}

// DeriveSeries returns source when it has points, or a single fallback
// point otherwise.
func DeriveSeries[T Point](source []T, fallback T) Series[T] {
	if len(source) > 0 {
		points := make([]T, len(source))
		copy(points, source)
		return Series[T]{Points: points, HasData: true}
	}
	points := []T{fallback}
	return Series[T]{
		Points:      points,
		Synthesized: true,
		HasData:     HasData(source, points),
	}
}

// HasData reports whether a chart should render: the source list is
// non-empty or a synthesized point carries a nonzero field.
func HasData[T Point](source, synthesized []T) bool {
	if len(source) > 0 {
		return true
	}
	for _, p := range synthesized {
		if !p.IsZero() {
			return true
		}
	}
	return false
}

func periodLabel(label string) string {
	if label == "" {
		return FallbackPeriodLabel
	}
	return label
}

// TimePoint is a single labelled value.
type TimePoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (p TimePoint) IsZero() bool { return p.Value == 0 }

func (p TimePoint) Row() map[string]any {
	return map[string]any{"name": p.Label, "value": p.Value}
}

// CategoryAmount is a labelled share of a whole (pie slices).
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (p CategoryAmount) IsZero() bool { return p.Amount == 0 }

func (p CategoryAmount) Row() map[string]any {
	return map[string]any{"name": p.Category, "value": p.Amount}
}

// RevenuePoint compares revenue with expenses for one period.
type RevenuePoint struct {
	Label    string  `json:"label"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

func (p RevenuePoint) IsZero() bool {
	return p.Revenue == 0 && p.Expenses == 0 && p.Profit == 0
}

func (p RevenuePoint) Row() map[string]any {
	return map[string]any{"name": p.Label, "revenue": p.Revenue, "expenses": p.Expenses, "profit": p.Profit}
}

// CashFlowPoint holds inflows and outflows for one period.
type CashFlowPoint struct {
	Label   string  `json:"label"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

func (p CashFlowPoint) IsZero() bool {
	return p.Inflow == 0 && p.Outflow == 0 && p.Net == 0
}

func (p CashFlowPoint) Row() map[string]any {
	return map[string]any{"name": p.Label, "inflow": p.Inflow, "outflow": p.Outflow, "net": p.Net}
}

// BudgetPoint compares the planned budget with actual spend.
type BudgetPoint struct {
	Label  string  `json:"label"`
	Budget float64 `json:"budget"`
	Actual float64 `json:"actual"`
}

func (p BudgetPoint) IsZero() bool { return p.Budget == 0 && p.Actual == 0 }

func (p BudgetPoint) Row() map[string]any {
	return map[string]any{"name": p.Label, "budget": p.Budget, "actual": p.Actual}
}
