package dashboard

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bizdash/components/format"
)

// Trend is the direction of a change arrow.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// TrendOf derives the arrow direction from the sign of change.
func TrendOf(change *float64) Trend {
	switch {
	case change == nil:
		return TrendFlat
	case *change > 0:
		return TrendUp
	case *change < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

func (t Trend) icon() Icon {
	switch t {
	case TrendUp:
		return ResolveIcon(IconTrendUp)
	case TrendDown:
		return ResolveIcon(IconTrendDown)
	default:
		return ResolveIcon(IconTrendFlat)
	}
}

// MetricCard displays one formatted value with an optional change.
type MetricCard struct {
	Title    string
	Subtitle string
	Value    format.MetricValue
	Change   *float64
	Icon     IconID
}

// CardView is the template-ready form of a MetricCard.
type CardView struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Display    string `json:"display"`
	ChangeText string `json:"change,omitempty"`
	Trend      Trend  `json:"trend"`
	TrendIcon  Icon   `json:"trend_icon"`
	Icon       Icon   `json:"icon"`
}

// View formats the card.
func (c MetricCard) View() CardView {
	trend := TrendOf(c.Change)
	view := CardView{
		Title:     c.Title,
		Subtitle:  c.Subtitle,
		Display:   c.Value.Format(),
		Trend:     trend,
		TrendIcon: trend.icon(),
		Icon:      ResolveIcon(c.Icon),
	}
	if c.Change != nil {
		view.ChangeText = format.Change(c.Change, 1)
	}
	return view
}

// CategoryCard groups several metrics under one heading.
type CategoryCard struct {
	Category string
	Icon     IconID
	Metrics  []MetricCard
}

// CategoryCardView is the template-ready form of a CategoryCard.
type CategoryCardView struct {
	Category string     `json:"category"`
	Icon     Icon       `json:"icon"`
	Metrics  []CardView `json:"metrics"`
}

// View formats every metric in the card.
func (c CategoryCard) View() CategoryCardView {
	metrics := make([]CardView, len(c.Metrics))
	for i, m := range c.Metrics {
		metrics[i] = m.View()
	}
	return CategoryCardView{Category: c.Category, Icon: ResolveIcon(c.Icon), Metrics: metrics}
}

// BadgeVariant selects a badge color.
type BadgeVariant string

const (
	BadgeSuccess BadgeVariant = "success"
	BadgeWarning BadgeVariant = "warning"
	BadgeDanger  BadgeVariant = "danger"
	BadgeInfo    BadgeVariant = "info"
	BadgeNeutral BadgeVariant = "neutral"
)

var badgeClasses = map[BadgeVariant]string{
	BadgeSuccess: "badge badge-success",
	BadgeWarning: "badge badge-warning",
	BadgeDanger:  "badge badge-danger",
	BadgeInfo:    "badge badge-info",
	BadgeNeutral: "badge badge-neutral",
}

// Badge is a short colored label.
type Badge struct {
	Label   string       `json:"label"`
	Variant BadgeVariant `json:"variant"`
}

// Class returns the CSS class for the badge; unknown variants are neutral.
func (b Badge) Class() string {
	if class, ok := badgeClasses[BadgeVariant(strings.ToLower(string(b.Variant)))]; ok {
		return class
	}
	return badgeClasses[BadgeNeutral]
}

// PaymentMetrics breaks collected amounts down by payment method.
type PaymentMetrics struct {
	Methods  []PaymentMethod
	Currency string
}

// PaymentRow is one formatted payment method.
type PaymentRow struct {
	Method string  `json:"method"`
	Amount string  `json:"amount"`
	Count  string  `json:"count"`
	Share  string  `json:"share"`
	Ratio  float64 `json:"ratio"`
}

// PaymentMetricsView is the template-ready form of PaymentMetrics.
type PaymentMetricsView struct {
	Total   string       `json:"total"`
	Rows    []PaymentRow `json:"rows"`
	HasData bool         `json:"has_data"`
}

// View computes each method's share of the total. Shares are 0 when the
// total is 0.
func (p PaymentMetrics) View() PaymentMetricsView {
	total := decimal.Zero
	for _, m := range p.Methods {
		total = total.Add(decimal.NewFromFloat(m.Amount))
	}
	totalValue := total.InexactFloat64()
	rows := make([]PaymentRow, len(p.Methods))
	for i, m := range p.Methods {
		amount := m.Amount
		share := safeDiv(m.Amount, totalValue)
		rows[i] = PaymentRow{
			Method: m.Method,
			Amount: format.Currency(&amount, p.Currency),
			Count:  strconv.FormatInt(m.Count, 10),
			Share:  format.Percentage(&share, 1),
			Ratio:  share,
		}
	}
	return PaymentMetricsView{
		Total:   format.Currency(&totalValue, p.Currency),
		Rows:    rows,
		HasData: len(p.Methods) > 0,
	}
}
