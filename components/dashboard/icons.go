package dashboard

// IconID names a renderable icon from a closed set.
type IconID string

const (
	IconDefault     IconID = "default"
	IconRevenue     IconID = "revenue"
	IconExpenses    IconID = "expenses"
	IconProfit      IconID = "profit"
	IconSpend       IconID = "spend"
	IconClicks      IconID = "clicks"
	IconImpressions IconID = "impressions"
	IconOrders      IconID = "orders"
	IconCustomers   IconID = "customers"
	IconCashFlow    IconID = "cash_flow"
	IconBudget      IconID = "budget"
	IconPayments    IconID = "payments"
	IconAlert       IconID = "alert"
	IconTrendUp     IconID = "trend_up"
	IconTrendDown   IconID = "trend_down"
	IconTrendFlat   IconID = "trend_flat"
)

// Icon is the resolved form handed to templates.
type Icon struct {
	ID    IconID `json:"id"`
	Glyph string `json:"glyph"`
	Label string `json:"label"`
}

var iconTable = map[IconID]Icon{
	IconDefault:     {ID: IconDefault, Glyph: "circle", Label: "Metric"},
	IconRevenue:     {ID: IconRevenue, Glyph: "dollar-sign", Label: "Revenue"},
	IconExpenses:    {ID: IconExpenses, Glyph: "credit-card", Label: "Expenses"},
	IconProfit:      {ID: IconProfit, Glyph: "trending-up", Label: "Profit"},
	IconSpend:       {ID: IconSpend, Glyph: "megaphone", Label: "Spend"},
	IconClicks:      {ID: IconClicks, Glyph: "mouse-pointer", Label: "Clicks"},
	IconImpressions: {ID: IconImpressions, Glyph: "eye", Label: "Impressions"},
	IconOrders:      {ID: IconOrders, Glyph: "shopping-cart", Label: "Orders"},
	IconCustomers:   {ID: IconCustomers, Glyph: "users", Label: "Customers"},
	IconCashFlow:    {ID: IconCashFlow, Glyph: "repeat", Label: "Cash flow"},
	IconBudget:      {ID: IconBudget, Glyph: "pie-chart", Label: "Budget"},
	IconPayments:    {ID: IconPayments, Glyph: "wallet", Label: "Payments"},
	IconAlert:       {ID: IconAlert, Glyph: "alert-triangle", Label: "Alert"},
	IconTrendUp:     {ID: IconTrendUp, Glyph: "arrow-up-right", Label: "Up"},
	IconTrendDown:   {ID: IconTrendDown, Glyph: "arrow-down-right", Label: "Down"},
	IconTrendFlat:   {ID: IconTrendFlat, Glyph: "minus", Label: "No change"},
}

// ResolveIcon looks id up in the icon table; unknown ids resolve to IconDefault.
func ResolveIcon(id IconID) Icon {
	if icon, ok := iconTable[id]; ok {
		return icon
	}
	return iconTable[IconDefault]
}
