package dashboard

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-bizdash/components/format"
)

// Sales chart and table keys.
const (
	ChartDailyRevenue = "daily_revenue"
	ChartTopProducts  = "top_products"
	TableCustomers    = "customers"
)

// SalesTotals are the sales page aggregates.
type SalesTotals struct {
	Revenue       float64 `json:"revenue"`
	Orders        int64   `json:"orders"`
	Customers     int64   `json:"customers"`
	NewCustomers  int64   `json:"newCustomers"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// SummarizeSales totals the customer list. Nonzero summary figures win over
// the computed ones, since the list may be a page of a larger set.
func SummarizeSales(bundle SalesBundle) SalesTotals {
	revenue := decimal.Zero
	var totals SalesTotals
	for _, c := range bundle.Customers {
		revenue = revenue.Add(decimal.NewFromFloat(c.Revenue))
		totals.Orders += c.Orders
		if c.NewCustomer {
			totals.NewCustomers++
		}
	}
	totals.Revenue = revenue.InexactFloat64()
	totals.Customers = int64(len(bundle.Customers))

	s := bundle.Summary
	if s.Revenue != 0 {
		totals.Revenue = s.Revenue
	}
	if s.Orders != 0 {
		totals.Orders = s.Orders
	}
	if s.Customers != 0 {
		totals.Customers = s.Customers
	}
	if s.NewCustomers != 0 {
		totals.NewCustomers = s.NewCustomers
	}
	totals.AvgOrderValue = safeDiv(totals.Revenue, float64(totals.Orders))
	return totals
}

// BuildSalesPage derives the sales page from a raw bundle.
func BuildSalesPage(ctx context.Context, bundle SalesBundle, in PageInput) PageContent {
	l := newLabeler(ctx, in)
	currency := in.Config.currencyFor(bundle.Currency, in.Viewer)
	totals := SummarizeSales(bundle)
	daily := DeriveSeries(bundle.DailyRevenue, TimePoint{Label: periodLabel(in.RangeLabel), Value: totals.Revenue})
	top := TopCustomers(bundle.Customers, in.Config.TopN)

	content := PageContent{
		Title:      l.text("page.sales", "Sales"),
		RangeLabel: in.RangeLabel,
		Currency:   currency,
		Totals:     totals,
		HasData:    daily.HasData || len(bundle.Customers) > 0 || len(bundle.Products) > 0,
	}

	content.Cards = []CardView{
		MetricCard{Title: l.text("sales.revenue", "Revenue"), Value: format.CurrencyValue(format.Float(totals.Revenue), currency), Change: bundle.Summary.Change, Icon: IconRevenue}.View(),
		MetricCard{Title: l.text("sales.orders", "Orders"), Value: format.NumberValue(format.Float(float64(totals.Orders))), Icon: IconOrders}.View(),
		MetricCard{Title: l.text("sales.customers", "Customers"), Value: format.NumberValue(format.Float(float64(totals.Customers))), Icon: IconCustomers}.View(),
		MetricCard{Title: l.text("sales.avg_order_value", "Avg. order value"), Value: format.CurrencyValue(format.Float(totals.AvgOrderValue), currency), Icon: IconOrders}.View(),
	}

	products := make([]ProductSales, len(bundle.Products))
	copy(products, bundle.Products)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Revenue > products[j].Revenue
	})
	products = limit(products, in.Config.ChartLimit)
	productRows := make([]map[string]any, len(products))
	for i, p := range products {
		productRows[i] = map[string]any{"name": p.Name, "value": p.Revenue}
	}

	content.Charts = []PageChart{
		{
			Key:     ChartDailyRevenue,
			Title:   l.text("sales.daily_revenue", "Revenue over time"),
			HasData: daily.HasData,
			Spec: ChartSpec{
				Type:   ChartLine,
				Rows:   daily.Rows(),
				Theme:  in.Config.Theme,
				Series: []SeriesSpec{{DataKey: "value", Label: l.text("sales.revenue", "Revenue")}},
			},
		},
		{
			Key:     ChartTopProducts,
			Title:   l.text("sales.top_products", "Top products"),
			HasData: len(products) > 0,
			Spec: ChartSpec{
				Type:   ChartBar,
				Rows:   productRows,
				Layout: in.Config.ChartLayout,
				Theme:  in.Config.Theme,
				Series: []SeriesSpec{{DataKey: "value", Label: l.text("sales.revenue", "Revenue")}},
			},
		},
	}

	customers := TableView{
		Key:   TableCustomers,
		Title: l.text("sales.top_customers", "Top customers"),
		Columns: []string{
			l.text("sales.customer", "Customer"),
			l.text("sales.segment", "Segment"),
			l.text("sales.orders", "Orders"),
			l.text("sales.revenue", "Revenue"),
		},
	}
	for _, c := range top {
		revenue := c.Revenue
		segment := c.Segment
		if segment == "" {
			segment = format.Placeholder
		}
		customers.Rows = append(customers.Rows, []string{c.Name, segment, itoa(c.Orders), format.Currency(&revenue, currency)})
		if c.NewCustomer {
			customers.Badges = append(customers.Badges, Badge{Label: l.text("sales.new", "New"), Variant: BadgeInfo})
		} else {
			customers.Badges = append(customers.Badges, Badge{Label: l.text("sales.returning", "Returning"), Variant: BadgeNeutral})
		}
	}
	content.Tables = []TableView{customers}
	return content
}
