package dashboard

import (
	"context"

	"github.com/goliatone/go-bizdash/components/format"
)

// Finance chart keys.
const (
	ChartRevenueVsCosts   = "revenue_vs_costs"
	ChartCashFlow         = "cash_flow"
	ChartBudgetVsActual   = "budget_vs_actual"
	ChartExpenseBreakdown = "expense_breakdown"
)

// FinanceSeries holds the finance charts, synthesized from the summary
// when the bundle omitted them.
type FinanceSeries struct {
	RevenueVsCosts   Series[RevenuePoint]   `json:"revenue_vs_costs"`
	CashFlow         Series[CashFlowPoint]  `json:"cash_flow"`
	BudgetVsActual   Series[BudgetPoint]    `json:"budget_vs_actual"`
	ExpenseBreakdown Series[CategoryAmount] `json:"expense_breakdown"`
}

// DeriveFinanceSeries fills every missing finance series with a single point
// built from the summary and labelled with rangeLabel.
func DeriveFinanceSeries(bundle FinanceBundle, rangeLabel string) FinanceSeries {
	label := periodLabel(rangeLabel)
	s := bundle.Summary
	return FinanceSeries{
		RevenueVsCosts: DeriveSeries(bundle.RevenueVsCosts, RevenuePoint{
			Label:    label,
			Revenue:  s.Revenue,
			Expenses: s.Expenses,
			Profit:   s.Profit,
		}),
		CashFlow: DeriveSeries(bundle.CashFlow, CashFlowPoint{
			Label:   label,
			Inflow:  s.CashInflow,
			Outflow: s.CashOutflow,
			Net:     s.NetCashFlow,
		}),
		BudgetVsActual: DeriveSeries(bundle.BudgetVsActual, BudgetPoint{
			Label:  label,
			Budget: s.Budget,
			Actual: s.Actual,
		}),
		ExpenseBreakdown: DeriveSeries(bundle.ExpenseBreakdown, CategoryAmount{
			Category: label,
			Amount:   s.Expenses,
		}),
	}
}

// BuildFinancePage derives the finance page from a raw bundle.
func BuildFinancePage(ctx context.Context, bundle FinanceBundle, in PageInput) PageContent {
	l := newLabeler(ctx, in)
	currency := in.Config.currencyFor(bundle.Currency, in.Viewer)
	series := DeriveFinanceSeries(bundle, in.RangeLabel)
	s := bundle.Summary

	content := PageContent{
		Title:      l.text("page.finance", "Finance"),
		RangeLabel: in.RangeLabel,
		Currency:   currency,
		Totals:     series,
		HasData: series.RevenueVsCosts.HasData || series.CashFlow.HasData ||
			series.BudgetVsActual.HasData || len(bundle.PaymentMethods) > 0,
	}

	// TODO: confirm whether summary.margin arrives as fraction or points; it
	// is formatted as a fraction here.
	margin := format.PercentageValue(format.Float(s.Margin))

	content.Cards = []CardView{
		MetricCard{Title: l.text("finance.revenue", "Revenue"), Value: format.CurrencyValue(format.Float(s.Revenue), currency), Change: s.Change, Icon: IconRevenue}.View(),
		MetricCard{Title: l.text("finance.expenses", "Expenses"), Value: format.CurrencyValue(format.Float(s.Expenses), currency), Icon: IconExpenses}.View(),
		MetricCard{Title: l.text("finance.profit", "Profit"), Value: format.CurrencyValue(format.Float(s.Profit), currency), Icon: IconProfit}.View(),
		MetricCard{Title: l.text("finance.margin", "Margin"), Value: margin, Icon: IconProfit}.View(),
	}
	content.Categories = []CategoryCardView{
		CategoryCard{
			Category: l.text("finance.cash_flow", "Cash flow"),
			Icon:     IconCashFlow,
			Metrics: []MetricCard{
				{Title: l.text("finance.inflow", "Inflow"), Value: format.CurrencyValue(format.Float(s.CashInflow), currency)},
				{Title: l.text("finance.outflow", "Outflow"), Value: format.CurrencyValue(format.Float(s.CashOutflow), currency)},
				{Title: l.text("finance.net", "Net"), Value: format.CurrencyValue(format.Float(s.NetCashFlow), currency)},
			},
		}.View(),
		CategoryCard{
			Category: l.text("finance.budget", "Budget"),
			Icon:     IconBudget,
			Metrics: []MetricCard{
				{Title: l.text("finance.planned", "Planned"), Value: format.CurrencyValue(format.Float(s.Budget), currency)},
				{Title: l.text("finance.actual", "Actual"), Value: format.CurrencyValue(format.Float(s.Actual), currency)},
				{Title: l.text("finance.budget_used", "Used"), Value: format.PercentageValue(format.Float(safeDiv(s.Actual, s.Budget)))},
			},
		}.View(),
	}

	content.Charts = []PageChart{
		{
			Key:     ChartRevenueVsCosts,
			Title:   l.text("finance.revenue_vs_costs", "Revenue vs costs"),
			HasData: series.RevenueVsCosts.HasData,
			Spec: ChartSpec{
				Type:  ChartLine,
				Rows:  series.RevenueVsCosts.Rows(),
				Theme: in.Config.Theme,
				Series: []SeriesSpec{
					{DataKey: "revenue", Label: l.text("finance.revenue", "Revenue")},
					{DataKey: "expenses", Label: l.text("finance.expenses", "Expenses")},
					{DataKey: "profit", Label: l.text("finance.profit", "Profit")},
				},
			},
		},
		{
			Key:     ChartCashFlow,
			Title:   l.text("finance.cash_flow", "Cash flow"),
			HasData: series.CashFlow.HasData,
			Spec: ChartSpec{
				Type:  ChartBar,
				Rows:  series.CashFlow.Rows(),
				Theme: in.Config.Theme,
				Series: []SeriesSpec{
					{DataKey: "inflow", Label: l.text("finance.inflow", "Inflow")},
					{DataKey: "outflow", Label: l.text("finance.outflow", "Outflow")},
					{DataKey: "net", Label: l.text("finance.net", "Net")},
				},
			},
		},
		{
			Key:     ChartBudgetVsActual,
			Title:   l.text("finance.budget_vs_actual", "Budget vs actual"),
			HasData: series.BudgetVsActual.HasData,
			Spec: ChartSpec{
				Type:   ChartBar,
				Rows:   series.BudgetVsActual.Rows(),
				Layout: in.Config.ChartLayout,
				Theme:  in.Config.Theme,
				Series: []SeriesSpec{
					{DataKey: "budget", Label: l.text("finance.budget", "Budget")},
					{DataKey: "actual", Label: l.text("finance.actual", "Actual")},
				},
			},
		},
		{
			Key:     ChartExpenseBreakdown,
			Title:   l.text("finance.expense_breakdown", "Expenses by category"),
			HasData: series.ExpenseBreakdown.HasData,
			Spec:    ChartSpec{Type: ChartPie, Rows: series.ExpenseBreakdown.Rows(), Theme: in.Config.Theme},
		},
	}

	payments := PaymentMetrics{Methods: bundle.PaymentMethods, Currency: currency}.View()
	content.Payments = &payments
	return content
}
