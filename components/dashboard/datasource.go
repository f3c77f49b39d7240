package dashboard

import (
	"context"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// DataSource fetches raw page bundles for a date range. Bundles may be
// partial: missing lists and zero summaries are filled in by the page
// derivation helpers.
type DataSource interface {
	FetchMarketing(ctx context.Context, sel daterange.Selector) (MarketingBundle, error)
	FetchFinance(ctx context.Context, sel daterange.Selector) (FinanceBundle, error)
	FetchSales(ctx context.Context, sel daterange.Selector) (SalesBundle, error)
	FetchCrossAnalysis(ctx context.Context, sel daterange.Selector) (CrossAnalysisBundle, error)
}

// Campaign is a single paid marketing campaign.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Platform    string  `json:"platform,omitempty"`
	Status      string  `json:"status,omitempty"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
}

// MarketingBundle is the raw marketing payload.
type MarketingBundle struct {
	Currency         string           `json:"currency,omitempty"`
	Campaigns        []Campaign       `json:"campaigns"`
	DailySpend       []TimePoint      `json:"dailySpend,omitempty"`
	ChannelBreakdown []CategoryAmount `json:"channelBreakdown,omitempty"`
}

// FinanceSummary holds top-level finance figures. Margin is reported by the
// backend and is displayed as a percentage.
type FinanceSummary struct {
	Revenue     float64  `json:"revenue"`
	Expenses    float64  `json:"expenses"`
	Profit      float64  `json:"profit"`
	Margin      float64  `json:"margin"`
	CashInflow  float64  `json:"cashInflow"`
	CashOutflow float64  `json:"cashOutflow"`
	NetCashFlow float64  `json:"netCashFlow"`
	Budget      float64  `json:"budget"`
	Actual      float64  `json:"actual"`
	Change      *float64 `json:"change,omitempty"`
}

// FinanceBundle is the raw finance payload.
type FinanceBundle struct {
	Currency         string           `json:"currency,omitempty"`
	Summary          FinanceSummary   `json:"summary"`
	RevenueVsCosts   []RevenuePoint   `json:"revenueVsCosts,omitempty"`
	CashFlow         []CashFlowPoint  `json:"cashFlow,omitempty"`
	BudgetVsActual   []BudgetPoint    `json:"budgetVsActual,omitempty"`
	ExpenseBreakdown []CategoryAmount `json:"expenseBreakdown,omitempty"`
	PaymentMethods   []PaymentMethod  `json:"paymentMethods,omitempty"`
}

// Customer is a single customer row in the sales bundle.
type Customer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Segment     string  `json:"segment,omitempty"`
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
	NewCustomer bool    `json:"newCustomer,omitempty"`
}

// ProductSales aggregates sales of a single product.
type ProductSales struct {
	Name    string  `json:"name"`
	Units   int64   `json:"units"`
	Revenue float64 `json:"revenue"`
}

// SalesSummary holds top-level sales figures.
type SalesSummary struct {
	Revenue      float64  `json:"revenue"`
	Orders       int64    `json:"orders"`
	Customers    int64    `json:"customers"`
	NewCustomers int64    `json:"newCustomers"`
	Change       *float64 `json:"change,omitempty"`
}

// SalesBundle is the raw sales payload.
type SalesBundle struct {
	Currency     string         `json:"currency,omitempty"`
	Summary      SalesSummary   `json:"summary"`
	Customers    []Customer     `json:"customers,omitempty"`
	Products     []ProductSales `json:"products,omitempty"`
	DailyRevenue []TimePoint    `json:"dailyRevenue,omitempty"`
}

// ChannelPerformance joins marketing spend with the sales it produced.
type ChannelPerformance struct {
	Channel      string  `json:"channel"`
	Spend        float64 `json:"spend"`
	Revenue      float64 `json:"revenue"`
	Clicks       int64   `json:"clicks"`
	NewCustomers int64   `json:"newCustomers"`
}

// CrossAnalysisBundle combines marketing, sales and finance figures.
type CrossAnalysisBundle struct {
	Currency  string               `json:"currency,omitempty"`
	Campaigns []Campaign           `json:"campaigns,omitempty"`
	Sales     SalesSummary         `json:"sales"`
	Finance   FinanceSummary       `json:"finance"`
	Channels  []ChannelPerformance `json:"channels,omitempty"`
}

// PaymentMethod is the amount collected through one payment method.
type PaymentMethod struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}
