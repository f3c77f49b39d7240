package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// CampaignTableLimit is the number of campaigns shown in the table.
	CampaignTableLimit = 10
	// CampaignChartLimit is the number of table campaigns plotted in the chart.
	CampaignChartLimit = 7
	// CustomerTableLimit is the number of customers shown in the sales table.
	CustomerTableLimit = 10
)

// CampaignTotals are the sums and ratios across a campaign list.
type CampaignTotals struct {
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Revenue     float64 `json:"revenue"`
	Orders      int64   `json:"orders"`
	AvgCPC      float64 `json:"avgCpc"`
	CTR         float64 `json:"ctr"`
	ROAS        float64 `json:"roas"`
	CPA         float64 `json:"cpa"`
}

// SummarizeCampaigns sums spend, impressions, clicks, revenue and orders.
// Every ratio is 0 when its denominator is 0.
func SummarizeCampaigns(list []Campaign) CampaignTotals {
	spend, revenue := decimal.Zero, decimal.Zero
	var totals CampaignTotals
	for _, c := range list {
		spend = spend.Add(decimal.NewFromFloat(c.Spend))
		revenue = revenue.Add(decimal.NewFromFloat(c.Revenue))
		totals.Impressions += c.Impressions
		totals.Clicks += c.Clicks
		totals.Orders += c.Orders
	}
	totals.Spend = spend.InexactFloat64()
	totals.Revenue = revenue.InexactFloat64()
	totals.AvgCPC = ratio(spend, totals.Clicks)
	totals.CTR = ratio(decimal.NewFromInt(totals.Clicks), totals.Impressions)
	totals.CPA = ratio(spend, totals.Orders)
	if !spend.IsZero() {
		totals.ROAS = revenue.Div(spend).InexactFloat64()
	}
	return totals
}

func ratio(num decimal.Decimal, den int64) float64 {
	if den == 0 {
		return 0
	}
	return num.Div(decimal.NewFromInt(den)).InexactFloat64()
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromFloat(num).Div(decimal.NewFromFloat(den)).InexactFloat64()
}

// TopCampaigns returns the n campaigns with the highest spend. Ties keep
// their source order. The input slice is not modified.
func TopCampaigns(list []Campaign, n int) []Campaign {
	sorted := make([]Campaign, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Spend > sorted[j].Spend
	})
	return limit(sorted, n)
}

// TopCustomers returns the n customers with the highest revenue.
func TopCustomers(list []Customer, n int) []Customer {
	sorted := make([]Customer, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue > sorted[j].Revenue
	})
	return limit(sorted, n)
}

func limit[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

// SumAmounts totals a category breakdown.
func SumAmounts(items []CategoryAmount) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}
	return total.InexactFloat64()
}
