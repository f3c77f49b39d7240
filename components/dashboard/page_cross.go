package dashboard

import (
	"context"

	"github.com/goliatone/go-bizdash/components/format"
)

// Cross-analysis chart and table keys.
const (
	ChartChannelReturn = "channel_return"
	ChartChannelROAS   = "channel_roas"
	TableChannels      = "channels"
)

// CrossAnalysisTotals relate marketing spend to sales outcomes.
type CrossAnalysisTotals struct {
	Spend           float64 `json:"spend"`
	Clicks          int64   `json:"clicks"`
	Revenue         float64 `json:"revenue"`
	NewCustomers    int64   `json:"newCustomers"`
	ROAS            float64 `json:"roas"`
	CAC             float64 `json:"cac"`
	RevenuePerClick float64 `json:"revenuePerClick"`
	MarketingShare  float64 `json:"marketingShare"`
}

// AnalyzeCross computes ROAS (revenue/spend), CAC (spend/new customers),
// revenue per click and the share of expenses spent on marketing. Sales
// revenue falls back to campaign revenue when the sales summary is empty.
func AnalyzeCross(bundle CrossAnalysisBundle) CrossAnalysisTotals {
	campaigns := SummarizeCampaigns(bundle.Campaigns)
	totals := CrossAnalysisTotals{
		Spend:        campaigns.Spend,
		Clicks:       campaigns.Clicks,
		Revenue:      bundle.Sales.Revenue,
		NewCustomers: bundle.Sales.NewCustomers,
	}
	if totals.Revenue == 0 {
		totals.Revenue = campaigns.Revenue
	}
	if totals.Spend == 0 && len(bundle.Channels) > 0 {
		for _, ch := range bundle.Channels {
			totals.Spend += ch.Spend
			totals.Clicks += ch.Clicks
		}
	}
	totals.ROAS = safeDiv(totals.Revenue, totals.Spend)
	totals.CAC = safeDiv(totals.Spend, float64(totals.NewCustomers))
	totals.RevenuePerClick = safeDiv(totals.Revenue, float64(totals.Clicks))
	totals.MarketingShare = safeDiv(totals.Spend, bundle.Finance.Expenses)
	return totals
}

// BuildCrossAnalysisPage derives the cross-analysis page from a raw bundle.
func BuildCrossAnalysisPage(ctx context.Context, bundle CrossAnalysisBundle, in PageInput) PageContent {
	l := newLabeler(ctx, in)
	currency := in.Config.currencyFor(bundle.Currency, in.Viewer)
	totals := AnalyzeCross(bundle)

	content := PageContent{
		Title:      l.text("page.cross_analysis", "Cross analysis"),
		RangeLabel: in.RangeLabel,
		Currency:   currency,
		Totals:     totals,
		HasData:    len(bundle.Campaigns) > 0 || len(bundle.Channels) > 0 || totals.Revenue != 0,
	}

	content.Cards = []CardView{
		MetricCard{Title: l.text("cross.roas", "ROAS"), Value: format.NumberValue(format.Float(totals.ROAS)), Icon: IconRevenue}.View(),
		MetricCard{Title: l.text("cross.cac", "Customer acquisition cost"), Value: format.CurrencyValue(format.Float(totals.CAC), currency), Icon: IconCustomers}.View(),
		MetricCard{Title: l.text("cross.revenue_per_click", "Revenue per click"), Value: format.CurrencyValue(format.Float(totals.RevenuePerClick), currency), Icon: IconClicks}.View(),
		MetricCard{Title: l.text("cross.marketing_share", "Marketing share of expenses"), Value: format.PercentageValue(format.Float(totals.MarketingShare)), Icon: IconSpend}.View(),
	}

	rows := make([]map[string]any, len(bundle.Channels))
	table := TableView{
		Key:   TableChannels,
		Title: l.text("cross.channels", "Channels"),
		Columns: []string{
			l.text("cross.channel", "Channel"),
			l.text("cross.spend", "Spend"),
			l.text("cross.revenue", "Revenue"),
			l.text("cross.roas", "ROAS"),
			l.text("cross.cac", "CAC"),
		},
	}
	for i, ch := range bundle.Channels {
		roas := safeDiv(ch.Revenue, ch.Spend)
		cac := safeDiv(ch.Spend, float64(ch.NewCustomers))
		spend, revenue := ch.Spend, ch.Revenue
		rows[i] = map[string]any{"name": ch.Channel, "spend": ch.Spend, "revenue": ch.Revenue, "roas": roas}
		table.Rows = append(table.Rows, []string{
			ch.Channel,
			format.Currency(&spend, currency),
			format.Currency(&revenue, currency),
			format.Number(&roas, 2),
			format.Currency(&cac, currency),
		})
	}
	content.Tables = []TableView{table}

	content.Charts = []PageChart{
		{
			Key:     ChartChannelReturn,
			Title:   l.text("cross.channel_return", "Spend vs revenue by channel"),
			HasData: len(rows) > 0,
			Spec: ChartSpec{
				Type:  ChartBar,
				Rows:  rows,
				Theme: in.Config.Theme,
				Series: []SeriesSpec{
					{DataKey: "spend", Label: l.text("cross.spend", "Spend")},
					{DataKey: "revenue", Label: l.text("cross.revenue", "Revenue")},
				},
			},
		},
		{
			Key:     ChartChannelROAS,
			Title:   l.text("cross.channel_roas", "ROAS by channel"),
			HasData: len(rows) > 0,
			Spec: ChartSpec{
				Type:   ChartBar,
				Rows:   rows,
				Layout: in.Config.ChartLayout,
				Theme:  in.Config.Theme,
				Series: []SeriesSpec{{DataKey: "roas", Label: l.text("cross.roas", "ROAS")}},
			},
		},
	}
	return content
}
