package dashboard

import (
	"context"
	"strings"

	"github.com/goliatone/go-bizdash/components/format"
)

// Marketing chart and table keys.
const (
	ChartTopCampaigns = "top_campaigns"
	ChartDailySpend   = "daily_spend"
	ChartChannelSpend = "channel_spend"
	TableCampaigns    = "campaigns"
)

var campaignStatusBadges = map[string]BadgeVariant{
	"active":    BadgeSuccess,
	"paused":    BadgeWarning,
	"ended":     BadgeNeutral,
	"completed": BadgeInfo,
	"rejected":  BadgeDanger,
}

// BuildMarketingPage derives the marketing page from a raw bundle.
func BuildMarketingPage(ctx context.Context, bundle MarketingBundle, in PageInput) PageContent {
	l := newLabeler(ctx, in)
	currency := in.Config.currencyFor(bundle.Currency, in.Viewer)
	totals := SummarizeCampaigns(bundle.Campaigns)
	table := TopCampaigns(bundle.Campaigns, in.Config.TopN)
	plotted := limit(table, in.Config.ChartLimit)

	content := PageContent{
		Title:      l.text("page.marketing", "Marketing"),
		RangeLabel: in.RangeLabel,
		Currency:   currency,
		Totals:     totals,
		HasData:    len(bundle.Campaigns) > 0,
	}

	content.Cards = []CardView{
		MetricCard{Title: l.text("marketing.spend", "Total spend"), Value: format.CurrencyValue(format.Float(totals.Spend), currency), Icon: IconSpend}.View(),
		MetricCard{Title: l.text("marketing.impressions", "Impressions"), Value: format.NumberValue(format.Float(float64(totals.Impressions))), Icon: IconImpressions}.View(),
		MetricCard{Title: l.text("marketing.clicks", "Clicks"), Value: format.NumberValue(format.Float(float64(totals.Clicks))), Icon: IconClicks}.View(),
		MetricCard{Title: l.text("marketing.avg_cpc", "Avg. CPC"), Value: format.CurrencyValue(format.Float(totals.AvgCPC), currency), Icon: IconClicks}.View(),
		MetricCard{Title: l.text("marketing.ctr", "CTR"), Value: format.PercentageValue(format.Float(totals.CTR)), Icon: IconImpressions}.View(),
		MetricCard{Title: l.text("marketing.roas", "ROAS"), Value: format.NumberValue(format.Float(totals.ROAS)), Icon: IconRevenue}.View(),
	}

	rows := make([]map[string]any, len(plotted))
	for i, c := range plotted {
		rows[i] = map[string]any{"name": c.Name, "spend": c.Spend, "revenue": c.Revenue}
	}
	daily := DeriveSeries(bundle.DailySpend, TimePoint{Label: periodLabel(in.RangeLabel), Value: totals.Spend})
	channels := DeriveSeries(bundle.ChannelBreakdown, CategoryAmount{Category: periodLabel(in.RangeLabel), Amount: totals.Spend})

	content.Charts = []PageChart{
		{
			Key:     ChartTopCampaigns,
			Title:   l.text("marketing.top_campaigns", "Top campaigns by spend"),
			HasData: len(plotted) > 0,
			Spec: ChartSpec{
				Type:   ChartBar,
				Rows:   rows,
				Layout: in.Config.ChartLayout,
				Theme:  in.Config.Theme,
				Series: []SeriesSpec{
					{DataKey: "spend", Label: l.text("marketing.spend", "Spend")},
					{DataKey: "revenue", Label: l.text("marketing.revenue", "Revenue")},
				},
			},
		},
		{
			Key:     ChartDailySpend,
			Title:   l.text("marketing.daily_spend", "Daily spend"),
			HasData: daily.HasData,
			Spec:    ChartSpec{Type: ChartLine, Rows: daily.Rows(), Theme: in.Config.Theme},
		},
		{
			Key:     ChartChannelSpend,
			Title:   l.text("marketing.channel_spend", "Spend by channel"),
			HasData: channels.HasData,
			Spec:    ChartSpec{Type: ChartPie, Rows: channels.Rows(), Theme: in.Config.Theme},
		},
	}

	campaigns := TableView{
		Key:   TableCampaigns,
		Title: l.text("marketing.campaigns", "Campaigns"),
		Columns: []string{
			l.text("marketing.campaign", "Campaign"),
			l.text("marketing.spend", "Spend"),
			l.text("marketing.impressions", "Impressions"),
			l.text("marketing.clicks", "Clicks"),
			l.text("marketing.ctr", "CTR"),
			l.text("marketing.revenue", "Revenue"),
			l.text("marketing.roas", "ROAS"),
		},
	}
	for _, c := range table {
		spend, revenue := c.Spend, c.Revenue
		ctr := safeDiv(float64(c.Clicks), float64(c.Impressions))
		roas := safeDiv(c.Revenue, c.Spend)
		campaigns.Rows = append(campaigns.Rows, []string{
			c.Name,
			format.Currency(&spend, currency),
			format.Number(format.Float(float64(c.Impressions)), 0),
			format.Number(format.Float(float64(c.Clicks)), 0),
			format.Percentage(&ctr, 2),
			format.Currency(&revenue, currency),
			format.Number(&roas, 2),
		})
		campaigns.Badges = append(campaigns.Badges, campaignBadge(c.Status))
	}
	content.Tables = []TableView{campaigns}
	return content
}

func campaignBadge(status string) Badge {
	key := strings.ToLower(strings.TrimSpace(status))
	if key == "" {
		return Badge{Label: "-", Variant: BadgeNeutral}
	}
	variant, ok := campaignStatusBadges[key]
	if !ok {
		variant = BadgeNeutral
	}
	return Badge{Label: status, Variant: variant}
}
