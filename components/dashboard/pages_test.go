package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bizdash/components/daterange"
)

type stubSource struct {
	mu        sync.Mutex
	marketing MarketingBundle
	finance   FinanceBundle
	sales     SalesBundle
	cross     CrossAnalysisBundle
	err       error
	calls     []daterange.Selector
}

func (s *stubSource) record(sel daterange.Selector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sel)
	return s.err
}

func (s *stubSource) FetchMarketing(_ context.Context, sel daterange.Selector) (MarketingBundle, error) {
	return s.marketing, s.record(sel)
}

func (s *stubSource) FetchFinance(_ context.Context, sel daterange.Selector) (FinanceBundle, error) {
	return s.finance, s.record(sel)
}

func (s *stubSource) FetchSales(_ context.Context, sel daterange.Selector) (SalesBundle, error) {
	return s.sales, s.record(sel)
}

func (s *stubSource) FetchCrossAnalysis(_ context.Context, sel daterange.Selector) (CrossAnalysisBundle, error) {
	return s.cross, s.record(sel)
}

func testInput() PageInput {
	return PageInput{Config: DefaultPageConfig(), RangeLabel: "Last 30 days"}
}

func TestBuildMarketingPageTotals(t *testing.T) {
	bundle := MarketingBundle{
		Currency: "USD",
		Campaigns: []Campaign{
			{Name: "A", Spend: 100, Clicks: 4, Impressions: 100},
			{Name: "B", Spend: 50, Clicks: 6, Impressions: 100},
		},
	}
	content := BuildMarketingPage(context.Background(), bundle, testInput())

	totals, ok := content.Totals.(CampaignTotals)
	require.True(t, ok)
	assert.Equal(t, 150.0, totals.Spend)
	assert.Equal(t, int64(10), totals.Clicks)
	assert.Equal(t, 15.0, totals.AvgCPC)
	assert.True(t, content.HasData)
	assert.Equal(t, "$150.00", content.Cards[0].Display)
	assert.Equal(t, "$15.00", content.Cards[3].Display)
}

func TestBuildMarketingPageLimitsTableAndChart(t *testing.T) {
	var campaigns []Campaign
	for i := 0; i < 15; i++ {
		campaigns = append(campaigns, Campaign{Name: fmt.Sprintf("c%02d", i), Spend: float64(i + 1), Status: "active"})
	}
	content := BuildMarketingPage(context.Background(), MarketingBundle{Campaigns: campaigns}, testInput())

	table, ok := content.Table(TableCampaigns)
	require.True(t, ok)
	assert.Len(t, table.Rows, CampaignTableLimit)
	assert.Len(t, table.Badges, CampaignTableLimit)
	assert.Equal(t, "c14", table.Rows[0][0], "highest spend first")
	assert.Equal(t, BadgeSuccess, table.Badges[0].Variant)

	chart, ok := content.Chart(ChartTopCampaigns)
	require.True(t, ok)
	assert.Len(t, chart.Spec.Rows, CampaignChartLimit)
	assert.Equal(t, "c14", chart.Spec.Rows[0]["name"])
}

func TestBuildMarketingPageZeroClicks(t *testing.T) {
	content := BuildMarketingPage(context.Background(), MarketingBundle{
		Campaigns: []Campaign{{Name: "A", Spend: 100}},
	}, testInput())
	totals := content.Totals.(CampaignTotals)
	assert.Zero(t, totals.AvgCPC)
	assert.Zero(t, totals.CTR)
}

func TestBuildMarketingPageEmpty(t *testing.T) {
	content := BuildMarketingPage(context.Background(), MarketingBundle{}, testInput())
	assert.False(t, content.HasData)
	for _, chart := range content.Charts {
		assert.False(t, chart.HasData, chart.Key)
	}
}

func TestBuildFinancePageFallbackSeries(t *testing.T) {
	bundle := FinanceBundle{
		Summary: FinanceSummary{Revenue: 1000, Expenses: 400, Profit: 600, CashInflow: 900, CashOutflow: 300, NetCashFlow: 600, Budget: 500, Actual: 400},
	}
	content := BuildFinancePage(context.Background(), bundle, testInput())
	series, ok := content.Totals.(FinanceSeries)
	require.True(t, ok)

	require.Len(t, series.RevenueVsCosts.Points, 1)
	assert.True(t, series.RevenueVsCosts.Synthesized)
	assert.True(t, series.RevenueVsCosts.HasData)
	assert.Equal(t, "Last 30 days", series.RevenueVsCosts.Points[0].Label)
	assert.Equal(t, 1000.0, series.RevenueVsCosts.Points[0].Revenue)
	assert.True(t, series.CashFlow.HasData)
	assert.True(t, series.BudgetVsActual.HasData)
	assert.True(t, content.HasData)

	chart, ok := content.Chart(ChartRevenueVsCosts)
	require.True(t, ok)
	require.Len(t, chart.Spec.Rows, 1)
	assert.NotEmpty(t, chart.Spec.Rows[0]["name"])
}

func TestBuildFinancePageFallbackLabelWithoutRange(t *testing.T) {
	series := DeriveFinanceSeries(FinanceBundle{Summary: FinanceSummary{Revenue: 1}}, "")
	assert.Equal(t, FallbackPeriodLabel, series.RevenueVsCosts.Points[0].Label)
	assert.False(t, series.CashFlow.HasData)
}

func TestBuildFinancePageKeepsSourceSeries(t *testing.T) {
	bundle := FinanceBundle{
		RevenueVsCosts: []RevenuePoint{{Label: "Jan", Revenue: 1}, {Label: "Feb", Revenue: 2}},
	}
	series := DeriveFinanceSeries(bundle, "Last 30 days")
	assert.False(t, series.RevenueVsCosts.Synthesized)
	assert.Len(t, series.RevenueVsCosts.Points, 2)
}

func TestBuildFinancePagePayments(t *testing.T) {
	bundle := FinanceBundle{
		Currency: "USD",
		PaymentMethods: []PaymentMethod{
			{Method: "card", Amount: 75, Count: 3},
			{Method: "cash", Amount: 25, Count: 1},
		},
	}
	content := BuildFinancePage(context.Background(), bundle, testInput())
	require.NotNil(t, content.Payments)
	assert.True(t, content.HasData)
	assert.Equal(t, "75.0%", content.Payments.Rows[0].Share)
	assert.Equal(t, "$100.00", content.Payments.Total)
}

func TestSummarizeSalesPrefersSummary(t *testing.T) {
	bundle := SalesBundle{
		Summary: SalesSummary{Revenue: 1000, Orders: 20},
		Customers: []Customer{
			{Name: "a", Revenue: 100, Orders: 2, NewCustomer: true},
			{Name: "b", Revenue: 300, Orders: 2},
		},
	}
	totals := SummarizeSales(bundle)
	assert.Equal(t, 1000.0, totals.Revenue)
	assert.Equal(t, int64(20), totals.Orders)
	assert.Equal(t, int64(2), totals.Customers)
	assert.Equal(t, int64(1), totals.NewCustomers)
	assert.Equal(t, 50.0, totals.AvgOrderValue)
}

func TestSummarizeSalesZeroOrders(t *testing.T) {
	totals := SummarizeSales(SalesBundle{Summary: SalesSummary{Revenue: 10}})
	assert.Zero(t, totals.AvgOrderValue)
}

func TestBuildSalesPageTables(t *testing.T) {
	bundle := SalesBundle{
		Currency: "USD",
		Customers: []Customer{
			{Name: "small", Revenue: 10, Orders: 1},
			{Name: "big", Revenue: 500, Orders: 3, NewCustomer: true},
		},
		Products: []ProductSales{{Name: "p1", Revenue: 5}, {Name: "p2", Revenue: 50}},
	}
	content := BuildSalesPage(context.Background(), bundle, testInput())

	table, ok := content.Table(TableCustomers)
	require.True(t, ok)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"big", "-", "3", "$500.00"}, table.Rows[0])
	assert.Equal(t, BadgeInfo, table.Badges[0].Variant)

	chart, ok := content.Chart(ChartTopProducts)
	require.True(t, ok)
	assert.Equal(t, "p2", chart.Spec.Rows[0]["name"])

	daily, ok := content.Chart(ChartDailyRevenue)
	require.True(t, ok)
	assert.True(t, daily.HasData)
	assert.Len(t, daily.Spec.Rows, 1)
}

func TestAnalyzeCross(t *testing.T) {
	bundle := CrossAnalysisBundle{
		Campaigns: []Campaign{{Spend: 200, Clicks: 40, Revenue: 300}},
		Sales:     SalesSummary{Revenue: 1000, NewCustomers: 10},
		Finance:   FinanceSummary{Expenses: 800},
	}
	totals := AnalyzeCross(bundle)
	assert.Equal(t, 5.0, totals.ROAS)
	assert.Equal(t, 20.0, totals.CAC)
	assert.Equal(t, 25.0, totals.RevenuePerClick)
	assert.Equal(t, 0.25, totals.MarketingShare)
}

func TestAnalyzeCrossFallbacks(t *testing.T) {
	bundle := CrossAnalysisBundle{
		Channels: []ChannelPerformance{{Channel: "search", Spend: 50, Clicks: 5, Revenue: 100}},
	}
	totals := AnalyzeCross(bundle)
	assert.Equal(t, 50.0, totals.Spend)
	assert.Zero(t, totals.Revenue)
	assert.Zero(t, totals.ROAS)
	assert.Zero(t, totals.CAC)

	content := BuildCrossAnalysisPage(context.Background(), bundle, testInput())
	assert.True(t, content.HasData)
	table, ok := content.Table(TableChannels)
	require.True(t, ok)
	assert.Equal(t, "search", table.Rows[0][0])
}

func TestPageProviderRendersCharts(t *testing.T) {
	source := &stubSource{marketing: MarketingBundle{
		Campaigns: []Campaign{{Name: "A", Spend: 10, Clicks: 1}},
	}}
	provider := NewPageProvider(PageMarketing, source, nil)
	data, err := provider.Fetch(context.Background(), WidgetContext{
		Range: daterange.ResolveSelector(daterange.Last7Days, fixedNow()),
	})
	require.NoError(t, err)
	content := data["page"].(PageContent)
	assert.Equal(t, "Last 7 days", content.RangeLabel)
	chart, ok := content.Chart(ChartTopCampaigns)
	require.True(t, ok)
	assert.Contains(t, chart.HTML, "echarts")
	assert.Equal(t, []daterange.Selector{daterange.Last7Days}, source.calls)
}

func TestPageProviderWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	provider := NewPageProvider(PageFinance, &stubSource{err: boom}, nil)
	_, err := provider.Fetch(context.Background(), WidgetContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, err = NewPageProvider(PageCode("nope"), &stubSource{}, nil).Fetch(context.Background(), WidgetContext{})
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestPageConfigFromClampsLimits(t *testing.T) {
	cfg := PageConfigFrom(map[string]any{"top_n": 5, "chart_limit": 9, "currency": "eur"})
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 5, cfg.ChartLimit)
	assert.Equal(t, "EUR", cfg.currencyFor("USD", ViewerContext{}))
}

func TestTableViewLines(t *testing.T) {
	table := TableView{
		Rows:   [][]string{{"a"}, {"b"}},
		Badges: []Badge{{Label: "Active", Variant: BadgeSuccess}},
	}
	lines := table.Lines()
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].Badge)
	assert.Equal(t, "badge badge-success", lines[0].Badge.Class())
	assert.Nil(t, lines[1].Badge)
}
