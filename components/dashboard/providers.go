package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/daterange"
)

// PageProvider fetches a page bundle from a DataSource and derives its
// display-ready content.
type PageProvider struct {
	page   PageCode
	source DataSource
	charts *EChartsProvider
}

// NewPageProvider builds the provider for page. A nil charts provider
// renders with the defaults.
func NewPageProvider(page PageCode, source DataSource, charts *EChartsProvider) *PageProvider {
	if charts == nil {
		charts = NewEChartsProvider(ChartBar)
	}
	return &PageProvider{page: page, source: source, charts: charts}
}

// Fetch implements Provider. The payload carries the PageContent under "page".
func (p *PageProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.source == nil {
		return nil, fmt.Errorf("dashboard: page %s has no data source", p.page)
	}
	sel := meta.Range.Selector
	if sel == "" {
		sel = daterange.DefaultRange
	}
	in := PageInput{
		Config:     PageConfigFrom(meta.Instance.Configuration),
		Viewer:     meta.Viewer,
		RangeLabel: translateOrFallback(ctx, meta.Translator, sel.TranslationKey(), meta.Viewer.Locale, sel.Label(), nil),
		Translator: meta.Translator,
	}

	var content PageContent
	switch p.page {
	case PageMarketing:
		bundle, err := p.source.FetchMarketing(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch marketing: %w", err)
		}
		content = BuildMarketingPage(ctx, bundle, in)
	case PageFinance:
		bundle, err := p.source.FetchFinance(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch finance: %w", err)
		}
		content = BuildFinancePage(ctx, bundle, in)
	case PageSales:
		bundle, err := p.source.FetchSales(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch sales: %w", err)
		}
		content = BuildSalesPage(ctx, bundle, in)
	case PageCrossAnalysis:
		bundle, err := p.source.FetchCrossAnalysis(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch cross analysis: %w", err)
		}
		content = BuildCrossAnalysisPage(ctx, bundle, in)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, p.page)
	}

	if err := renderCharts(ctx, p.charts, meta, &content); err != nil {
		return nil, fmt.Errorf("dashboard: render %s charts: %w", p.page, err)
	}
	return WidgetData{
		"page":     content,
		"range":    meta.Range.ISO(),
		"has_data": content.HasData,
	}, nil
}

// NewPaymentMetricsProvider renders the payment-method breakdown of the
// finance bundle as a standalone widget.
func NewPaymentMetricsProvider(source DataSource) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		if source == nil {
			return nil, fmt.Errorf("dashboard: payment metrics have no data source")
		}
		bundle, err := source.FetchFinance(ctx, meta.Range.Selector)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch payment methods: %w", err)
		}
		cfg := PageConfigFrom(meta.Instance.Configuration)
		view := PaymentMetrics{
			Methods:  bundle.PaymentMethods,
			Currency: cfg.currencyFor(bundle.Currency, meta.Viewer),
		}.View()
		title := translateOrFallback(ctx, meta.Translator, "bizdash.widget.payment_metrics.title", meta.Viewer.Locale, "Payment methods", nil)
		return WidgetData{
			"title":    title,
			"payments": view,
			"icon":     ResolveIcon(IconPayments),
			"has_data": view.HasData,
		}, nil
	})
}

// NewAlertsProvider lists the alerts raised in the active range, decorated
// and sorted by the panel.
func NewAlertsProvider(source alerts.Source, panel *alerts.Panel, now func() time.Time) Provider {
	if panel == nil {
		panel = alerts.NewPanel(alerts.PanelOptions{})
	}
	if now == nil {
		now = time.Now
	}
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		if source == nil {
			return nil, fmt.Errorf("dashboard: alerts have no source")
		}
		list, err := source.FetchAlerts(ctx, meta.Range.Selector)
		if err != nil {
			return nil, fmt.Errorf("dashboard: fetch alerts: %w", err)
		}
		limit := intValue(meta.Instance.Configuration["limit"], 0)
		views := panel.View(ctx, list, meta.Viewer.Locale, now())
		if limit > 0 && len(views) > limit {
			views = views[:limit]
		}
		title := translateOrFallback(ctx, meta.Translator, "bizdash.widget.alerts.title", meta.Viewer.Locale, "Alerts", nil)
		return WidgetData{
			"title":    title,
			"alerts":   views,
			"icon":     ResolveIcon(IconAlert),
			"has_data": len(views) > 0,
		}, nil
	})
}
