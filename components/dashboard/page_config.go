package dashboard

import (
	"strings"

	"github.com/goliatone/go-bizdash/components/format"
)

// PageConfig enumerates every option a page understands. The zero value is
// not valid; use PageConfigFrom to apply defaults.
type PageConfig struct {
	// TopN is the number of table rows. Default CampaignTableLimit (10).
	TopN int
	// ChartLimit is the number of table rows plotted. Default
	// CampaignChartLimit (7), never more than TopN.
	ChartLimit int
	// Currency overrides the bundle currency. Default: bundle currency,
	// then viewer currency, then format.DefaultCurrency.
	Currency string
	// ChartLayout orients ranking bar charts. Default LayoutHorizontal.
	ChartLayout ChartLayout
	// Theme forces a chart theme. Default: the chart provider's theme.
	Theme string
}

// DefaultPageConfig returns the documented defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		TopN:        CampaignTableLimit,
		ChartLimit:  CampaignChartLimit,
		ChartLayout: LayoutHorizontal,
	}
}

// PageConfigFrom reads a page configuration map, as validated against the
// page schema, and fills the gaps with defaults.
func PageConfigFrom(cfg map[string]any) PageConfig {
	out := DefaultPageConfig()
	if n := intValue(cfg["top_n"], 0); n > 0 {
		out.TopN = n
	}
	if n := intValue(cfg["chart_limit"], 0); n > 0 {
		out.ChartLimit = n
	}
	if out.ChartLimit > out.TopN {
		out.ChartLimit = out.TopN
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(stringValue(cfg["currency"], "")))
	switch ChartLayout(strings.ToLower(stringValue(cfg["chart_layout"], ""))) {
	case LayoutVertical:
		out.ChartLayout = LayoutVertical
	case LayoutHorizontal:
		out.ChartLayout = LayoutHorizontal
	}
	out.Theme = strings.TrimSpace(stringValue(cfg["theme"], ""))
	return out
}

// currencyFor picks the display currency for a bundle.
func (c PageConfig) currencyFor(bundleCurrency string, viewer ViewerContext) string {
	for _, candidate := range []string{c.Currency, bundleCurrency, viewer.Currency} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return strings.ToUpper(candidate)
		}
	}
	return format.DefaultCurrency
}

// pageSchema is the JSON schema shared by all page definitions.
func pageSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"top_n":        map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": CampaignTableLimit},
			"chart_limit":  map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": CampaignChartLimit},
			"currency":     map[string]any{"type": "string", "pattern": "^[A-Za-z]{3}$"},
			"chart_layout": map[string]any{"type": "string", "enum": []string{string(LayoutVertical), string(LayoutHorizontal)}},
			"theme":        map[string]any{"type": "string", "minLength": 1},
		},
	}
}
