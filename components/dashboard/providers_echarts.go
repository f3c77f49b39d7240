package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// EChartsProvider renders server-side chart HTML for one chart type. Pages
// use it through Chart; generic chart widgets use it as a Provider.
type EChartsProvider struct {
	chartType     ChartType
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache. Rendering is uncached by default.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// NewEChartsProvider builds a provider for a specific chart type.
func NewEChartsProvider(chartType ChartType, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartType: ChartType(strings.ToLower(string(chartType))),
		theme:     types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChartView is the rendered chart handed to templates.
type ChartView struct {
	Config  ChartConfig `json:"config"`
	HTML    string      `json:"html"`
	HasData bool        `json:"has_data"`
}

// Chart renders spec for the viewer in meta. Titles, axis labels and series
// names pass through the translator when one is set.
func (p *EChartsProvider) Chart(ctx context.Context, meta WidgetContext, spec ChartSpec) (ChartView, error) {
	if spec.Type == "" {
		spec.Type = p.chartType
	}
	if spec.Theme == "" {
		spec.Theme = p.resolveTheme(meta.Viewer)
	}
	if spec.AssetsHost == "" {
		spec.AssetsHost = p.assetsHost
	}

	cfg, err := ResolveChart(spec)
	if err != nil {
		return ChartView{}, err
	}
	p.translate(ctx, meta, &cfg)

	renderFn := cfg.Render
	var html string
	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s:%s", meta.Instance.DefinitionID, meta.Instance.ID, cfg.Type, configHash(map[string]any{
			"chart":  cfg,
			"locale": meta.Viewer.Locale,
		}))
		html, err = p.cache.GetOrRender(ctx, key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return ChartView{}, err
	}
	return ChartView{Config: cfg, HTML: html, HasData: len(spec.Rows) > 0}, nil
}

// Fetch converts widget configuration into go-echarts markup.
func (p *EChartsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	if cfg == nil {
		cfg = map[string]any{}
	}

	rows := parseRows(cfg["rows"])
	if len(rows) == 0 {
		return nil, fmt.Errorf("dashboard: chart rows are required")
	}

	title := stringValue(cfg["title"], "Chart")
	if meta.Translator != nil {
		key := fmt.Sprintf("bizdash.widget.%s.title", meta.Instance.DefinitionID)
		title = translateOrFallback(ctx, meta.Translator, key, meta.Viewer.Locale, title, nil)
	}

	spec := ChartSpec{
		Title:    title,
		Subtitle: stringValue(cfg["subtitle"], ""),
		Rows:     rows,
		Series:   parseSeriesSpecs(cfg["series"]),
		AxisKey:  stringValue(cfg["axis_key"], ""),
		Layout:   ChartLayout(stringValue(cfg["layout"], "")),
		Height:   stringValue(cfg["height"], ""),
		Theme:    strings.TrimSpace(stringValue(cfg["theme"], "")),
	}
	view, err := p.Chart(ctx, meta, spec)
	if err != nil {
		return nil, err
	}

	data := WidgetData{
		"chart_html": view.HTML,
		"chart_type": string(view.Config.Type),
		"layout":     string(view.Config.Layout),
		"title":      view.Config.Title,
		"subtitle":   view.Config.Subtitle,
		"theme":      view.Config.Theme,
		"series":     view.Config.Series,
	}
	if dynamic := boolValue(cfg["dynamic"]); dynamic {
		data["dynamic"] = true
		if refresh := stringValue(cfg["refresh_endpoint"], ""); refresh != "" {
			data["refresh_endpoint"] = refresh
		}
	}
	return data, nil
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

func (p *EChartsProvider) translate(ctx context.Context, meta WidgetContext, cfg *ChartConfig) {
	if meta.Translator == nil {
		return
	}
	locale := meta.Viewer.Locale
	for i, label := range cfg.Categories {
		cfg.Categories[i] = translateOrFallback(ctx, meta.Translator, label, locale, label, nil)
	}
	for i := range cfg.Series {
		if cfg.Series[i].Name == "" {
			continue
		}
		cfg.Series[i].Name = translateOrFallback(ctx, meta.Translator, cfg.Series[i].Name, locale, cfg.Series[i].Name, nil)
	}
}

func parseRows(v any) []map[string]any {
	switch val := v.(type) {
	case []map[string]any:
		return val
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if row, ok := item.(map[string]any); ok {
				out = append(out, row)
			}
		}
		return out
	default:
		return nil
	}
}

func parseSeriesSpecs(v any) []SeriesSpec {
	var items []map[string]any
	switch val := v.(type) {
	case []SeriesSpec:
		return val
	case []map[string]any:
		items = val
	case []any:
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
	}
	out := make([]SeriesSpec, 0, len(items))
	for _, m := range items {
		key := stringValue(m["data_key"], stringValue(m["dataKey"], ""))
		out = append(out, SeriesSpec{
			DataKey: key,
			Label:   stringValue(m["label"], stringValue(m["name"], "")),
			Color:   stringValue(m["color"], ""),
		})
	}
	return out
}

func stringSliceValue(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func stringValue(v any, fallback string) string {
	switch val := v.(type) {
	case string:
		if val != "" {
			return val
		}
	case fmt.Stringer:
		if s := val.String(); s != "" {
			return s
		}
	}
	return fallback
}

func float64Value(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case *float64:
		if val != nil {
			return *val
		}
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}

func intValue(v any, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return false
	}
}

func init() {
	RegisterWidgetHook(func(reg *Registry) error {
		providers := map[string]ChartType{
			"bizdash.widget.bar_chart":  ChartBar,
			"bizdash.widget.line_chart": ChartLine,
			"bizdash.widget.pie_chart":  ChartPie,
		}
		for code, chartType := range providers {
			if _, ok := reg.Provider(code); ok {
				continue
			}
			if _, ok := reg.Definition(code); !ok {
				continue
			}
			if err := reg.RegisterProvider(code, NewEChartsProvider(chartType)); err != nil {
				return err
			}
		}
		return nil
	})
}
