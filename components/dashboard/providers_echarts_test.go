package dashboard

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEChartsBarProvider(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartBar)
	ctx := sampleChartContext("bizdash.widget.bar_chart", map[string]any{
		"title": "Test Chart",
		"rows": []map[string]any{
			{"name": "A", "value": 10},
			{"name": "B", "value": 20},
		},
	})

	data, err := provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)

	assert.Equal(t, "bar", data["chart_type"])
	assert.Equal(t, "Test Chart", data["title"])
	assert.Contains(t, html(data), "echarts")
}

func TestEChartsLineProviderWithSeries(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartLine)
	ctx := sampleChartContext("bizdash.widget.line_chart", map[string]any{
		"title": "Revenue vs Costs",
		"rows": []any{
			map[string]any{"name": "Jan", "revenue": 100, "expenses": 60},
			map[string]any{"name": "Feb", "revenue": 150, "expenses": 70},
		},
		"series": []any{
			map[string]any{"data_key": "revenue", "label": "Revenue"},
			map[string]any{"dataKey": "expenses", "label": "Expenses", "color": "#EF4444"},
		},
	})

	data, err := provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)
	series, ok := data["series"].([]ChartSeries)
	require.True(t, ok)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{60, 70}, series[1].Values)
	assert.Equal(t, "#EF4444", series[1].Color)
}

func TestEChartsProviderRequiresRows(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartBar)
	_, err := provider.Fetch(context.Background(), sampleChartContext("bizdash.widget.bar_chart", map[string]any{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows")
}

func TestEChartsProviderInvalidType(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider("bubble")
	ctx := sampleChartContext("bizdash.widget.bar_chart", map[string]any{
		"rows": []map[string]any{{"name": "A", "value": 1}},
	})

	_, err := provider.Fetch(context.Background(), ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestEChartsProviderUsesCache(t *testing.T) {
	t.Parallel()
	cache := &countingCache{}
	provider := NewEChartsProvider(ChartBar, WithChartCache(cache))
	ctx := sampleChartContext("bizdash.widget.bar_chart", map[string]any{
		"title": "Cached",
		"rows":  []map[string]any{{"name": "A", "value": 1}},
	})

	_, err := provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)
	_, err = provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.calls))
}

func TestEChartsProviderThemeOverride(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartBar, WithChartThemeResolver(func(ViewerContext) string {
		return types.ThemeWalden
	}))
	ctx := sampleChartContext("bizdash.widget.bar_chart", map[string]any{
		"rows":  []map[string]any{{"name": "A", "value": 5}},
		"theme": "wonderland",
	})

	data, err := provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)
	assert.Equal(t, "wonderland", data["theme"])

	delete(ctx.Instance.Configuration, "theme")
	data, err = provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)
	assert.Equal(t, types.ThemeWalden, data["theme"])
}

func TestEChartsProviderTranslatesLabels(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartPie)
	ctx := sampleChartContext("bizdash.widget.pie_chart", map[string]any{
		"rows": []map[string]any{{"name": "Card", "value": 3}},
	})
	ctx.Viewer.Locale = "es"
	ctx.Translator = NewStaticTranslator(map[string]map[string]string{
		"es": {
			"Card": "Tarjeta",
			"bizdash.widget.bizdash.widget.pie_chart.title": "Gráfico",
		},
	})

	view, err := provider.Chart(context.Background(), ctx, ChartSpec{
		Rows: []map[string]any{{"name": "Card", "value": 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tarjeta"}, view.Config.Categories)
	assert.True(t, view.HasData)

	data, err := provider.Fetch(context.Background(), ctx)
	require.NoError(t, err)
	assert.Equal(t, "Gráfico", data["title"])
}

func TestEChartsProviderAssetsHost(t *testing.T) {
	t.Parallel()
	provider := NewEChartsProvider(ChartBar, WithChartAssetsHost("https://cdn.example.com/echarts/"))
	view, err := provider.Chart(context.Background(), sampleChartContext("x", nil), ChartSpec{
		Rows: []map[string]any{{"name": "A", "value": 1}},
	})
	require.NoError(t, err)
	assert.Contains(t, view.HTML, "https://cdn.example.com/echarts/")
}

func sampleChartContext(definition string, cfg map[string]any) WidgetContext {
	return WidgetContext{
		Instance: WidgetInstance{
			ID:            definition + "-instance",
			DefinitionID:  definition,
			Configuration: cfg,
		},
		Viewer: ViewerContext{UserID: "tester", Locale: "en"},
	}
}

func html(data WidgetData) string {
	val, _ := data["chart_html"].(string)
	return strings.ToLower(val)
}

type countingCache struct {
	calls int32
	value string
}

func (c *countingCache) GetOrRender(_ context.Context, _ string, render func() (string, error)) (string, error) {
	if c.value != "" {
		return c.value, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	atomic.AddInt32(&c.calls, 1)
	c.value = html
	return html, nil
}

func BenchmarkEChartsBarChartCached(b *testing.B) {
	cache := NewChartCache(5 * time.Minute)
	provider := NewEChartsProvider(ChartBar, WithChartCache(cache))
	ctx := sampleChartContext("bizdash.widget.bar_chart", map[string]any{
		"title": "Cached Benchmark",
		"rows": []map[string]any{
			{"name": "A", "value": 10},
			{"name": "B", "value": 20},
		},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := provider.Fetch(context.Background(), ctx); err != nil {
			b.Fatal(err)
		}
	}
}
