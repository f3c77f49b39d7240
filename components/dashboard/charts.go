package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ChartType selects the chart adapter.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// ChartLayout orients bar charts.
type ChartLayout string

const (
	LayoutVertical   ChartLayout = "vertical"
	LayoutHorizontal ChartLayout = "horizontal"
)

const (
	// DefaultAxisKey is the row field used for category labels.
	DefaultAxisKey = "name"
	// DefaultValueKey is the row field plotted when no series is given.
	DefaultValueKey = "value"
	// DefaultSeriesLabel names the substituted default series.
	DefaultSeriesLabel = "Value"
	// DefaultSeriesColor colors the substituted default series.
	DefaultSeriesColor = "#4F46E5"

	defaultChartHeight = "360px"
	defaultChartWidth  = "100%"
)

// DefaultPalette colors series that do not set their own color, in order.
var DefaultPalette = []string{
	DefaultSeriesColor,
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#3B82F6",
	"#8B5CF6",
	"#EC4899",
	"#14B8A6",
}

// SeriesSpec describes one plotted line or bar.
type SeriesSpec struct {
	DataKey string `json:"dataKey" yaml:"data_key"`
	Label   string `json:"label" yaml:"label"`
	Color   string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ChartSpec is the generic input of every chart adapter. Zero fields take
// their documented defaults: one "value" series, the "name" axis key,
// vertical layout, a 360px height and the Westeros theme.
type ChartSpec struct {
	Type       ChartType        `json:"type"`
	Title      string           `json:"title,omitempty"`
	Subtitle   string           `json:"subtitle,omitempty"`
	Rows       []map[string]any `json:"rows"`
	Series     []SeriesSpec     `json:"series,omitempty"`
	AxisKey    string           `json:"axis_key,omitempty"`
	Layout     ChartLayout      `json:"layout,omitempty"`
	Height     string           `json:"height,omitempty"`
	Theme      string           `json:"theme,omitempty"`
	AssetsHost string           `json:"-"`
}

// ChartSeries is a resolved series with its values extracted from the rows.
type ChartSeries struct {
	Name   string    `json:"name"`
	Key    string    `json:"key"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// ChartConfig is the fully resolved chart, with every default applied.
type ChartConfig struct {
	Type       ChartType     `json:"type"`
	Title      string        `json:"title,omitempty"`
	Subtitle   string        `json:"subtitle,omitempty"`
	Layout     ChartLayout   `json:"layout"`
	AxisKey    string        `json:"axis_key"`
	Categories []string      `json:"categories"`
	Series     []ChartSeries `json:"series"`
	Tooltip    string        `json:"tooltip"`
	Height     string        `json:"height"`
	Theme      string        `json:"theme"`
	AssetsHost string        `json:"-"`
}

// ResolveChart applies defaults to spec and extracts the plotted values.
func ResolveChart(spec ChartSpec) (ChartConfig, error) {
	chartType := ChartType(strings.ToLower(strings.TrimSpace(string(spec.Type))))
	switch chartType {
	case ChartBar, ChartLine, ChartPie:
	case "":
		chartType = ChartBar
	default:
		return ChartConfig{}, fmt.Errorf("dashboard: unsupported chart type: %s", spec.Type)
	}

	cfg := ChartConfig{
		Type:       chartType,
		Title:      spec.Title,
		Subtitle:   spec.Subtitle,
		Layout:     LayoutVertical,
		AxisKey:    spec.AxisKey,
		Tooltip:    "axis",
		Height:     spec.Height,
		Theme:      spec.Theme,
		AssetsHost: spec.AssetsHost,
	}
	if cfg.AxisKey == "" {
		cfg.AxisKey = DefaultAxisKey
	}
	if chartType == ChartBar && ChartLayout(strings.ToLower(string(spec.Layout))) == LayoutHorizontal {
		cfg.Layout = LayoutHorizontal
	}
	if chartType == ChartPie {
		cfg.Tooltip = "item"
	}
	if cfg.Height == "" {
		cfg.Height = defaultChartHeight
	}
	if cfg.Theme == "" {
		cfg.Theme = types.ThemeWesteros
	}

	cfg.Categories = make([]string, len(spec.Rows))
	for i, row := range spec.Rows {
		cfg.Categories[i] = stringValue(row[cfg.AxisKey], fmt.Sprintf("Item %d", i+1))
	}

	for i, s := range normalizeSeries(spec.Series) {
		values := make([]float64, len(spec.Rows))
		for j, row := range spec.Rows {
			values[j] = float64Value(row[s.DataKey])
		}
		color := s.Color
		if color == "" {
			color = DefaultPalette[i%len(DefaultPalette)]
		}
		cfg.Series = append(cfg.Series, ChartSeries{
			Name:   s.Label,
			Key:    s.DataKey,
			Color:  color,
			Values: values,
		})
	}
	return cfg, nil
}

func normalizeSeries(specs []SeriesSpec) []SeriesSpec {
	if len(specs) == 0 {
		return []SeriesSpec{{DataKey: DefaultValueKey, Label: DefaultSeriesLabel, Color: DefaultSeriesColor}}
	}
	out := make([]SeriesSpec, 0, len(specs))
	for _, s := range specs {
		if s.DataKey == "" {
			s.DataKey = DefaultValueKey
		}
		if s.Label == "" {
			s.Label = s.DataKey
		}
		out = append(out, s)
	}
	return out
}

// RenderChart resolves spec and renders it to go-echarts HTML.
func RenderChart(spec ChartSpec) (ChartConfig, string, error) {
	cfg, err := ResolveChart(spec)
	if err != nil {
		return ChartConfig{}, "", err
	}
	html, err := cfg.Render()
	if err != nil {
		return ChartConfig{}, "", err
	}
	return cfg, html, nil
}

// Render draws the resolved chart.
func (c ChartConfig) Render() (string, error) {
	switch c.Type {
	case ChartBar:
		return c.renderBar()
	case ChartLine:
		return c.renderLine()
	case ChartPie:
		return c.renderPie()
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", c.Type)
	}
}

func (c ChartConfig) renderBar() (string, error) {
	bar := charts.NewBar()
	global := c.globalOptions()
	if c.Layout == LayoutHorizontal {
		global = append(global,
			charts.WithXAxisOpts(opts.XAxis{Type: "value"}),
			charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
		)
	}
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(c.Categories)
	for _, s := range c.Series {
		bar.AddSeries(s.Name, toBarData(c.Categories, s.Values), charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	if c.Layout == LayoutHorizontal {
		bar.XYReversal()
	}
	return renderChart(bar)
}

func (c ChartConfig) renderLine() (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(c.globalOptions()...)
	line.SetXAxis(c.Categories)
	for _, s := range c.Series {
		line.AddSeries(s.Name, toLineData(c.Categories, s.Values),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}
	return renderChart(line)
}

// renderPie plots the first series; each slice takes a palette color.
func (c ChartConfig) renderPie() (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOptions()...)
	if len(c.Series) > 0 {
		s := c.Series[0]
		pie.AddSeries(s.Name, toPieData(c.Categories, s.Values))
	}
	return renderChart(pie)
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  c.Theme,
		Width:  defaultChartWidth,
		Height: c.Height,
	}
	if c.AssetsHost != "" {
		initOpts.AssetsHost = c.AssetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: c.Title, Subtitle: c.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(c.Series) > 1 || c.Type == ChartPie)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: c.Tooltip}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, value := range values {
		data[i] = opts.BarData{Name: labels[i], Value: value}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, value := range values {
		data[i] = opts.LineData{Name: labels[i], Value: value}
	}
	return data
}

func toPieData(labels []string, values []float64) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, value := range values {
		data[i] = opts.PieData{
			Name:      labels[i],
			Value:     value,
			ItemStyle: &opts.ItemStyle{Color: DefaultPalette[i%len(DefaultPalette)]},
		}
	}
	return data
}
