package dashboard

import (
	"context"
	"strconv"
)

// PageState is the render state of a page.
type PageState string

const (
	PageStateLoading PageState = "loading"
	PageStateReady   PageState = "ready"
	PageStateEmpty   PageState = "empty"
	PageStateError   PageState = "error"
)

// PageChart is one chart slot on a page. Slots without data keep an empty
// HTML and render the no-data placeholder.
type PageChart struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	HasData bool        `json:"has_data"`
	Spec    ChartSpec   `json:"-"`
	Config  ChartConfig `json:"config"`
	HTML    string      `json:"html,omitempty"`
}

// TableView is a formatted table.
type TableView struct {
	Key     string     `json:"key"`
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Badges  []Badge    `json:"badges,omitempty"`
}

// TableLine is a table row paired with its badge, if any.
type TableLine struct {
	Cells []string
	Badge *Badge
}

// Lines pairs each row with the badge at the same index.
func (t TableView) Lines() []TableLine {
	lines := make([]TableLine, len(t.Rows))
	for i, row := range t.Rows {
		lines[i].Cells = row
		if i < len(t.Badges) {
			badge := t.Badges[i]
			lines[i].Badge = &badge
		}
	}
	return lines
}

// PageContent is the display-ready form of a page bundle.
type PageContent struct {
	Title      string              `json:"title"`
	RangeLabel string              `json:"range_label"`
	Currency   string              `json:"currency"`
	Cards      []CardView          `json:"cards,omitempty"`
	Categories []CategoryCardView  `json:"categories,omitempty"`
	Charts     []PageChart         `json:"charts,omitempty"`
	Tables     []TableView         `json:"tables,omitempty"`
	Payments   *PaymentMetricsView `json:"payments,omitempty"`
	Totals     any                 `json:"totals,omitempty"`
	HasData    bool                `json:"has_data"`
}

// Chart returns the chart slot with key.
func (p PageContent) Chart(key string) (PageChart, bool) {
	for _, c := range p.Charts {
		if c.Key == key {
			return c, true
		}
	}
	return PageChart{}, false
}

// Table returns the table with key.
func (p PageContent) Table(key string) (TableView, bool) {
	for _, t := range p.Tables {
		if t.Key == key {
			return t, true
		}
	}
	return TableView{}, false
}

// PageInput carries what every page builder needs besides its bundle.
type PageInput struct {
	Config     PageConfig
	Viewer     ViewerContext
	RangeLabel string
	Translator TranslationService
}

type labeler struct {
	ctx    context.Context
	tr     TranslationService
	locale string
}

func newLabeler(ctx context.Context, in PageInput) labeler {
	if ctx == nil {
		ctx = context.Background()
	}
	return labeler{ctx: ctx, tr: in.Translator, locale: in.Viewer.Locale}
}

func (l labeler) text(key, fallback string) string {
	if l.tr == nil {
		return fallback
	}
	return translateOrFallback(l.ctx, l.tr, "bizdash."+key, l.locale, fallback, nil)
}

// renderCharts draws every chart slot that has data.
func renderCharts(ctx context.Context, charts *EChartsProvider, meta WidgetContext, content *PageContent) error {
	for i := range content.Charts {
		slot := &content.Charts[i]
		if !slot.HasData {
			continue
		}
		view, err := charts.Chart(ctx, meta, slot.Spec)
		if err != nil {
			return err
		}
		slot.Config = view.Config
		slot.HTML = view.HTML
	}
	return nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
