package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

func newTestRenderer() *Renderer {
	return NewRenderer(RendererOptions{Now: func() time.Time { return sessionNow.Add(3 * time.Hour) }})
}

func TestRenderMarkdown(t *testing.T) {
	out, err := newTestRenderer().Markdown("Revenue is **up** ~~down~~\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<strong>up</strong>")
	assert.Contains(t, html, "<del>down</del>")
	assert.Contains(t, html, "<table>")
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out, err := newTestRenderer().Markdown("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
}

func TestRenderMarkdownPreservesMath(t *testing.T) {
	out, err := newTestRenderer().Markdown("ROAS is $\\frac{r}{s}$ and\n\n$$a_1 * b_2 < c$$")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<span class="math math-inline">$\frac{r}{s}$</span>`)
	assert.Contains(t, html, `<span class="math math-display">$$a_1 * b_2 &lt; c$$</span>`)
	assert.NotContains(t, html, "<em>")
}

func TestRenderMarkdownLeavesPricesAlone(t *testing.T) {
	out, err := newTestRenderer().Markdown("costs $5 and $ 10")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "math")
}

func TestRenderMarkdownCurrencyRangeIsText(t *testing.T) {
	out, err := newTestRenderer().Markdown("Budget range is $100-$200")
	require.NoError(t, err)
	html := string(out)
	assert.NotContains(t, html, "math")
	assert.Contains(t, html, "Budget range is $100-$200")
}

func TestRenderMarkdownSkipsMathInCode(t *testing.T) {
	out, err := newTestRenderer().Markdown("Use `$x$` literally, then $y$ and \\$z$")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<code>$x$</code>")
	assert.Contains(t, html, `<span class="math math-inline">$y$</span>`)
	assert.Equal(t, 1, strings.Count(html, "math-inline"))
}

func TestRenderMessageAttachments(t *testing.T) {
	msg := Message{
		ID:        "m1",
		Sender:    SenderAssistant,
		Text:      "Here you go",
		Timestamp: sessionNow,
		Chart: &ChartAttachment{
			Type:  dashboard.ChartBar,
			Title: "Revenue",
			Data:  []map[string]any{{"name": "Jan", "value": 10.0}, {"name": "Feb", "value": 12.0}},
		},
		Table: &TableAttachment{
			Headers: []string{"name", "value"},
			Rows:    []any{[]any{"Jan", 10.0}, map[string]any{"name": "Feb"}},
		},
		Suggestions: []string{"Break down by channel"},
	}
	out, err := newTestRenderer().Render(msg)
	require.NoError(t, err)

	assert.Equal(t, "15:30", out.Time)
	assert.Equal(t, "3 hours ago", out.Relative)
	assert.Equal(t, []string{"Break down by channel"}, out.Suggestions)

	require.NotNil(t, out.Chart)
	assert.Empty(t, out.Chart.Error)
	assert.True(t, strings.Contains(string(out.Chart.HTML), "echarts"))
	require.Len(t, out.Chart.Config.Series, 1)

	require.NotNil(t, out.Table)
	assert.Equal(t, [][]string{{"Jan", "10"}, {"Feb", "-"}}, out.Table.Rows)
}

func TestRenderChartErrorIsReported(t *testing.T) {
	out, err := newTestRenderer().Render(Message{Chart: &ChartAttachment{Type: "radar"}})
	require.NoError(t, err)
	require.NotNil(t, out.Chart)
	assert.NotEmpty(t, out.Chart.Error)
	assert.Equal(t, "-", out.Time)
}

func TestNormalizeTableDerivesHeaders(t *testing.T) {
	table := NormalizeTable(TableAttachment{Rows: []any{
		map[string]any{"b": 2, "a": "x"},
		map[string]any{"c": nil},
	}})
	assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
	assert.Equal(t, [][]string{{"x", "2", "-"}, {"-", "-", "-"}}, table.Rows)
}
