package chat

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/format"
)

// TimeLayout is the clock format shown next to each message.
const TimeLayout = "15:04"

// RenderedMessage is a message ready for a template.
type RenderedMessage struct {
	ID          string         `json:"id"`
	Sender      Sender         `json:"sender"`
	HTML        template.HTML  `json:"html"`
	Timestamp   time.Time      `json:"timestamp"`
	Time        string         `json:"time"`
	Relative    string         `json:"relative"`
	Chart       *RenderedChart `json:"chart,omitempty"`
	Table       *RenderedTable `json:"table,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// RenderedChart is a chart attachment rendered to go-echarts markup.
type RenderedChart struct {
	Title  string                `json:"title,omitempty"`
	Config dashboard.ChartConfig `json:"config"`
	HTML   template.HTML         `json:"html"`
	Error  string                `json:"error,omitempty"`
}

// RenderedTable is a table attachment with string cells and a header per
// column.
type RenderedTable struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	AssetsHost string
	Theme      string
	Now        func() time.Time
}

// Renderer turns messages into display HTML.
type Renderer struct {
	md   goldmark.Markdown
	opts RendererOptions
}

// NewRenderer builds a renderer with GitHub-flavored markdown. Raw HTML in
// message text is escaped.
func NewRenderer(opts RendererOptions) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		opts: opts,
	}
}

// Render converts msg. A chart that fails to render is reported on the
// attachment and does not fail the message.
func (r *Renderer) Render(msg Message) (RenderedMessage, error) {
	body, err := r.Markdown(msg.Text)
	if err != nil {
		return RenderedMessage{}, err
	}
	out := RenderedMessage{
		ID:          msg.ID,
		Sender:      msg.Sender,
		HTML:        body,
		Timestamp:   msg.Timestamp,
		Time:        format.Date(msg.Timestamp, TimeLayout),
		Relative:    format.RelativeTimeFrom(msg.Timestamp, r.opts.Now()),
		Suggestions: msg.Suggestions,
	}
	if msg.Chart != nil {
		out.Chart = r.chart(*msg.Chart)
	}
	if msg.Table != nil {
		table := NormalizeTable(*msg.Table)
		out.Table = &table
	}
	return out, nil
}

// RenderAll converts every message in order.
func (r *Renderer) RenderAll(msgs []Message) ([]RenderedMessage, error) {
	out := make([]RenderedMessage, 0, len(msgs))
	for _, msg := range msgs {
		rendered, err := r.Render(msg)
		if err != nil {
			return nil, fmt.Errorf("chat: render message %s: %w", msg.ID, err)
		}
		out = append(out, rendered)
	}
	return out, nil
}

var mathToken = regexp.MustCompile(`BIZDASHMATH(\d+)X`)

type mathSpan struct {
	source  string
	display bool
}

// Markdown renders text to HTML. TeX between $ or $$ delimiters is kept
// verbatim, delimiters included, inside math spans for the client-side
// typesetter. Code spans and escaped dollars are left alone, and an inline
// span only closes on a $ not followed by a digit, so "$100-$200" is text.
func (r *Renderer) Markdown(text string) (template.HTML, error) {
	var spans []mathSpan
	text = extractMath(text, func(src string, display bool) string {
		spans = append(spans, mathSpan{source: src, display: display})
		return "BIZDASHMATH" + strconv.Itoa(len(spans)-1) + "X"
	})

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("chat: render markdown: %w", err)
	}
	out := mathToken.ReplaceAllStringFunc(buf.String(), func(token string) string {
		idx, err := strconv.Atoi(mathToken.FindStringSubmatch(token)[1])
		if err != nil || idx >= len(spans) {
			return token
		}
		span := spans[idx]
		if span.display {
			return `<span class="math math-display">` + html.EscapeString(span.source) + `</span>`
		}
		return `<span class="math math-inline">` + html.EscapeString(span.source) + `</span>`
	})
	return template.HTML(out), nil
}

func extractMath(text string, protect func(src string, display bool) string) string {
	var b strings.Builder
	for i := 0; i < len(text); {
		switch text[i] {
		case '`':
			n := runLength(text, i, '`')
			end := i + n
			if closing := closingRun(text, end, n); closing >= 0 {
				end = closing + n
			}
			b.WriteString(text[i:end])
			i = end
			continue
		case '\\':
			if i+1 < len(text) && text[i+1] == '$' {
				b.WriteString(text[i : i+2])
				i += 2
				continue
			}
		case '$':
			if strings.HasPrefix(text[i:], "$$") {
				if end := strings.Index(text[i+2:], "$$"); end > 0 {
					stop := i + 2 + end + 2
					b.WriteString(protect(text[i:stop], true))
					i = stop
					continue
				}
				b.WriteString("$$")
				i += 2
				continue
			}
			if end := closingDollar(text, i); end > 0 {
				b.WriteString(protect(text[i:end+1], false))
				i = end + 1
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

// closingDollar finds the $ closing an inline span opened at open, or -1.
// The content may not start or end with a space and may not cross a line,
// and the closing $ may not be followed by a digit.
func closingDollar(text string, open int) int {
	if open+1 >= len(text) || isSpace(text[open+1]) {
		return -1
	}
	for j := open + 1; j < len(text); j++ {
		switch text[j] {
		case '\n':
			return -1
		case '\\':
			j++
		case '$':
			if isSpace(text[j-1]) {
				continue
			}
			if j+1 < len(text) && text[j+1] >= '0' && text[j+1] <= '9' {
				continue
			}
			return j
		}
	}
	return -1
}

func closingRun(text string, from, n int) int {
	for j := from; j < len(text); {
		if text[j] != '`' {
			j++
			continue
		}
		m := runLength(text, j, '`')
		if m == n {
			return j
		}
		j += m
	}
	return -1
}

func runLength(text string, from int, c byte) int {
	n := 0
	for from+n < len(text) && text[from+n] == c {
		n++
	}
	return n
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (r *Renderer) chart(att ChartAttachment) *RenderedChart {
	out := &RenderedChart{Title: att.Title}
	cfg, body, err := dashboard.RenderChart(dashboard.ChartSpec{
		Type:       att.Type,
		Title:      att.Title,
		Rows:       att.Data,
		Series:     att.Series,
		AxisKey:    att.XKey,
		Layout:     att.Layout,
		Theme:      r.opts.Theme,
		AssetsHost: r.opts.AssetsHost,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Config = cfg
	out.HTML = template.HTML(body)
	return out
}

// NormalizeTable converts a table attachment into string cells. Object rows
// without headers take their sorted keys as headers; short rows are padded
// with the placeholder.
func NormalizeTable(att TableAttachment) RenderedTable {
	headers := append([]string(nil), att.Headers...)
	if len(headers) == 0 {
		headers = objectKeys(att.Rows)
	}
	rows := make([][]string, 0, len(att.Rows))
	for _, raw := range att.Rows {
		var cells []string
		switch row := raw.(type) {
		case map[string]any:
			cells = make([]string, len(headers))
			for i, h := range headers {
				cells[i] = cellText(row[h])
			}
		case []any:
			cells = make([]string, 0, len(row))
			for _, v := range row {
				cells = append(cells, cellText(v))
			}
		case []string:
			cells = append(cells, row...)
		default:
			cells = []string{cellText(row)}
		}
		for len(cells) < len(headers) {
			cells = append(cells, format.Placeholder)
		}
		rows = append(rows, cells)
	}
	return RenderedTable{Title: att.Title, Headers: headers, Rows: rows}
}

func objectKeys(rows []any) []string {
	seen := map[string]bool{}
	var keys []string
	for _, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return format.Placeholder
	case string:
		if strings.TrimSpace(val) == "" {
			return format.Placeholder
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
