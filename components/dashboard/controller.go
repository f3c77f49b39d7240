package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// DefaultPageTemplate is rendered when ControllerOptions.Template is empty.
const DefaultPageTemplate = "page.html"

// PageLoader is the subset of Service used by the controller.
type PageLoader interface {
	LoadPage(ctx context.Context, req PageRequest) (PageView, error)
	Pages(ctx context.Context, locale string) []PageSummary
}

// ControllerOptions configures the dashboard controller.
type ControllerOptions struct {
	Service    PageLoader
	Renderer   Renderer
	Template   string
	Translator TranslationService
}

// Controller turns page loads into template payloads and HTML.
type Controller struct {
	service    PageLoader
	renderer   Renderer
	template   string
	translator TranslationService
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	tpl := opts.Template
	if tpl == "" {
		tpl = DefaultPageTemplate
	}
	return &Controller{
		service:    opts.Service,
		renderer:   opts.Renderer,
		template:   tpl,
		translator: opts.Translator,
	}
}

// RangeOption is one entry of the date-range picker.
type RangeOption struct {
	ID       daterange.Selector `json:"id"`
	Label    string             `json:"label"`
	Selected bool               `json:"selected"`
}

// RangeOptions lists every selector with its localized label.
func RangeOptions(ctx context.Context, tr TranslationService, locale string, selected daterange.Selector) []RangeOption {
	selectors := daterange.Selectors()
	out := make([]RangeOption, len(selectors))
	for i, sel := range selectors {
		out[i] = RangeOption{
			ID:       sel,
			Label:    translateOrFallback(ctx, tr, sel.TranslationKey(), locale, sel.Label(), nil),
			Selected: sel == selected,
		}
	}
	return out
}

// Page loads a page for the request. A superseded load is not an error for
// the caller that asked for it: its own view is returned.
func (c *Controller) Page(ctx context.Context, req PageRequest) (PageView, error) {
	if c.service == nil {
		return PageView{}, fmt.Errorf("dashboard: controller has no service")
	}
	view, err := c.service.LoadPage(ctx, req)
	if err != nil && !errors.Is(err, ErrStaleResponse) {
		return PageView{}, err
	}
	return view, nil
}

// Payload builds the template/JSON payload of a page.
func (c *Controller) Payload(ctx context.Context, req PageRequest) (map[string]any, error) {
	view, err := c.Page(ctx, req)
	if err != nil {
		return nil, err
	}
	locale := req.Viewer.Locale
	return map[string]any{
		"page":   view,
		"pages":  c.service.Pages(ctx, locale),
		"ranges": RangeOptions(ctx, c.translator, locale, view.Selector),
		"viewer": req.Viewer,
	}, nil
}

// RenderTemplate renders the page template into out.
func (c *Controller) RenderTemplate(ctx context.Context, req PageRequest, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("dashboard: controller has no renderer")
	}
	payload, err := c.Payload(ctx, req)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(c.template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.template, err)
	}
	return nil
}
