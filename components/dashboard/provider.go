package dashboard

import (
	"context"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// Provider fetches data required to render a page or widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext contains the metadata needed by providers.
type WidgetContext struct {
	Instance   WidgetInstance
	Viewer     ViewerContext
	Range      daterange.Range
	Translator TranslationService
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any
