package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// PageCode identifies one of the dashboard pages.
type PageCode string

const (
	PageMarketing     PageCode = "marketing"
	PageFinance       PageCode = "finance"
	PageSales         PageCode = "sales"
	PageCrossAnalysis PageCode = "cross_analysis"
)

// Pages lists the dashboard pages in navigation order.
func Pages() []PageCode {
	return []PageCode{PageMarketing, PageFinance, PageSales, PageCrossAnalysis}
}

// ErrUnknownPage is returned for page codes outside Pages().
var ErrUnknownPage = errors.New("dashboard: unknown page")

// ParsePage resolves a page code, accepting "cross-analysis" style aliases.
func ParsePage(raw string) (PageCode, error) {
	code := PageCode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	for _, page := range Pages() {
		if page == code {
			return page, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, raw)
}

// DefinitionCode returns the registry code backing the page.
func (p PageCode) DefinitionCode() string {
	return "bizdash.page." + string(p)
}

// ProviderRegistry stores page/widget definitions and their providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (SSE/WebSocket/pub-sub) about page changes.
type RefreshHook interface {
	PageUpdated(ctx context.Context, event PageEvent) error
}

// WidgetDefinition describes a page or widget and the schema of its configuration.
type WidgetDefinition struct {
	Code                 string            `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a configured definition ready to be fetched.
type WidgetInstance struct {
	ID            string         `json:"id" yaml:"id"`
	DefinitionID  string         `json:"definition_id" yaml:"definition_id"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ViewerContext captures the active user, locale and display currency.
type ViewerContext struct {
	UserID   string   `json:"user_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Locale   string   `json:"locale,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Event kinds published through RefreshHook.
const (
	EventPageLoaded   = "page.loaded"
	EventPageRefresh  = "page.refresh"
	EventAlertAction  = "alert.action"
	EventChatMessage  = "chat.message"
	EventRangeChanged = "range.changed"
)

// PageEvent describes changes that transports might care about.
type PageEvent struct {
	Kind       string             `json:"kind"`
	Page       PageCode           `json:"page,omitempty"`
	Range      daterange.Selector `json:"range,omitempty"`
	ViewerID   string             `json:"viewer_id,omitempty"`
	Payload    map[string]any     `json:"payload,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}
