package dashboard

import (
	"fmt"
	"sort"
	"sync"
)

// WidgetHook lets packages register widgets/providers during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// WidgetManifest pairs a definition with its provider for programmatic registration.
type WidgetManifest struct {
	Definition WidgetDefinition
	Provider   Provider
}

// PageLayout lists the widgets shown next to a page's main content.
type PageLayout struct {
	Page    PageCode         `json:"page" yaml:"page"`
	Widgets []WidgetInstance `json:"widgets" yaml:"widgets"`
}

var defaultLayouts = []PageLayout{
	{Page: PageMarketing, Widgets: []WidgetInstance{{ID: "marketing-alerts", DefinitionID: WidgetAlerts, Configuration: map[string]any{"limit": 5}}}},
	{Page: PageFinance, Widgets: []WidgetInstance{{ID: "finance-payments", DefinitionID: WidgetPaymentMetrics}}},
	{Page: PageSales},
	{Page: PageCrossAnalysis, Widgets: []WidgetInstance{{ID: "cross-alerts", DefinitionID: WidgetAlerts, Configuration: map[string]any{"limit": 5}}}},
}

// Registry implements ProviderRegistry with hook, manifest and layout support.
type Registry struct {
	mu           sync.RWMutex
	definitions  map[string]WidgetDefinition
	providers    map[string]Provider
	manifestMeta map[string]ManifestProvider
	layouts      map[PageCode]PageLayout
}

// NewRegistry builds a registry holding the built-in definitions and
// layouts, then applies global hooks. Page providers need a DataSource and
// are attached with RegisterPageProviders.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions:  map[string]WidgetDefinition{},
		providers:    map[string]Provider{},
		manifestMeta: map[string]ManifestProvider{},
		layouts:      map[PageCode]PageLayout{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultWidgetDefinitions() {
		_ = r.RegisterDefinition(def)
	}
	for _, layout := range defaultLayouts {
		r.SetLayout(layout)
	}
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// LoadManifest registers definitions/providers from programmatic manifests.
func (r *Registry) LoadManifest(items []WidgetManifest) error {
	for _, item := range items {
		if err := r.RegisterDefinition(item.Definition); err != nil {
			return err
		}
		if item.Provider != nil {
			if err := r.RegisterProvider(item.Definition.Code, item.Provider); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	def.normalizeLocalizedFields()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if code == "" {
		return fmt.Errorf("dashboard: widget definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("dashboard: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("dashboard: widget definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a widget definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a widget provider by code.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// ProviderMetadata returns any manifest metadata registered for a widget.
func (r *Registry) ProviderMetadata(code string) (ManifestProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifestMeta[code]
	return meta, ok
}

// Definitions returns all registered definitions ordered by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// SetLayout replaces the widget layout of a page.
func (r *Registry) SetLayout(layout PageLayout) {
	widgets := make([]WidgetInstance, len(layout.Widgets))
	copy(widgets, layout.Widgets)
	layout.Widgets = widgets
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[layout.Page] = layout
}

// Layout returns the widget layout of a page.
func (r *Registry) Layout(page PageCode) (PageLayout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	layout, ok := r.layouts[page]
	if !ok {
		return PageLayout{}, false
	}
	widgets := make([]WidgetInstance, len(layout.Widgets))
	copy(widgets, layout.Widgets)
	layout.Widgets = widgets
	return layout, true
}

func (r *Registry) recordProviderMetadata(code string, meta ManifestProvider) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifestMeta[code] = meta
}
