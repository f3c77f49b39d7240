package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/daterange"
)

var errMissingViewer = errors.New("dashboard: viewer context missing user id")

// LayoutSource exposes page layouts. *Registry implements it.
type LayoutSource interface {
	Layout(page PageCode) (PageLayout, bool)
}

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Providers       ProviderRegistry
	Layouts         LayoutSource
	ConfigValidator ConfigValidator
	PreferenceStore PreferenceStore
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	Logger          *zap.Logger
	Store           *PageStore
	Resolver        daterange.Resolver
	// DefaultRange applies when neither the request nor the viewer's saved
	// preferences name a valid range.
	DefaultRange daterange.Selector
	Now          func() time.Time
}

// Service loads dashboard pages and their side widgets.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults. When Layouts is
// nil and Providers is a *Registry, the registry's layouts are used.
func NewService(opts Options) *Service {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.Layouts == nil {
		if layouts, ok := opts.Providers.(LayoutSource); ok {
			opts.Layouts = layouts
		}
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = NewPageStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Resolver.Now == nil {
		opts.Resolver.Now = opts.Now
	}
	if !opts.DefaultRange.Valid() {
		opts.DefaultRange = daterange.DefaultRange
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// PageRequest asks for one page in a date range. Range accepts any selector
// id; empty or unknown ids use the viewer's saved range, then the service
// default.
type PageRequest struct {
	Viewer        ViewerContext
	Page          string
	Range         string
	Configuration map[string]any
}

// WidgetView is a side widget resolved for a page.
type WidgetView struct {
	Instance WidgetInstance `json:"instance"`
	Title    string         `json:"title"`
	State    PageState      `json:"state"`
	Data     WidgetData     `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// PageView is the outcome of a page load. Fetch failures never surface as
// errors here: they set State to PageStateError and keep the message in Error.
type PageView struct {
	Page       PageCode           `json:"page"`
	Title      string             `json:"title"`
	State      PageState          `json:"state"`
	Selector   daterange.Selector `json:"range"`
	Range      daterange.Range    `json:"-"`
	ISO        daterange.ISORange `json:"period"`
	Content    *PageContent       `json:"content,omitempty"`
	Widgets    []WidgetView       `json:"widgets,omitempty"`
	Generation uint64             `json:"generation"`
	Error      string             `json:"error,omitempty"`
	LoadedAt   time.Time          `json:"loaded_at"`
}

// PageSummary describes a page for navigation.
type PageSummary struct {
	Page        PageCode `json:"page"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
}

// LoadPage resolves the range, fetches the page and its layout widgets and
// commits the result to the page store. Only invalid requests and superseded
// loads return an error; a superseded load still returns its view.
func (s *Service) LoadPage(ctx context.Context, req PageRequest) (PageView, error) {
	page, err := ParsePage(req.Page)
	if err != nil {
		return PageView{}, err
	}
	def, ok := s.opts.Providers.Definition(page.DefinitionCode())
	if !ok {
		return PageView{}, fmt.Errorf("dashboard: page definition %s not registered", page.DefinitionCode())
	}
	if err := s.opts.ConfigValidator.Validate(def, req.Configuration); err != nil {
		return PageView{}, err
	}

	viewer := req.Viewer
	prefs := s.preferences(ctx, viewer)
	if viewer.Currency == "" {
		viewer.Currency = prefs.Currency
	}
	if viewer.Locale == "" {
		viewer.Locale = prefs.Locale
	}
	rng := s.resolveRange(req.Range, prefs.Range)

	key := PageKey(viewer.UserID, page)
	gen := s.opts.Store.Begin(key)
	started := s.opts.Now()

	view := PageView{
		Page:       page,
		Title:      translateOrFallback(ctx, s.opts.Translator, def.Code+".title", viewer.Locale, def.NameForLocale(viewer.Locale), nil),
		State:      PageStateLoading,
		Selector:   rng.Selector,
		Range:      rng,
		ISO:        rng.ISO(),
		Generation: gen,
	}

	meta := WidgetContext{
		Instance: WidgetInstance{
			ID:            string(page),
			DefinitionID:  def.Code,
			Configuration: req.Configuration,
		},
		Viewer:     viewer,
		Range:      rng,
		Translator: s.opts.Translator,
	}
	content, err := s.fetchPage(ctx, meta)
	switch {
	case err != nil:
		view.State = PageStateError
		view.Error = err.Error()
		s.opts.Logger.Warn("page fetch failed",
			zap.String("page", string(page)),
			zap.String("range", string(rng.Selector)),
			zap.Error(err),
		)
		s.recordTelemetry(ctx, "bizdash.page.error", map[string]any{
			"page":  string(page),
			"range": string(rng.Selector),
			"error": err.Error(),
		})
	case !content.HasData:
		view.State = PageStateEmpty
		view.Content = &content
	default:
		view.State = PageStateReady
		view.Content = &content
	}
	view.Widgets = s.resolveWidgets(ctx, page, viewer, rng, prefs)
	view.LoadedAt = s.opts.Now()

	if !s.opts.Store.Commit(key, gen, view) {
		s.opts.Logger.Debug("discarding stale page load",
			zap.String("page", string(page)),
			zap.Uint64("generation", gen),
		)
		return view, ErrStaleResponse
	}

	s.recordTelemetry(ctx, "bizdash.page.load", map[string]any{
		"page":        string(page),
		"range":       string(rng.Selector),
		"state":       string(view.State),
		"viewer":      viewer.UserID,
		"duration_ms": view.LoadedAt.Sub(started).Milliseconds(),
	})
	if err := s.opts.RefreshHook.PageUpdated(ctx, PageEvent{
		Kind:       EventPageLoaded,
		Page:       page,
		Range:      rng.Selector,
		ViewerID:   viewer.UserID,
		Payload:    map[string]any{"state": string(view.State), "generation": gen},
		OccurredAt: view.LoadedAt,
	}); err != nil {
		s.opts.Logger.Warn("page event delivery failed", zap.String("page", string(page)), zap.Error(err))
	}
	return view, nil
}

// CurrentPage returns the last committed view of a viewer's page.
func (s *Service) CurrentPage(viewer ViewerContext, page PageCode) (PageView, bool) {
	return s.opts.Store.Current(PageKey(viewer.UserID, page))
}

// Pages lists the registered pages with localized titles.
func (s *Service) Pages(ctx context.Context, locale string) []PageSummary {
	out := make([]PageSummary, 0, len(Pages()))
	for _, page := range Pages() {
		def, ok := s.opts.Providers.Definition(page.DefinitionCode())
		if !ok {
			continue
		}
		out = append(out, PageSummary{
			Page:        page,
			Title:       translateOrFallback(ctx, s.opts.Translator, def.Code+".title", locale, def.NameForLocale(locale), nil),
			Description: def.DescriptionForLocale(locale),
		})
	}
	return out
}

// Preferences returns the viewer's saved preferences.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (ViewerPreferences, error) {
	return s.opts.PreferenceStore.Preferences(ctx, viewer)
}

// SavePreferences persists per-viewer preferences and announces range
// changes.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, prefs ViewerPreferences) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if err := s.opts.PreferenceStore.SavePreferences(ctx, viewer, prefs); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "bizdash.preferences.save", map[string]any{
		"viewer": viewer.UserID,
		"range":  string(prefs.Range),
	})
	if prefs.Range == "" {
		return nil
	}
	return s.NotifyPageUpdated(ctx, PageEvent{
		Kind:     EventRangeChanged,
		Range:    prefs.Range,
		ViewerID: viewer.UserID,
	})
}

// NotifyPageUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyPageUpdated(ctx context.Context, event PageEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.opts.Now()
	}
	if err := s.opts.RefreshHook.PageUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "bizdash.page.event", map[string]any{
		"kind":   event.Kind,
		"page":   string(event.Page),
		"viewer": event.ViewerID,
	})
	return nil
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.opts.Logger
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) preferences(ctx context.Context, viewer ViewerContext) ViewerPreferences {
	prefs, err := s.opts.PreferenceStore.Preferences(ctx, viewer)
	if err != nil {
		s.opts.Logger.Warn("preferences unavailable", zap.String("viewer", viewer.UserID), zap.Error(err))
		prefs = ViewerPreferences{}
		normalizePreferences(&prefs)
	}
	return prefs
}

func (s *Service) resolveRange(requested string, saved daterange.Selector) daterange.Range {
	if sel, ok := daterange.Parse(requested); ok {
		return s.opts.Resolver.Resolve(string(sel))
	}
	if saved.Valid() {
		return s.opts.Resolver.Resolve(string(saved))
	}
	return s.opts.Resolver.Resolve(string(s.opts.DefaultRange))
}

func (s *Service) fetchPage(ctx context.Context, meta WidgetContext) (PageContent, error) {
	provider, ok := s.opts.Providers.Provider(meta.Instance.DefinitionID)
	if !ok || provider == nil {
		return PageContent{}, fmt.Errorf("dashboard: no provider registered for %s", meta.Instance.DefinitionID)
	}
	data, err := provider.Fetch(ctx, meta)
	if err != nil {
		return PageContent{}, err
	}
	content, ok := data["page"].(PageContent)
	if !ok {
		return PageContent{}, fmt.Errorf("dashboard: provider for %s returned no page content", meta.Instance.DefinitionID)
	}
	return content, nil
}

func (s *Service) resolveWidgets(ctx context.Context, page PageCode, viewer ViewerContext, rng daterange.Range, prefs ViewerPreferences) []WidgetView {
	if s.opts.Layouts == nil {
		return nil
	}
	layout, ok := s.opts.Layouts.Layout(page)
	if !ok || len(layout.Widgets) == 0 {
		return nil
	}
	widgets := applyOrderOverride(layout.Widgets, prefs.WidgetOrder[page])
	widgets = applyHiddenFilter(widgets, prefs.HiddenWidgets)

	views := make([]WidgetView, 0, len(widgets))
	for _, inst := range widgets {
		view := WidgetView{Instance: inst, Title: inst.DefinitionID, State: PageStateReady}
		if def, ok := s.opts.Providers.Definition(inst.DefinitionID); ok {
			view.Title = def.NameForLocale(viewer.Locale)
			if err := s.opts.ConfigValidator.Validate(def, inst.Configuration); err != nil {
				views = append(views, s.widgetFailure(ctx, page, view, err))
				continue
			}
		}
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Range:      rng,
			Translator: s.opts.Translator,
		})
		if err != nil {
			views = append(views, s.widgetFailure(ctx, page, view, err))
			continue
		}
		if title, ok := data["title"].(string); ok && title != "" {
			view.Title = title
		}
		if hasData, ok := data["has_data"].(bool); ok && !hasData {
			view.State = PageStateEmpty
		}
		view.Data = data
		views = append(views, view)
	}
	return views
}

func (s *Service) widgetFailure(ctx context.Context, page PageCode, view WidgetView, err error) WidgetView {
	view.State = PageStateError
	view.Error = err.Error()
	s.opts.Logger.Warn("widget fetch failed",
		zap.String("page", string(page)),
		zap.String("widget", view.Instance.ID),
		zap.Error(err),
	)
	s.recordTelemetry(ctx, "bizdash.widget.provider_error", map[string]any{
		"page":          string(page),
		"definition_id": view.Instance.DefinitionID,
		"error":         err.Error(),
	})
	return view
}

type noopRefreshHook struct{}

func (noopRefreshHook) PageUpdated(context.Context, PageEvent) error {
	return nil
}
