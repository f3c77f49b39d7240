package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/daterange"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
}

func newTestService(t *testing.T, source DataSource, opts Options) *Service {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterProviders(reg, Sources{Data: source, Now: fixedNow}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	opts.Providers = reg
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return NewService(opts)
}

func TestLoadPageReady(t *testing.T) {
	source := &stubSource{marketing: MarketingBundle{
		Campaigns: []Campaign{{Name: "A", Spend: 100, Clicks: 4}},
	}}
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := newTestService(t, source, Options{RefreshHook: hook, Telemetry: telemetry})

	view, err := service.LoadPage(context.Background(), PageRequest{
		Viewer: ViewerContext{UserID: "user-1"},
		Page:   "marketing",
		Range:  "last_7_days",
	})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if view.State != PageStateReady {
		t.Fatalf("expected ready state, got %s (%s)", view.State, view.Error)
	}
	if view.Content == nil || !view.Content.HasData {
		t.Fatalf("expected page content")
	}
	if view.Selector != daterange.Last7Days {
		t.Fatalf("expected last_7_days, got %s", view.Selector)
	}
	if view.ISO.EndDate != "2025-03-12T23:59:59.999Z" {
		t.Fatalf("unexpected range end %s", view.ISO.EndDate)
	}
	if hook.count(EventPageLoaded) != 1 {
		t.Fatalf("expected page loaded event, got %#v", hook.events)
	}
	if telemetry.calls == 0 {
		t.Fatalf("expected telemetry recorded")
	}
	current, ok := service.CurrentPage(ViewerContext{UserID: "user-1"}, PageMarketing)
	if !ok || current.Generation != view.Generation {
		t.Fatalf("expected committed view, got %#v", current)
	}
}

func TestLoadPageDegradesFetchErrors(t *testing.T) {
	source := &stubSource{err: errors.New("backend down")}
	telemetry := &testTelemetry{}
	service := newTestService(t, source, Options{Telemetry: telemetry})

	view, err := service.LoadPage(context.Background(), PageRequest{Page: "finance"})
	if err != nil {
		t.Fatalf("fetch failures must not surface, got %v", err)
	}
	if view.State != PageStateError {
		t.Fatalf("expected error state, got %s", view.State)
	}
	if view.Error == "" || view.Content != nil {
		t.Fatalf("expected error message without content, got %#v", view)
	}
	if !telemetry.has("bizdash.page.error") {
		t.Fatalf("expected error telemetry, got %v", telemetry.events)
	}
	for _, widget := range view.Widgets {
		if widget.State != PageStateError {
			t.Fatalf("expected widget %s to degrade, got %s", widget.Instance.ID, widget.State)
		}
	}
}

func TestLoadPageEmpty(t *testing.T) {
	service := newTestService(t, &stubSource{}, Options{})
	view, err := service.LoadPage(context.Background(), PageRequest{Page: "sales"})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if view.State != PageStateEmpty {
		t.Fatalf("expected empty state, got %s", view.State)
	}
}

func TestLoadPageUnknownPage(t *testing.T) {
	service := newTestService(t, &stubSource{}, Options{})
	_, err := service.LoadPage(context.Background(), PageRequest{Page: "inventory"})
	if !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestLoadPageValidatesConfiguration(t *testing.T) {
	service := newTestService(t, &stubSource{}, Options{})
	_, err := service.LoadPage(context.Background(), PageRequest{
		Page:          "marketing",
		Configuration: map[string]any{"top_n": "ten"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadPageUsesSavedRange(t *testing.T) {
	source := &stubSource{}
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "user-2"}
	if err := prefs.SavePreferences(context.Background(), viewer, ViewerPreferences{Range: daterange.ThisMonth}); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	service := newTestService(t, source, Options{PreferenceStore: prefs})

	view, err := service.LoadPage(context.Background(), PageRequest{Viewer: viewer, Page: "sales", Range: "bogus"})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if view.Selector != daterange.ThisMonth {
		t.Fatalf("expected saved range, got %s", view.Selector)
	}
	if len(source.calls) == 0 || source.calls[0] != daterange.ThisMonth {
		t.Fatalf("expected source called with saved range, got %v", source.calls)
	}
}

func TestLoadPageDefaultRange(t *testing.T) {
	service := newTestService(t, &stubSource{}, Options{})
	view, err := service.LoadPage(context.Background(), PageRequest{Page: "sales"})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if view.Selector != daterange.DefaultRange {
		t.Fatalf("expected default range, got %s", view.Selector)
	}
}

func TestLoadPageConfiguredDefaultRange(t *testing.T) {
	prefs := NewInMemoryPreferenceStore()
	saver := ViewerContext{UserID: "user-3"}
	if err := prefs.SavePreferences(context.Background(), saver, ViewerPreferences{Range: daterange.ThisYear}); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	service := newTestService(t, &stubSource{}, Options{PreferenceStore: prefs, DefaultRange: daterange.Last7Days})

	cases := []struct {
		name   string
		req    PageRequest
		expect daterange.Selector
	}{
		{"request wins", PageRequest{Viewer: saver, Page: "sales", Range: "today"}, daterange.Today},
		{"saved preference", PageRequest{Viewer: saver, Page: "sales"}, daterange.ThisYear},
		{"configured default", PageRequest{Viewer: ViewerContext{UserID: "user-4"}, Page: "sales"}, daterange.Last7Days},
		{"anonymous", PageRequest{Page: "sales", Range: "bogus"}, daterange.Last7Days},
	}
	for _, tc := range cases {
		view, err := service.LoadPage(context.Background(), tc.req)
		if err != nil {
			t.Fatalf("%s: LoadPage returned error: %v", tc.name, err)
		}
		if view.Selector != tc.expect {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expect, view.Selector)
		}
	}
}

func TestLoadPageResolvesLayoutWidgets(t *testing.T) {
	reg := NewRegistry()
	source := &stubSource{}
	alertSource := alertSourceFunc(func(context.Context, daterange.Selector) ([]alerts.Alert, error) {
		return []alerts.Alert{
			{ID: "a1", Title: "Low stock", Severity: "low", Status: "open", CreatedAt: fixedNow().Add(-time.Hour)},
			{ID: "a2", Title: "Budget", Severity: "critical", Status: "open", CreatedAt: fixedNow().Add(-2 * time.Hour)},
		}, nil
	})
	if err := RegisterProviders(reg, Sources{Data: source, Alerts: alertSource, Now: fixedNow}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	service := NewService(Options{Providers: reg, Now: fixedNow})

	view, err := service.LoadPage(context.Background(), PageRequest{Page: "marketing"})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if len(view.Widgets) != 1 {
		t.Fatalf("expected alerts widget, got %#v", view.Widgets)
	}
	widget := view.Widgets[0]
	if widget.State != PageStateReady {
		t.Fatalf("expected ready widget, got %s (%s)", widget.State, widget.Error)
	}
	list, _ := widget.Data["alerts"].([]alerts.View)
	if len(list) != 2 || list[0].ID != "a2" {
		t.Fatalf("expected critical alert first, got %#v", list)
	}
}

func TestLoadPageHonorsHiddenWidgets(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterProviders(reg, Sources{Data: &stubSource{}}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "user-3"}
	_ = prefs.SavePreferences(context.Background(), viewer, ViewerPreferences{
		HiddenWidgets: map[string]bool{"finance-payments": true},
	})
	service := NewService(Options{Providers: reg, PreferenceStore: prefs})

	view, err := service.LoadPage(context.Background(), PageRequest{Viewer: viewer, Page: "finance"})
	if err != nil {
		t.Fatalf("LoadPage returned error: %v", err)
	}
	if len(view.Widgets) != 0 {
		t.Fatalf("expected hidden widget filtered, got %#v", view.Widgets)
	}
}

func TestLoadPageRejectsStaleResponses(t *testing.T) {
	gate := make(chan struct{})
	entered := make(chan struct{}, 2)
	var calls int
	var mu sync.Mutex
	reg := NewRegistry()
	_ = reg.RegisterProvider(PageSales.DefinitionCode(), ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			entered <- struct{}{}
			<-gate
		}
		return WidgetData{"page": PageContent{HasData: true}}, nil
	}))
	service := NewService(Options{Providers: reg})
	viewer := ViewerContext{UserID: "user-5"}

	type result struct {
		view PageView
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		view, err := service.LoadPage(context.Background(), PageRequest{Viewer: viewer, Page: "sales", Range: "today"})
		slow <- result{view, err}
	}()
	<-entered

	fresh, err := service.LoadPage(context.Background(), PageRequest{Viewer: viewer, Page: "sales", Range: "yesterday"})
	if err != nil {
		t.Fatalf("fresh load returned error: %v", err)
	}
	close(gate)
	stale := <-slow
	if !errors.Is(stale.err, ErrStaleResponse) {
		t.Fatalf("expected ErrStaleResponse, got %v", stale.err)
	}
	current, ok := service.CurrentPage(viewer, PageSales)
	if !ok || current.Generation != fresh.Generation || current.Selector != daterange.Yesterday {
		t.Fatalf("stale load overwrote state: %#v", current)
	}
}

func TestPagesListsLocalizedTitles(t *testing.T) {
	service := NewService(Options{})
	pages := service.Pages(context.Background(), "es-MX")
	if len(pages) != len(Pages()) {
		t.Fatalf("expected %d pages, got %d", len(Pages()), len(pages))
	}
	if pages[1].Title != "Finanzas" {
		t.Fatalf("expected localized title, got %q", pages[1].Title)
	}
}

func TestNotifyPageUpdatedTelemetry(t *testing.T) {
	hook := &collectingHook{}
	telemetry := &testTelemetry{}
	service := NewService(Options{RefreshHook: hook, Telemetry: telemetry})
	event := PageEvent{Kind: EventPageRefresh, Page: PageFinance}
	if err := service.NotifyPageUpdated(context.Background(), event); err != nil {
		t.Fatalf("NotifyPageUpdated returned error: %v", err)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry recorded event")
	}
	if hook.events[0].OccurredAt.IsZero() {
		t.Fatalf("expected event timestamp")
	}
}

func TestSavePreferencesRequiresUser(t *testing.T) {
	service := NewService(Options{})
	err := service.SavePreferences(context.Background(), ViewerContext{}, ViewerPreferences{})
	if err == nil {
		t.Fatalf("expected error when user missing")
	}
}

func TestSavePreferencesAnnouncesRangeChange(t *testing.T) {
	hook := &collectingHook{}
	service := NewService(Options{RefreshHook: hook})
	viewer := ViewerContext{UserID: "user-4"}
	if err := service.SavePreferences(context.Background(), viewer, ViewerPreferences{Range: daterange.Last90Days}); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	if hook.count(EventRangeChanged) != 1 {
		t.Fatalf("expected range changed event, got %#v", hook.events)
	}
	stored, err := service.Preferences(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Preferences returned error: %v", err)
	}
	if stored.Range != daterange.Last90Days {
		t.Fatalf("expected stored range, got %s", stored.Range)
	}
}

type collectingHook struct {
	mu     sync.Mutex
	events []PageEvent
}

func (h *collectingHook) PageUpdated(_ context.Context, event PageEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *collectingHook) count(kind string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

var _ RefreshHook = (*collectingHook)(nil)

type testTelemetry struct {
	mu     sync.Mutex
	calls  int
	events []string
}

func (t *testTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.events = append(t.events, event)
}

func (t *testTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}
