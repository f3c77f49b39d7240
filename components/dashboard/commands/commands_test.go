package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/daterange"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

type stubSource struct {
	err error
}

func (s stubSource) FetchMarketing(context.Context, daterange.Selector) (dashboard.MarketingBundle, error) {
	return dashboard.MarketingBundle{Campaigns: []dashboard.Campaign{{Name: "A", Spend: 10, Clicks: 2}}}, s.err
}

func (s stubSource) FetchFinance(context.Context, daterange.Selector) (dashboard.FinanceBundle, error) {
	return dashboard.FinanceBundle{}, s.err
}

func (s stubSource) FetchSales(context.Context, daterange.Selector) (dashboard.SalesBundle, error) {
	return dashboard.SalesBundle{}, s.err
}

func (s stubSource) FetchCrossAnalysis(context.Context, daterange.Selector) (dashboard.CrossAnalysisBundle, error) {
	return dashboard.CrossAnalysisBundle{}, s.err
}

type stubHook struct {
	events []dashboard.PageEvent
	err    error
}

func (h *stubHook) PageUpdated(_ context.Context, event dashboard.PageEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func (h *stubHook) kinds() []string {
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Kind)
	}
	return out
}

type stubTelemetry struct {
	calls  int
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.calls++
	s.events = append(s.events, event)
}

func newService(t *testing.T, hook dashboard.RefreshHook) *dashboard.Service {
	t.Helper()
	registry := dashboard.NewRegistry()
	if err := dashboard.RegisterProviders(registry, dashboard.Sources{Data: stubSource{}}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	return dashboard.NewService(dashboard.Options{Providers: registry, RefreshHook: hook})
}

func TestRefreshPageCommand(t *testing.T) {
	hook := &stubHook{}
	telemetry := &stubTelemetry{}
	cmd := NewRefreshPageCommand(newService(t, hook), telemetry)

	var view dashboard.PageView
	err := cmd.Execute(context.Background(), RefreshPageInput{
		Request: dashboard.PageRequest{Viewer: dashboard.ViewerContext{UserID: "ada"}, Page: "marketing", Range: "last_7_days"},
		View:    &view,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if view.Page != dashboard.PageMarketing || view.Selector != daterange.Last7Days {
		t.Fatalf("unexpected view %+v", view)
	}
	kinds := hook.kinds()
	if len(kinds) != 2 || kinds[1] != dashboard.EventPageRefresh {
		t.Fatalf("expected load then refresh events, got %v", kinds)
	}
	if hook.events[1].ViewerID != "ada" {
		t.Fatalf("expected viewer on refresh event")
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry record, got %d", telemetry.calls)
	}
}

func TestRefreshPageCommandUnknownPage(t *testing.T) {
	cmd := NewRefreshPageCommand(newService(t, nil), nil)
	err := cmd.Execute(context.Background(), RefreshPageInput{Request: dashboard.PageRequest{Page: "inventory"}})
	if !errors.Is(err, dashboard.ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

type staleService struct{ notified int }

func (s *staleService) LoadPage(context.Context, dashboard.PageRequest) (dashboard.PageView, error) {
	return dashboard.PageView{Page: dashboard.PageMarketing, State: dashboard.PageStateReady}, dashboard.ErrStaleResponse
}

func (s *staleService) NotifyPageUpdated(context.Context, dashboard.PageEvent) error {
	s.notified++
	return nil
}

func TestRefreshPageCommandIgnoresStaleLoads(t *testing.T) {
	service := &staleService{}
	var view dashboard.PageView
	if err := NewRefreshPageCommand(service, nil).Execute(context.Background(), RefreshPageInput{View: &view}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.notified != 0 {
		t.Fatalf("stale load should not notify")
	}
	if view.Page != dashboard.PageMarketing || view.State != dashboard.PageStateReady {
		t.Fatalf("stale load should still fill the view, got page=%q state=%q", view.Page, view.State)
	}
}

type stubExecutor struct{ err error }

func (s stubExecutor) ExecuteAction(context.Context, alerts.Action, string, map[string]any) error {
	return s.err
}

func TestAlertActionCommand(t *testing.T) {
	hook := &stubHook{}
	service := newService(t, hook)
	panel := alerts.NewPanel(alerts.PanelOptions{Executor: stubExecutor{}})
	cmd := NewAlertActionCommand(panel, service, nil)

	var banner alerts.Banner
	err := cmd.Execute(context.Background(), AlertActionInput{
		Viewer:  dashboard.ViewerContext{UserID: "ada"},
		Page:    dashboard.PageMarketing,
		Request: alerts.ActionRequest{Action: "Apply", AlertID: "a-1"},
		Banner:  &banner,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if banner.Kind != alerts.BannerSuccess {
		t.Fatalf("expected success banner, got %+v", banner)
	}
	if len(hook.events) != 1 || hook.events[0].Kind != dashboard.EventAlertAction {
		t.Fatalf("expected alert action event, got %v", hook.kinds())
	}
	if hook.events[0].Payload["alert_id"] != "a-1" {
		t.Fatalf("expected alert id in payload")
	}
}

func TestAlertActionCommandFailureBanner(t *testing.T) {
	hook := &stubHook{}
	panel := alerts.NewPanel(alerts.PanelOptions{Executor: stubExecutor{err: errors.New("backend refused")}})
	cmd := NewAlertActionCommand(panel, newService(t, hook), nil)

	var banner alerts.Banner
	if err := cmd.Execute(context.Background(), AlertActionInput{
		Request: alerts.ActionRequest{Action: alerts.ActionResolve, AlertID: "a-1"},
		Banner:  &banner,
	}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !banner.Failed() || banner.Message != "backend refused" {
		t.Fatalf("expected error banner, got %+v", banner)
	}
	if len(hook.events) != 0 {
		t.Fatalf("failed actions should not notify")
	}
}

type stubTransport struct{ err error }

func (s stubTransport) Open(context.Context) (string, error) { return "s-1", nil }

func (s stubTransport) Send(_ context.Context, text string) (chat.Message, error) {
	return chat.Message{Text: "echo: " + text}, s.err
}

func (s stubTransport) UpdateContext(context.Context, map[string]any) error { return nil }

func TestSendChatMessageCommand(t *testing.T) {
	hook := &stubHook{}
	manager := chat.NewManager(func(string) chat.Transport { return stubTransport{} }, chat.SessionOptions{})
	cmd := NewSendChatMessageCommand(manager, newService(t, hook), nil)

	var state chat.State
	err := cmd.Execute(context.Background(), SendChatMessageInput{
		Viewer: dashboard.ViewerContext{UserID: "ada"},
		Page:   dashboard.PageSales,
		Text:   "hi",
		State:  &state,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(state.Messages) != 2 || state.Messages[1].Text != "echo: hi" {
		t.Fatalf("unexpected messages %+v", state.Messages)
	}
	if state.Context["page"] != "sales" {
		t.Fatalf("expected page context, got %v", state.Context)
	}
	if len(hook.events) != 1 || hook.events[0].Kind != dashboard.EventChatMessage {
		t.Fatalf("expected chat event, got %v", hook.kinds())
	}
}

func TestSendChatMessageCommandFailureKeepsTranscript(t *testing.T) {
	manager := chat.NewManager(func(string) chat.Transport { return stubTransport{err: errors.New("offline")} }, chat.SessionOptions{})
	cmd := NewSendChatMessageCommand(manager, nil, nil)

	var state chat.State
	err := cmd.Execute(context.Background(), SendChatMessageInput{Text: "hi", State: &state})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(state.Messages) != 2 || state.Messages[1].Sender != chat.SenderSystem {
		t.Fatalf("expected system message, got %+v", state.Messages)
	}
}

func TestSavePreferencesCommand(t *testing.T) {
	hook := &stubHook{}
	service := newService(t, hook)
	cmd := NewSavePreferencesCommand(service, nil)
	viewer := dashboard.ViewerContext{UserID: "ada"}

	err := cmd.Execute(context.Background(), SavePreferencesInput{
		Viewer:        viewer,
		Range:         "last_90_days",
		Currency:      "eur",
		WidgetOrder:   map[string][]string{"finance": {"finance-alerts", "finance-payments"}},
		HiddenWidgets: []string{"sales-alerts"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	prefs, err := service.Preferences(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Preferences returned error: %v", err)
	}
	if prefs.Range != daterange.Last90Days || prefs.Currency != "EUR" {
		t.Fatalf("unexpected preferences %+v", prefs)
	}
	if got := prefs.WidgetOrder[dashboard.PageFinance]; len(got) != 2 || got[0] != "finance-alerts" {
		t.Fatalf("unexpected widget order %v", got)
	}
	if !prefs.HiddenWidgets["sales-alerts"] {
		t.Fatalf("expected hidden widget")
	}
	if len(hook.events) != 1 || hook.events[0].Kind != dashboard.EventRangeChanged {
		t.Fatalf("expected range change event, got %v", hook.kinds())
	}
}

func TestSavePreferencesCommandValidation(t *testing.T) {
	cmd := NewSavePreferencesCommand(newService(t, nil), nil)
	if err := cmd.Execute(context.Background(), SavePreferencesInput{Range: "today"}); err == nil {
		t.Fatalf("expected missing viewer error")
	}
	viewer := dashboard.ViewerContext{UserID: "ada"}
	if err := cmd.Execute(context.Background(), SavePreferencesInput{Viewer: viewer, Range: "fortnight"}); err == nil {
		t.Fatalf("expected unknown range error")
	}
	if err := cmd.Execute(context.Background(), SavePreferencesInput{Viewer: viewer, WidgetOrder: map[string][]string{"hr": nil}}); !errors.Is(err, dashboard.ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestSeedDashboardCommand(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "extra.yaml")
	body := "version: \"1\"\nname: extra\nwidgets:\n  - definition:\n      code: bizdash.widget.extra\n      name: Extra\n"
	if err := os.WriteFile(manifest, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	registry := dashboard.NewRegistry()
	telemetry := &stubTelemetry{}
	cmd := NewSeedDashboardCommand(registry, dashboard.Sources{Data: stubSource{}}, telemetry)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{Manifests: []string{manifest}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, ok := registry.Definition("bizdash.widget.extra"); !ok {
		t.Fatalf("expected manifest definition")
	}
	for _, page := range dashboard.Pages() {
		if _, ok := registry.Provider(page.DefinitionCode()); !ok {
			t.Fatalf("expected provider for %s", page)
		}
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry to record seed")
	}
}

func TestSeedDashboardCommandReportsMissingManifest(t *testing.T) {
	cmd := NewSeedDashboardCommand(dashboard.NewRegistry(), dashboard.Sources{}, nil)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{Manifests: []string{"/nonexistent/bizdash.yaml"}}); err == nil {
		t.Fatalf("expected manifest error")
	}
}
