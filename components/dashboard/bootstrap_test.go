package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/daterange"
)

type fakeRegistry struct {
	count     int
	providers map[string]Provider
}

func (f *fakeRegistry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return errors.New("missing code")
	}
	f.count++
	return nil
}

func (f *fakeRegistry) RegisterProvider(code string, p Provider) error {
	if f.providers == nil {
		f.providers = map[string]Provider{}
	}
	f.providers[code] = p
	return nil
}
func (fakeRegistry) Definition(string) (WidgetDefinition, bool) {
	return WidgetDefinition{}, false
}
func (fakeRegistry) Provider(string) (Provider, bool) { return nil, false }
func (fakeRegistry) Definitions() []WidgetDefinition  { return nil }

type alertSourceFunc func(ctx context.Context, sel daterange.Selector) ([]alerts.Alert, error)

func (f alertSourceFunc) FetchAlerts(ctx context.Context, sel daterange.Selector) ([]alerts.Alert, error) {
	return f(ctx, sel)
}

func TestRegisterDefinitionsRegistersRegistry(t *testing.T) {
	reg := &fakeRegistry{}
	if err := RegisterDefinitions(reg); err != nil {
		t.Fatalf("RegisterDefinitions returned error: %v", err)
	}
	if reg.count != len(DefaultWidgetDefinitions()) {
		t.Fatalf("expected registry to receive %d defs, got %d", len(DefaultWidgetDefinitions()), reg.count)
	}
}

func TestRegisterProvidersSkipsMissingCollaborators(t *testing.T) {
	reg := &fakeRegistry{}
	if err := RegisterProviders(reg, Sources{}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	if len(reg.providers) != 0 {
		t.Fatalf("expected no providers, got %d", len(reg.providers))
	}

	src := Sources{
		Data: &stubSource{},
		Alerts: alertSourceFunc(func(context.Context, daterange.Selector) ([]alerts.Alert, error) {
			return nil, nil
		}),
	}
	if err := RegisterProviders(reg, src); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	want := len(Pages()) + 2
	if len(reg.providers) != want {
		t.Fatalf("expected %d providers, got %d", want, len(reg.providers))
	}
}

func TestRegisterProvidersAgainstRegistry(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterProviders(reg, Sources{Data: &stubSource{}}); err != nil {
		t.Fatalf("RegisterProviders returned error: %v", err)
	}
	for _, page := range Pages() {
		if _, ok := reg.Provider(page.DefinitionCode()); !ok {
			t.Fatalf("expected provider for %s", page)
		}
	}
	if _, ok := reg.Provider(WidgetAlerts); ok {
		t.Fatalf("alerts provider should be skipped without a source")
	}
}
