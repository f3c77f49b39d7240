package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-bizdash/components/alerts"
)

// Sources bundles the collaborators page and widget providers read from.
type Sources struct {
	Data   DataSource
	Alerts alerts.Source
	Panel  *alerts.Panel
	Charts *EChartsProvider
	Now    func() time.Time
}

// RegisterDefinitions registers the built-in page and widget definitions.
func RegisterDefinitions(registry ProviderRegistry) error {
	if registry == nil {
		return errors.New("dashboard: registry is required")
	}
	for _, def := range DefaultWidgetDefinitions() {
		if err := registry.RegisterDefinition(def); err != nil {
			return fmt.Errorf("register definition %s: %w", def.Code, err)
		}
	}
	return nil
}

// RegisterProviders attaches the page, payment metrics and alerts providers.
// Collaborators left nil skip their providers; every failure is reported.
func RegisterProviders(registry ProviderRegistry, src Sources) error {
	if registry == nil {
		return errors.New("dashboard: registry is required")
	}
	var regErr error
	if src.Data != nil {
		for _, page := range Pages() {
			if err := registry.RegisterProvider(page.DefinitionCode(), NewPageProvider(page, src.Data, src.Charts)); err != nil {
				regErr = errors.Join(regErr, err)
			}
		}
		if err := registry.RegisterProvider(WidgetPaymentMetrics, NewPaymentMetricsProvider(src.Data)); err != nil {
			regErr = errors.Join(regErr, err)
		}
	}
	if src.Alerts != nil {
		if err := registry.RegisterProvider(WidgetAlerts, NewAlertsProvider(src.Alerts, src.Panel, src.Now)); err != nil {
			regErr = errors.Join(regErr, err)
		}
	}
	return regErr
}
