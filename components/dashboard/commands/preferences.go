package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-bizdash/components/daterange"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// SavePreferencesInput captures a viewer's defaults. Empty fields keep the
// stored value.
type SavePreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"viewer"`
	Range         string                  `json:"range,omitempty"`
	Currency      string                  `json:"currency,omitempty"`
	Locale        string                  `json:"locale,omitempty"`
	WidgetOrder   map[string][]string     `json:"widget_order,omitempty"`
	HiddenWidgets []string                `json:"hidden_widget_ids,omitempty"`
}

type preferenceService interface {
	Preferences(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.ViewerPreferences, error)
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, prefs dashboard.ViewerPreferences) error
}

// SavePreferencesCommand persists per-viewer defaults.
type SavePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSavePreferencesCommand creates the command.
func NewSavePreferencesCommand(service preferenceService, telemetry Telemetry) *SavePreferencesCommand {
	return &SavePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferencesInput] = (*SavePreferencesCommand)(nil)

// Execute merges the input into the stored preferences.
func (c *SavePreferencesCommand) Execute(ctx context.Context, msg SavePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	prefs, err := c.service.Preferences(ctx, msg.Viewer)
	if err != nil {
		return err
	}
	if msg.Range != "" {
		sel, ok := daterange.Parse(msg.Range)
		if !ok {
			return fmt.Errorf("preferences command: unknown range %q", msg.Range)
		}
		prefs.Range = sel
	}
	if msg.Currency != "" {
		prefs.Currency = msg.Currency
	}
	if msg.Locale != "" {
		prefs.Locale = msg.Locale
	}
	for raw, order := range msg.WidgetOrder {
		page, err := dashboard.ParsePage(raw)
		if err != nil {
			return err
		}
		if prefs.WidgetOrder == nil {
			prefs.WidgetOrder = map[dashboard.PageCode][]string{}
		}
		prefs.WidgetOrder[page] = order
	}
	if msg.HiddenWidgets != nil {
		prefs.HiddenWidgets = make(map[string]bool, len(msg.HiddenWidgets))
		for _, id := range msg.HiddenWidgets {
			prefs.HiddenWidgets[id] = true
		}
	}
	if err := c.service.SavePreferences(ctx, msg.Viewer, prefs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bizdash.preferences.save", map[string]any{
		"user_id":    msg.Viewer.UserID,
		"range":      string(prefs.Range),
		"pages":      len(msg.WidgetOrder),
		"hidden_cnt": len(msg.HiddenWidgets),
	})
	return nil
}
