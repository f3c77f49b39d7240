package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-bizdash/components/alerts"
	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// AlertActionInput runs an action on an alert. Banner receives the outcome
// when set.
type AlertActionInput struct {
	Viewer  dashboard.ViewerContext
	Page    dashboard.PageCode
	Request alerts.ActionRequest
	Banner  *alerts.Banner
}

type alertExecutor interface {
	Execute(ctx context.Context, req alerts.ActionRequest) alerts.Banner
}

// AlertActionCommand executes alert actions through the panel.
type AlertActionCommand struct {
	panel     alertExecutor
	service   notifier
	telemetry Telemetry
}

// NewAlertActionCommand creates the command. service may be nil when no
// refresh hooks need to hear about actions.
func NewAlertActionCommand(panel alertExecutor, service notifier, telemetry Telemetry) *AlertActionCommand {
	return &AlertActionCommand{panel: panel, service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AlertActionInput] = (*AlertActionCommand)(nil)

// Execute runs the action. A failed action is reported through the banner,
// not the returned error.
func (c *AlertActionCommand) Execute(ctx context.Context, msg AlertActionInput) error {
	if c.panel == nil {
		return errors.New("alert action command requires panel")
	}
	if msg.Request.Locale == "" {
		msg.Request.Locale = msg.Viewer.Locale
	}
	banner := c.panel.Execute(ctx, msg.Request)
	if msg.Banner != nil {
		*msg.Banner = banner
	}
	c.telemetry.Record(ctx, "bizdash.alert.action", map[string]any{
		"alert_id": msg.Request.AlertID,
		"action":   string(banner.Action),
		"result":   string(banner.Kind),
	})
	if banner.Failed() || c.service == nil {
		return nil
	}
	return c.service.NotifyPageUpdated(ctx, dashboard.PageEvent{
		Kind:     dashboard.EventAlertAction,
		Page:     msg.Page,
		ViewerID: msg.Viewer.UserID,
		Payload: map[string]any{
			"alert_id": msg.Request.AlertID,
			"action":   string(banner.Action),
		},
	})
}
