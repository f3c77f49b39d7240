package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-bizdash/components/dashboard"
)

// RefreshPageInput reloads a page for a viewer. View receives the loaded
// page when set.
type RefreshPageInput struct {
	Request dashboard.PageRequest
	View    *dashboard.PageView
}

type pageRefresher interface {
	LoadPage(ctx context.Context, req dashboard.PageRequest) (dashboard.PageView, error)
	NotifyPageUpdated(ctx context.Context, event dashboard.PageEvent) error
}

// RefreshPageCommand reloads a page and tells subscribers about it.
type RefreshPageCommand struct {
	service   pageRefresher
	telemetry Telemetry
}

// NewRefreshPageCommand creates the command.
func NewRefreshPageCommand(service pageRefresher, telemetry Telemetry) *RefreshPageCommand {
	return &RefreshPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshPageInput] = (*RefreshPageCommand)(nil)

// Execute loads the page and notifies refresh hooks. A load overtaken by a
// newer one still fills View but is not an error and is not announced.
func (c *RefreshPageCommand) Execute(ctx context.Context, msg RefreshPageInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	view, err := c.service.LoadPage(ctx, msg.Request)
	if err != nil && !errors.Is(err, dashboard.ErrStaleResponse) {
		return err
	}
	if msg.View != nil {
		*msg.View = view
	}
	if err != nil {
		return nil
	}
	if err := c.service.NotifyPageUpdated(ctx, dashboard.PageEvent{
		Kind:     dashboard.EventPageRefresh,
		Page:     view.Page,
		Range:    view.Selector,
		ViewerID: msg.Request.Viewer.UserID,
		Payload:  map[string]any{"state": string(view.State), "generation": view.Generation},
	}); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "bizdash.page.refresh", map[string]any{
		"page":  string(view.Page),
		"range": string(view.Selector),
	})
	return nil
}
