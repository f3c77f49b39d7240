package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	router "github.com/goliatone/go-router"
	"golang.org/x/text/language"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/httpapi"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, API commands and
// hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            *httpapi.Handlers
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	// AssetsDir serves a local copy of the chart runtime when set.
	AssetsDir string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	Data        string
	Refresh     string
	AlertAction string
	Chat        string
	Preferences string
	WebSocket   string
	Assets      string
}

// routeRegistrar is the part of router.Router the dashboard mounts on.
type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo
}

// requestContext is the part of router.Context the handlers use.
type requestContext interface {
	Context() context.Context
	SetHeader(k, v string) router.Context
	Send(b []byte) error
	JSON(code int, v any) error
	Body() []byte
	Param(name string, defaultValue ...string) string
}

// Register mounts dashboard routes (HTML, JSON, actions, chat, WebSocket) on
// a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	if cfg.AssetsDir != "" {
		cfg.Router.Static(routes.Assets, ".", router.Static{
			FS:     os.DirFS(cfg.AssetsDir),
			Root:   ".",
			MaxAge: 86400,
		})
	}
	mount(cfg.Router.Group(base), cfg, routes)
	return nil
}

func mount[T any](r routeRegistrar, cfg Config[T], routes RouteConfig) {
	resolve := cfg.ViewerResolver
	if resolve == nil {
		resolve = DefaultViewerResolver
	}
	h := &handlers{controller: cfg.Controller, api: cfg.API}

	r.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		return h.html(ctx, pageRequest(ctx, resolve))
	}))
	r.Get(routes.Data, router.WrapHandler(func(ctx router.Context) error {
		return h.data(ctx, pageRequest(ctx, resolve))
	}))

	if cfg.API != nil {
		if cfg.API.Refresh != nil {
			r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
				return h.refresh(ctx, pageRequest(ctx, resolve))
			}))
		}
		if cfg.API.AlertAction != nil {
			r.Post(routes.AlertAction, router.WrapHandler(func(ctx router.Context) error {
				return h.alertAction(ctx, resolve(ctx))
			}))
		}
		if cfg.API.SendChat != nil {
			r.Post(routes.Chat, router.WrapHandler(func(ctx router.Context) error {
				return h.sendChat(ctx, resolve(ctx))
			}))
		}
		if cfg.API.ChatHistory != nil {
			r.Get(routes.Chat, router.WrapHandler(func(ctx router.Context) error {
				return h.chatHistory(ctx, resolve(ctx))
			}))
		}
		if cfg.API.Preferences != nil {
			r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
				return h.preferences(ctx, resolve(ctx))
			}))
		}
	}

	if cfg.Broadcast != nil {
		registerWebSocket(r, cfg.Broadcast, routes.WebSocket)
	}
}

type handlers struct {
	controller *dashboard.Controller
	api        *httpapi.Handlers
}

func (h *handlers) html(ctx requestContext, req dashboard.PageRequest) error {
	var buf bytes.Buffer
	if err := h.controller.RenderTemplate(ctx.Context(), req, &buf); err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h *handlers) data(ctx requestContext, req dashboard.PageRequest) error {
	payload, err := h.controller.Payload(ctx.Context(), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, payload)
}

func (h *handlers) refresh(ctx requestContext, req dashboard.PageRequest) error {
	var view dashboard.PageView
	if err := h.api.Refresh.Execute(ctx.Context(), commands.RefreshPageInput{Request: req, View: &view}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, view)
}

func (h *handlers) alertAction(ctx requestContext, viewer dashboard.ViewerContext) error {
	var payload struct {
		Page    string         `json:"page"`
		Payload map[string]any `json:"payload"`
	}
	if body := ctx.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return respondStatus(ctx, http.StatusBadRequest, err)
		}
	}
	var banner alerts.Banner
	err := h.api.AlertAction.Execute(ctx.Context(), commands.AlertActionInput{
		Viewer: viewer,
		Page:   dashboard.PageCode(payload.Page),
		Request: alerts.ActionRequest{
			Action:  alerts.Action(ctx.Param("action")),
			AlertID: ctx.Param("id"),
			Payload: payload.Payload,
			Locale:  viewer.Locale,
		},
		Banner: &banner,
	})
	if err != nil {
		return respondError(ctx, err)
	}
	status := http.StatusOK
	if banner.Failed() {
		status = http.StatusUnprocessableEntity
	}
	return ctx.JSON(status, banner)
}

func (h *handlers) sendChat(ctx requestContext, viewer dashboard.ViewerContext) error {
	var payload struct {
		Text string `json:"text"`
		Page string `json:"page"`
	}
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	var state chat.State
	err := h.api.SendChat.Execute(ctx.Context(), commands.SendChatMessageInput{
		Viewer: viewer,
		Page:   dashboard.PageCode(payload.Page),
		Text:   payload.Text,
		State:  &state,
	})
	if errors.Is(err, chat.ErrInvalidMessage) {
		return respondError(ctx, err)
	}
	renderer := h.api.ChatRender
	if renderer == nil {
		renderer = chat.NewRenderer(chat.RendererOptions{})
	}
	history, renderErr := queries.RenderHistory(renderer, state)
	if renderErr != nil {
		return respondError(ctx, renderErr)
	}
	if err != nil {
		return ctx.JSON(http.StatusBadGateway, history)
	}
	return ctx.JSON(http.StatusOK, history)
}

func (h *handlers) chatHistory(ctx requestContext, viewer dashboard.ViewerContext) error {
	history, err := h.api.ChatHistory.Query(ctx.Context(), queries.ChatHistoryInput{Viewer: viewer})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, history)
}

func (h *handlers) preferences(ctx requestContext, viewer dashboard.ViewerContext) error {
	var payload commands.SavePreferencesInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	if err := h.api.Preferences.Execute(ctx.Context(), payload); err != nil {
		return respondStatus(ctx, http.StatusBadRequest, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// registerWebSocket streams page events that are not addressed to a viewer.
// Per-viewer streams are served over SSE by httpapi.
func registerWebSocket(r routeRegistrar, hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.SubscribePublic()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func pageRequest(ctx router.Context, resolve ViewerResolver) dashboard.PageRequest {
	return dashboard.PageRequest{
		Viewer: resolve(ctx),
		Page:   ctx.Param("page"),
		Range:  ctx.Query("range"),
	}
}

// DefaultViewerResolver reads the viewer from request locals set by upstream
// auth middleware and the Accept-Language header.
func DefaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	if currency, ok := ctx.Locals("currency").(string); ok {
		viewer.Currency = strings.ToUpper(currency)
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return strings.ToLower(tags[0].String())
}

func respondError(ctx requestContext, err error) error {
	return respondStatus(ctx, httpapi.StatusFor(err), err)
}

func respondStatus(ctx requestContext, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard/:page"
	}
	if routes.Data == "" {
		routes.Data = "/dashboard/:page/_data"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/:page/refresh"
	}
	if routes.AlertAction == "" {
		routes.AlertAction = "/dashboard/alerts/:id/actions/:action"
	}
	if routes.Chat == "" {
		routes.Chat = "/dashboard/chat/messages"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultEChartsAssetsPath
	}
	return routes
}
