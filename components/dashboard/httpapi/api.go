package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Page        gocommand.Querier[dashboard.PageRequest, dashboard.PageView]
	Pages       gocommand.Querier[dashboard.ViewerContext, []dashboard.PageSummary]
	Refresh     gocommand.Commander[commands.RefreshPageInput]
	AlertAction gocommand.Commander[commands.AlertActionInput]
	SendChat    gocommand.Commander[commands.SendChatMessageInput]
	ChatHistory gocommand.Querier[queries.ChatHistoryInput, queries.ChatHistory]
	Preferences gocommand.Commander[commands.SavePreferencesInput]
	ChatRender  *chat.Renderer
	Events      http.Handler
	Logger      *zap.Logger
}

// RouteOptions tunes the router.
type RouteOptions struct {
	// ActionRateLimit caps alert actions and chat messages per viewer per
	// RateWindow. Zero disables limiting.
	ActionRateLimit int
	RateWindow      time.Duration
	Viewer          ViewerResolver
}

// DefaultRouteOptions returns the limits used by Routes when none are given.
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{ActionRateLimit: 30, RateWindow: time.Minute}
}

// Routes mounts every endpoint on a chi router.
func (h *Handlers) Routes(opts RouteOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(ViewerMiddleware(opts.Viewer))

	r.Get("/pages", h.HandlePages)
	r.Get("/pages/{page}", h.HandlePage)
	r.Post("/pages/{page}/refresh", h.HandleRefresh)
	r.Get("/chat/messages", h.HandleChatHistory)
	r.Put("/preferences", h.HandleSavePreferences)
	if h.Events != nil {
		r.Handle("/events", h.Events)
	}

	r.Group(func(gr chi.Router) {
		if opts.ActionRateLimit > 0 {
			window := opts.RateWindow
			if window <= 0 {
				window = time.Minute
			}
			gr.Use(httprate.Limit(opts.ActionRateLimit, window,
				httprate.WithKeyFuncs(rateLimitKey),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusTooManyRequests, errorBody{Error: http.StatusText(http.StatusTooManyRequests)})
				}),
			))
		}
		gr.Post("/alerts/{id}/actions/{action}", h.HandleAlertAction)
		gr.Post("/chat/messages", h.HandleSendChat)
	})
	return r
}

func rateLimitKey(r *http.Request) (string, error) {
	if meta, ok := dashboard.RequestFrom(r.Context()); ok && meta.Viewer.UserID != "" {
		return "user:" + meta.Viewer.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// HandlePages lists the dashboard pages.
func (h *Handlers) HandlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.Pages.Query(r.Context(), viewerFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// HandlePage loads one page for the range in the query string.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	view, err := h.Page.Query(r.Context(), pageRequest(r))
	if err != nil && !errors.Is(err, dashboard.ErrStaleResponse) {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh reloads a page and broadcasts the refresh.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var view dashboard.PageView
	if err := h.Refresh.Execute(r.Context(), commands.RefreshPageInput{Request: pageRequest(r), View: &view}); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

// HandleAlertAction runs an alert action and returns the banner.
func (h *Handlers) HandleAlertAction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Page    string         `json:"page"`
		Payload map[string]any `json:"payload"`
	}
	if err := decodeOptional(r, &payload); err != nil {
		h.writeError(w, badRequest(err))
		return
	}
	viewer := viewerFrom(r)
	var banner alerts.Banner
	err := h.AlertAction.Execute(r.Context(), commands.AlertActionInput{
		Viewer: viewer,
		Page:   dashboard.PageCode(payload.Page),
		Request: alerts.ActionRequest{
			Action:  alerts.Action(chi.URLParam(r, "action")),
			AlertID: chi.URLParam(r, "id"),
			Payload: payload.Payload,
			Locale:  viewer.Locale,
		},
		Banner: &banner,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if banner.Failed() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, banner)
}

// HandleChatHistory returns the viewer's rendered conversation.
func (h *Handlers) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.ChatHistory.Query(r.Context(), queries.ChatHistoryInput{Viewer: viewerFrom(r)})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleSendChat sends a message and returns the rendered conversation.
// Assistant failures still return the transcript, with the system message
// appended, and a 502 status.
func (h *Handlers) HandleSendChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
		Page string `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, badRequest(err))
		return
	}
	var state chat.State
	err := h.SendChat.Execute(r.Context(), commands.SendChatMessageInput{
		Viewer: viewerFrom(r),
		Page:   dashboard.PageCode(payload.Page),
		Text:   payload.Text,
		State:  &state,
	})
	if errors.Is(err, chat.ErrInvalidMessage) {
		h.writeError(w, err)
		return
	}
	renderer := h.ChatRender
	if renderer == nil {
		renderer = chat.NewRenderer(chat.RendererOptions{})
	}
	history, renderErr := queries.RenderHistory(renderer, state)
	if renderErr != nil {
		h.writeError(w, renderErr)
		return
	}
	status := http.StatusOK
	if err != nil {
		h.logger().Warn("chat message failed", zap.Error(err))
		status = http.StatusBadGateway
	}
	writeJSON(w, status, history)
}

// HandleSavePreferences stores the viewer's defaults.
func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var payload commands.SavePreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, badRequest(err))
		return
	}
	payload.Viewer = viewerFrom(r)
	if err := h.Preferences.Execute(r.Context(), payload); err != nil {
		h.writeError(w, badRequest(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pageRequest(r *http.Request) dashboard.PageRequest {
	return dashboard.PageRequest{
		Viewer: viewerFrom(r),
		Page:   chi.URLParam(r, "page"),
		Range:  r.URL.Query().Get("range"),
	}
}

func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

type errorBody struct {
	Error      string                      `json:"error"`
	Violations []dashboard.ConfigViolation `json:"violations,omitempty"`
}

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return requestError{err: err} }

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var reqErr requestError
	switch {
	case errors.Is(err, dashboard.ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidConfiguration),
		errors.Is(err, alerts.ErrInvalidAction),
		errors.Is(err, chat.ErrInvalidMessage),
		errors.As(err, &reqErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger().Error("request failed", zap.Error(err))
	}
	body := errorBody{Error: strings.TrimSpace(err.Error())}
	var cfgErr *dashboard.ConfigError
	if errors.As(err, &cfgErr) {
		body.Violations = cfgErr.Violations
	}
	writeJSON(w, status, body)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
