package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/format"
)

// Action is an operation a viewer can run on an alert.
type Action string

const (
	ActionApply   Action = "apply"
	ActionIgnore  Action = "ignore"
	ActionReview  Action = "review"
	ActionResolve Action = "resolve"
)

// Actions lists every supported action.
func Actions() []Action {
	return []Action{ActionApply, ActionIgnore, ActionReview, ActionResolve}
}

// ErrInvalidAction is returned for requests that fail validation.
var ErrInvalidAction = errors.New("alerts: invalid action")

// ActionExecutor runs an alert action against the backend. Failures carry a
// human-readable message.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, action Action, alertID string, payload map[string]any) error
}

// ActionRequest is a viewer's request to act on an alert.
type ActionRequest struct {
	Action  Action         `json:"action" validate:"required,oneof=apply ignore review resolve"`
	AlertID string         `json:"alert_id" validate:"required,max=128"`
	Payload map[string]any `json:"payload,omitempty"`
	Locale  string         `json:"-"`
}

// BannerKind is the outcome shown after an action.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the inline feedback shown after an action.
type Banner struct {
	Kind    BannerKind `json:"kind"`
	Message string     `json:"message"`
	AlertID string     `json:"alert_id,omitempty"`
	Action  Action     `json:"action,omitempty"`
}

// Failed reports whether the banner carries an error.
func (b Banner) Failed() bool { return b.Kind == BannerError }

// PanelOptions configures a Panel.
type PanelOptions struct {
	Executor   ActionExecutor
	Translator Translator
	Logger     *zap.Logger
}

// Panel decorates alerts for display and executes viewer actions.
type Panel struct {
	executor   ActionExecutor
	translator Translator
	logger     *zap.Logger
	validate   *validator.Validate
}

// NewPanel builds a panel. A nil logger discards output.
func NewPanel(opts PanelOptions) *Panel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		executor:   opts.Executor,
		translator: opts.Translator,
		logger:     logger,
		validate:   validator.New(),
	}
}

// Validate checks an action request.
func (p *Panel) Validate(req ActionRequest) error {
	req.Action = Action(NormalizeKey(string(req.Action)))
	if err := p.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return nil
}

// Execute runs req and reports the outcome as a banner. It never returns an
// error: failures become error banners carrying the executor's message, or
// a localized generic message when that is empty.
func (p *Panel) Execute(ctx context.Context, req ActionRequest) Banner {
	req.Action = Action(NormalizeKey(string(req.Action)))
	banner := Banner{AlertID: req.AlertID, Action: req.Action}
	err := p.Validate(req)
	if err == nil && p.executor == nil {
		err = errors.New("alerts: no action executor configured")
	}
	if err == nil {
		err = p.executor.ExecuteAction(ctx, req.Action, req.AlertID, req.Payload)
	}
	if err != nil {
		p.logger.Warn("alert action failed",
			zap.String("alert_id", req.AlertID),
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		banner.Kind = BannerError
		banner.Message = strings.TrimSpace(err.Error())
		if banner.Message == "" {
			banner.Message = p.text(ctx, req.Locale, "alerts.action.error", "Something went wrong. Please try again.")
		}
		return banner
	}
	p.logger.Info("alert action executed",
		zap.String("alert_id", req.AlertID),
		zap.String("action", string(req.Action)),
	)
	banner.Kind = BannerSuccess
	banner.Message = p.text(ctx, req.Locale, "alerts.action."+string(req.Action)+".success", successMessages[req.Action])
	return banner
}

var successMessages = map[Action]string{
	ActionApply:   "Recommendation applied.",
	ActionIgnore:  "Alert ignored.",
	ActionReview:  "Alert marked for review.",
	ActionResolve: "Alert resolved.",
}

// View is an alert decorated with its resolved styles.
type View struct {
	Alert
	StatusStyle   Style    `json:"status_style"`
	SeverityStyle Style    `json:"severity_style"`
	Age           string   `json:"age"`
	Available     []Action `json:"available_actions"`
}

// View decorates alerts, most severe first and newest first within a
// severity. The input slice is not modified.
func (p *Panel) View(ctx context.Context, alerts []Alert, locale string, now time.Time) []View {
	views := make([]View, len(alerts))
	for i, a := range alerts {
		status := StatusStyle(a.Status)
		severity := SeverityStyle(a.Severity)
		if status.Known {
			status.Label = p.text(ctx, locale, "alerts.status."+status.Key, status.Label)
		}
		if severity.Known {
			severity.Label = p.text(ctx, locale, "alerts.severity."+severity.Key, severity.Label)
		}
		views[i] = View{
			Alert:         a,
			StatusStyle:   status,
			SeverityStyle: severity,
			Age:           age(a.CreatedAt, now),
			Available:     availableActions(a),
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := SeverityRank(views[i].Severity), SeverityRank(views[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views
}

// availableActions returns the alert's own actions, or every action except
// for closed alerts.
func availableActions(a Alert) []Action {
	switch NormalizeKey(a.Status) {
	case "resolved", "ignored", "applied":
		return nil
	}
	if len(a.Actions) > 0 {
		return a.Actions
	}
	return Actions()
}

func age(created, now time.Time) string {
	if created.IsZero() {
		return format.Placeholder
	}
	return format.RelativeTimeFrom(created, now)
}

func (p *Panel) text(ctx context.Context, locale, key, fallback string) string {
	if p.translator == nil {
		return fallback
	}
	if translated, err := p.translator.Translate(ctx, key, locale, nil); err == nil && translated != "" {
		return translated
	}
	return fallback
}
