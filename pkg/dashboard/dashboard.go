// Package dashboard assembles the bizdash components into a ready service
// for host applications.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/alerts"
	"github.com/goliatone/go-bizdash/components/chat"
	"github.com/goliatone/go-bizdash/components/daterange"
	core "github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/commands"
	"github.com/goliatone/go-bizdash/components/dashboard/httpapi"
	"github.com/goliatone/go-bizdash/components/dashboard/queries"
	"github.com/goliatone/go-bizdash/pkg/analytics"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Source is the data and alert feed pages read from.
type Source interface {
	core.DataSource
	alerts.Source
}

// Config wires a dashboard around an analytics client.
type Config struct {
	Client analytics.Client
	// Source overrides Client for bundle and alert reads (a cache, say).
	Source      Source
	RenderCache core.RenderCache
	ChartTheme  string
	AssetsHost  string
	RefreshHook core.RefreshHook
	Translator  core.TranslationService
	Preferences core.PreferenceStore
	Logger      *zap.Logger
	Locale      string
	// DefaultRange is used when neither the request nor saved preferences
	// name a range.
	DefaultRange daterange.Selector
	Manifests    []string
	Now          func() time.Time
}

// Dashboard holds the assembled collaborators.
type Dashboard struct {
	Service  *Service
	Registry *core.Registry
	Panel    *alerts.Panel
	Charts   *core.EChartsProvider
	Sessions *chat.Manager
	Chat     *chat.Renderer

	telemetry core.Telemetry
	logger    *zap.Logger
}

// New seeds the registry and builds the service, alert panel and chat
// sessions.
func New(ctx context.Context, cfg Config) (*Dashboard, error) {
	if cfg.Client == nil {
		return nil, errors.New("dashboard: analytics client is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	var source Source = cfg.Client
	if cfg.Source != nil {
		source = cfg.Source
	}
	telemetry := core.NewZapTelemetry(logger)

	chartOpts := []core.EChartsProviderOption{}
	if cfg.RenderCache != nil {
		chartOpts = append(chartOpts, core.WithChartCache(cfg.RenderCache))
	}
	if cfg.ChartTheme != "" {
		chartOpts = append(chartOpts, core.WithChartTheme(cfg.ChartTheme))
	}
	if cfg.AssetsHost != "" {
		chartOpts = append(chartOpts, core.WithChartAssetsHost(cfg.AssetsHost))
	}
	charts := core.NewEChartsProvider(core.ChartBar, chartOpts...)
	panel := alerts.NewPanel(alerts.PanelOptions{Executor: cfg.Client, Translator: cfg.Translator, Logger: logger})

	registry := core.NewRegistry()
	seed := commands.NewSeedDashboardCommand(registry, core.Sources{
		Data:   source,
		Alerts: source,
		Panel:  panel,
		Charts: charts,
		Now:    now,
	}, telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{Manifests: cfg.Manifests}); err != nil {
		return nil, fmt.Errorf("dashboard: seed: %w", err)
	}

	prefs := cfg.Preferences
	if prefs == nil {
		prefs = core.NewInMemoryPreferenceStore()
	}
	service := core.NewService(core.Options{
		Providers:       registry,
		ConfigValidator: core.NewJSONSchemaValidator(),
		PreferenceStore: prefs,
		RefreshHook:     cfg.RefreshHook,
		Telemetry:       telemetry,
		Translator:      cfg.Translator,
		Logger:          logger,
		DefaultRange:    cfg.DefaultRange,
		Now:             now,
	})

	return &Dashboard{
		Service:  service,
		Registry: registry,
		Panel:    panel,
		Charts:   charts,
		Sessions: chat.NewManager(cfg.Client.ChatTransport, chat.SessionOptions{
			Translator: cfg.Translator,
			Logger:     logger,
			Locale:     cfg.Locale,
			Now:        now,
		}),
		Chat:      chat.NewRenderer(chat.RendererOptions{AssetsHost: cfg.AssetsHost, Theme: cfg.ChartTheme, Now: now}),
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// Handlers returns the HTTP command and query set. events serves the event
// stream and may be nil.
func (d *Dashboard) Handlers(events http.Handler) *httpapi.Handlers {
	return &httpapi.Handlers{
		Page:        queries.NewPageQuery(d.Service),
		Pages:       queries.NewPageListQuery(d.Service),
		Refresh:     commands.NewRefreshPageCommand(d.Service, d.telemetry),
		AlertAction: commands.NewAlertActionCommand(d.Panel, d.Service, d.telemetry),
		SendChat:    commands.NewSendChatMessageCommand(d.Sessions, d.Service, d.telemetry),
		ChatHistory: queries.NewChatHistoryQuery(d.Sessions, d.Chat),
		Preferences: commands.NewSavePreferencesCommand(d.Service, d.telemetry),
		ChatRender:  d.Chat,
		Events:      events,
		Logger:      d.logger,
	}
}
