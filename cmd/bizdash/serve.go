package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-bizdash/components/dashboard"
	"github.com/goliatone/go-bizdash/components/dashboard/gorouter"
	"github.com/goliatone/go-bizdash/components/dashboard/httpapi"
	"github.com/goliatone/go-bizdash/internal/config"
	"github.com/goliatone/go-bizdash/internal/logging"
	"github.com/goliatone/go-bizdash/pkg/analytics"
	dashboardpkg "github.com/goliatone/go-bizdash/pkg/dashboard"
)

type serveCmd struct {
	Addr      string `help:"Override server.addr."`
	Transport string `enum:",fiber,chi" default:"" help:"Override server.transport (fiber or chi)."`
}

// app holds the wired collaborators behind both transports.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	service   *dashboard.Service
	broadcast *dashboard.BroadcastHook
	handlers  *httpapi.Handlers
	renderer  dashboard.Renderer
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("serving dashboard",
		zap.String("addr", cfg.Server.Addr),
		zap.String("transport", cfg.Server.Transport),
		zap.String("data", cfg.Data.Source),
	)
	if cfg.Server.Transport == "chi" {
		return a.serveChi(ctx)
	}
	return a.serveFiber()
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	broadcast := dashboard.NewBroadcastHook()
	assetsHost := cfg.Charts.AssetsHost
	if assetsHost == "" {
		assetsHost = dashboard.DefaultEChartsAssetsHost()
	}
	dcfg := dashboardpkg.Config{
		Client:       client,
		ChartTheme:   cfg.Charts.Theme,
		AssetsHost:   assetsHost,
		RefreshHook:  broadcast,
		Logger:       logger,
		Locale:       cfg.Locale.Default,
		DefaultRange: cfg.DefaultRange(),
		Manifests:    cfg.Manifests,
	}
	if cfg.Cache.RedisAddr != "" {
		redisClient, err := analytics.NewRedisClient(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		cache := analytics.NewCache(redisClient, cfg.Cache.Prefix, cfg.Cache.TTL)
		if err := cache.ListenForInvalidation(ctx); err != nil {
			return nil, fmt.Errorf("serve: cache invalidation: %w", err)
		}
		dcfg.Source = analytics.NewCachedSource(client, cache, logger)
		dcfg.RenderCache = dashboard.NewRedisRenderCache(redisClient, "", cfg.Charts.CacheTTL)

		// Events go through Redis so every instance fans them out locally.
		publisher := analytics.NewRedisEventPublisher(redisClient, cfg.Cache.EventChannel)
		if err := publisher.Relay(ctx, broadcast, logger); err != nil {
			return nil, fmt.Errorf("serve: event relay: %w", err)
		}
		dcfg.RefreshHook = &dashboard.PublisherHook{Publisher: publisher}
	} else {
		dcfg.RenderCache = dashboard.NewChartCache(cfg.Charts.CacheTTL)
	}

	dash, err := dashboardpkg.New(ctx, dcfg)
	if err != nil {
		return nil, err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("serve: templates: %w", err)
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		service:   dash.Service,
		broadcast: broadcast,
		renderer:  renderer,
		handlers:  dash.Handlers(http.HandlerFunc(broadcast.ServeSSE)),
	}, nil
}

func newClient(cfg *config.Config) (analytics.Client, error) {
	if cfg.Data.Source == "http" {
		return analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL: cfg.Data.BaseURL,
			APIKey:  cfg.Data.APIKey,
			Timeout: cfg.Data.Timeout,
		})
	}
	return analytics.NewMockClient(analytics.DemoData(time.Now())), nil
}

func (a *app) controller() *dashboard.Controller {
	return dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: a.renderer,
	})
}

// viewerDefaults fills the configured locale, currency and range.
func (a *app) viewerDefaults(viewer dashboard.ViewerContext) dashboard.ViewerContext {
	if viewer.Locale == "" {
		viewer.Locale = a.cfg.Locale.Default
	}
	if viewer.Currency == "" {
		viewer.Currency = a.cfg.Locale.Currency
	}
	return viewer
}

func (a *app) serveFiber() error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.controller(),
		API:        a.handlers,
		Broadcast:  a.broadcast,
		BasePath:   a.cfg.Server.BasePath,
		AssetsDir:  a.cfg.Server.AssetsDir,
		ViewerResolver: func(ctx router.Context) dashboard.ViewerContext {
			return a.viewerDefaults(gorouter.DefaultViewerResolver(ctx))
		},
	}); err != nil {
		return fmt.Errorf("serve: register routes: %w", err)
	}
	return server.Serve(a.cfg.Server.Addr)
}

func (a *app) serveChi(ctx context.Context) error {
	mux := chi.NewRouter()
	base := a.cfg.Server.BasePath
	viewer := func(r *http.Request) dashboard.ViewerContext {
		return a.viewerDefaults(httpapi.DefaultViewerResolver(r))
	}
	mux.Mount(base+"/api", a.handlers.Routes(httpapi.RouteOptions{
		ActionRateLimit: a.cfg.Server.ActionRateLimit,
		RateWindow:      a.cfg.Server.RateWindow,
		Viewer:          viewer,
	}))
	mux.With(httpapi.ViewerMiddleware(viewer)).Get(base+"/dashboard/ws", a.broadcast.ServeWebSocket)
	if a.cfg.Server.AssetsDir != "" {
		mux.Handle(dashboard.DefaultEChartsAssetsPath+"*", dashboard.EChartsAssetsHandler("", a.cfg.Server.AssetsDir))
	}
	controller := a.controller()
	mux.Get(base+"/dashboard/{page}", func(w http.ResponseWriter, r *http.Request) {
		req := dashboard.PageRequest{
			Viewer: viewer(r),
			Page:   chi.URLParam(r, "page"),
			Range:  r.URL.Query().Get("range"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := controller.RenderTemplate(r.Context(), req, w); err != nil {
			a.logger.Warn("render page failed", zap.String("page", req.Page), zap.Error(err))
			http.Error(w, strings.TrimSpace(err.Error()), httpapi.StatusFor(err))
		}
	})

	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
