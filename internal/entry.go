// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notionmd/internal/api"
	"github.com/starford/notionmd/internal/apperr"
	"github.com/starford/notionmd/internal/cache"
	"github.com/starford/notionmd/internal/markdown"
	"github.com/starford/notionmd/internal/mcpserver"
	"github.com/starford/notionmd/internal/metrics"
	"github.com/starford/notionmd/internal/mirror"
	"github.com/starford/notionmd/internal/notion"
	"github.com/starford/notionmd/internal/pageservice"
	"github.com/starford/notionmd/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger installs a structured JSON logger whose level can change at runtime.
func (a *application) logger() (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(a.config.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, level
}

// pages wires the Notion client, the optional render cache and the page
// service. The returned closer releases the cache.
func (a *application) pages(logger *slog.Logger, m *metrics.Metrics) (*pageservice.Service, *notion.Client, func(), error) {
	cfg := a.config
	client := notion.New(cfg.Notion.ClientConfig(),
		notion.WithLogger(logger),
		notion.WithObserver(m.ObserveUpstream),
	)

	svcOpts := []pageservice.Option{
		pageservice.WithLogger(logger),
		pageservice.WithMetrics(m),
	}
	closer := func() {}
	if cfg.Cache.Enabled {
		db, err := cache.Open(cfg.Cache.Path, cache.WithRenderVersion(markdown.Version))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init cache: %w", err)
		}
		svcOpts = append(svcOpts, pageservice.WithCache(db))
		closer = func() {
			if err := db.Close(); err != nil {
				logger.Warn("cache close failed", slog.String("error", err.Error()))
			}
		}
	}
	return pageservice.NewService(client, svcOpts...), client, closer, nil
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger, level := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notion_base_url", cfg.Notion.BaseURL),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("cache_enabled", cfg.Cache.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	m := metrics.New()
	svc, _, closeCache, err := app.pages(logger, m)
	if err != nil {
		return err
	}
	defer closeCache()

	router := api.NewRouter(svc, api.Options{
		AuthMode:    cfg.Auth.Mode,
		AuthToken:   cfg.Auth.Token,
		NotionToken: cfg.Notion.Token,
		Metrics:     m,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.App.HTTP.Address(),
		Handler:      router,
		ReadTimeout:  cfg.App.HTTP.ReadTimeout,
		WriteTimeout: cfg.App.HTTP.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		g.Go(func() error {
			if err := WatchConfig(gCtx, app.configPath, level, logger); err != nil {
				logger.Warn("config watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblocks the config watcher after a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMirror writes every page of the configured database into the mirror
// directory once.
func RunMirror(ctx context.Context, opts ...Option) (mirror.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return mirror.Result{}, err
	}
	cfg := app.config
	logger, _ := app.logger()

	if cfg.Mirror.DatabaseID == "" {
		return mirror.Result{}, fmt.Errorf("%w: mirror.database_id is required", apperr.ErrValidation)
	}
	if cfg.Notion.Token == "" {
		return mirror.Result{}, fmt.Errorf("%w: notion.token is required", apperr.ErrValidation)
	}

	store, err := storage.NewFS(cfg.Mirror.Path)
	if err != nil {
		return mirror.Result{}, fmt.Errorf("init mirror storage: %w", err)
	}
	svc, client, closeCache, err := app.pages(logger, nil)
	if err != nil {
		return mirror.Result{}, err
	}
	defer closeCache()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Mirroring database",
		slog.String("database_id", cfg.Mirror.DatabaseID),
		slog.String("path", cfg.Mirror.Path))
	return mirror.New(svc, client, store, logger).Run(ctx, cfg.Mirror.Options(cfg.Notion.Token))
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to the configured
// output, which must not be stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	cfg := app.config
	logger, _ := app.logger()

	if cfg.Notion.Token == "" {
		return fmt.Errorf("%w: notion.token is required", apperr.ErrValidation)
	}

	svc, _, closeCache, err := app.pages(logger, nil)
	if err != nil {
		return err
	}
	defer closeCache()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(svc, cfg.Notion.Token, app.version).ServeStdio()
}
