// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/termblog/internal/api"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/console"
	"github.com/starford/termblog/internal/index"
	"github.com/starford/termblog/internal/mcpserver"
	"github.com/starford/termblog/internal/postservice"
	"github.com/starford/termblog/internal/shell"
	"github.com/starford/termblog/internal/sse"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/webterm"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// components are the pieces shared by every run mode.
type components struct {
	logger *slog.Logger
	store  storage.Provider
	lib    *catalog.Library
	db     *index.DB

	syncMu sync.Mutex
}

func build(cfg *Config, logger *slog.Logger) (*components, error) {
	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	lib, err := catalog.NewLibrary(store, cfg.Content.MediaURL)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	c := &components{logger: logger, store: store, lib: lib}

	if cfg.SQLite.Enabled() {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		c.db = db
		c.syncIndex(lib.Current())
	}
	return c, nil
}

func (c *components) Close() {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Warn("index close failed", slog.String("error", err.Error()))
		}
	}
}

// syncIndex brings the index in line with cat. Failures leave search on
// stale data, so they are logged rather than returned.
func (c *components) syncIndex(cat *catalog.Catalog) {
	if c.db == nil {
		return
	}
	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	stats, err := index.Sync(c.db, cat, c.logger)
	if err != nil {
		c.logger.Warn("index sync failed", slog.String("error", err.Error()))
		return
	}
	c.logger.Info("index synced",
		slog.Int("indexed", stats.Indexed),
		slog.Int("removed", stats.Removed),
		slog.Int("skipped", stats.Skipped))
}

func (c *components) service(hook catalog.ReloadFunc) *postservice.Service {
	opts := []postservice.Option{postservice.WithReloadHook(hook)}
	if c.db != nil {
		opts = append(opts, postservice.WithIndex(c.db))
	}
	return postservice.NewService(c.lib, opts...)
}

func (c *components) shell(cfg *Config) *shell.Shell {
	links := make([]shell.Link, 0, len(cfg.Identity.Links))
	for _, l := range cfg.Identity.Links {
		links = append(links, shell.Link{Label: l.Label, URL: l.URL})
	}
	opts := []shell.Option{shell.WithLogger(c.logger)}
	if c.db != nil {
		opts = append(opts, shell.WithSearcher(c.db))
	}
	return shell.New(shell.DefaultCommands(), shell.Config{
		User: cfg.Terminal.User,
		Host: cfg.Terminal.Host,
		Identity: shell.Identity{
			Name:    cfg.Identity.Name,
			Tagline: cfg.Identity.Tagline,
			Email:   cfg.Identity.Email,
			Links:   links,
		},
		CodeStyle:  cfg.Terminal.CodeStyle,
		PagerStyle: cfg.Terminal.PagerStyle,
	}, opts...)
}

// Run starts the HTTP server: the browser terminal, the JSON API and the
// content watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closeLog, err := newLogger(cfg.App, os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort on exit
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Content.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	comp, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer comp.Close()
	logger.Info("Content loaded", slog.Int("posts", len(comp.lib.Current().Posts())))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	onReload := func(c *catalog.Catalog, changed []string, err error) {
		if err != nil {
			broker.PublishError(err)
			return
		}
		comp.syncIndex(c)
		broker.PublishReload(changed, len(c.Posts()))
	}

	svc := comp.service(onReload)
	apiRouter := api.NewRouter(svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      broker,
	})
	term := webterm.New(comp.lib, comp.shell(cfg),
		webterm.WithMaxSessions(int64(cfg.Terminal.MaxSessions)),
		webterm.WithBaseURL(cfg.Terminal.BaseURL),
		webterm.WithLogger(logger),
	)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Browser terminal.
	r.Get("/", term.Page)
	r.Get("/post/{slug}", term.Page)
	r.Get("/ws", term.ServeWS)
	r.Handle("/media/*", api.NewMediaHandler(comp.store))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Websocket sessions end with the server.
		BaseContext: func(net.Listener) context.Context { return gCtx },
	}

	// Start content watcher with SSE callback.
	if cfg.Content.Watch {
		g.Go(func() error {
			if err := comp.lib.Watch(gCtx, logger, catalog.DefaultDebounce, onReload); err != nil {
				return fmt.Errorf("content watcher: %w", err)
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut down on signal or on the first failure.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunConsole runs a single session in the local terminal. deepLink, when
// set, is a "/post/<slug>" path opened on start.
func RunConsole(ctx context.Context, deepLink string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// The terminal is taken; logs go to app.log_file or nowhere.
	logger, closeLog, err := newLogger(cfg.App, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort on exit

	comp, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer comp.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	return console.Run(ctx, comp.shell(cfg), comp.lib.Current(), console.Options{
		DeepLink: deepLink,
		BaseURL:  cfg.Terminal.BaseURL,
		Logger:   logger,
	})
}

// RunMCP serves the MCP tools on stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// stdout carries the protocol.
	logger, closeLog, err := newLogger(cfg.App, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck // best-effort on exit

	comp, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer comp.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Content.Watch {
		go func() {
			err := comp.lib.Watch(ctx, logger, catalog.DefaultDebounce, func(c *catalog.Catalog, _ []string, err error) {
				if err == nil {
					comp.syncIndex(c)
				}
			})
			if err != nil {
				logger.Warn("content watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	srv := mcpserver.New(comp.service(nil), app.version)
	logger.Info("MCP server starting", slog.Int("posts", len(comp.lib.Current().Posts())))
	return srv.ServeStdio()
}

// RunCheck builds the catalog and reads every post, reporting the first
// problem found.
func RunCheck(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	cat, err := catalog.Build(store, cfg.Content.MediaURL)
	if err != nil {
		return err
	}
	posts := cat.Posts()
	for _, e := range posts {
		if _, err := cat.ReadPost(e); err != nil {
			return fmt.Errorf("%s: %w", e.Path, err)
		}
	}
	_, err = fmt.Fprintf(app.out, "ok: %d posts, %d files, %d tags\n",
		len(posts), len(cat.Entries()), len(cat.Tags()))
	return err
}
