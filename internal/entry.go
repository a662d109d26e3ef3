// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/api"
	"github.com/starford/jotter/internal/archive"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/mcpserver"
	"github.com/starford/jotter/internal/sse"
	"github.com/starford/jotter/internal/store"
	"github.com/starford/jotter/internal/vault"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	if cfg.LogFormat == LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.TimeOnly,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// setup applies opts, installs the default logger and opens the database.
func setup(opts []Option) (*application, *slog.Logger, *store.DB, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(app.config.App, app.logOutput)
	slog.SetDefault(logger)

	db, err := store.Open(app.config.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init store: %w", err)
	}
	return app, logger, db, nil
}

func newAccounts(cfg *Config, db *store.DB) *account.Service {
	return account.New(db,
		account.WithSessionTTL(cfg.Auth.SessionTTL),
		account.WithBcryptCost(cfg.Auth.BcryptCost),
	)
}

// NewHandler builds the full HTTP handler: health checks plus the API
// mounted under /api.
func NewHandler(db *store.DB, ideas *ideaservice.Service, accounts *account.Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			slog.Error("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", api.NewRouter(ideas, accounts, events))
	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

// Run starts the HTTP server, the inbox watcher and the session purger,
// and blocks until ctx is cancelled or a termination signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, db, err := setup(opts)
	if err != nil {
		return err
	}
	defer db.Close()
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(cfg.Events.BoardThrottle)
	defer broker.Close()

	accounts := newAccounts(cfg, db)
	ideas := ideaservice.NewService(db, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHandler(db, ideas, accounts, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Inbox.Enabled() {
		g.Go(func() error {
			return runInbox(gCtx, cfg.Inbox, ideas, accounts, logger)
		})
	}

	g.Go(func() error {
		purgeSessions(gCtx, accounts, logger)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

func runInbox(ctx context.Context, cfg InboxConfig, ideas *ideaservice.Service, accounts *account.Service, logger *slog.Logger) error {
	owner, err := accounts.UserByEmail(ctx, cfg.Owner)
	if err != nil {
		// The owner may not have signed up yet; serving continues without it.
		logger.Warn("inbox disabled: owner not found",
			slog.String("owner", cfg.Owner),
			slog.String("error", err.Error()))
		return nil
	}
	inbox, err := archive.NewInbox(ideas, cfg.Path, owner.ID, logger)
	if err != nil {
		return err
	}
	return inbox.Watch(ctx)
}

func purgeSessions(ctx context.Context, accounts *account.Service, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		n, err := accounts.PurgeExpired(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn("session purge failed", slog.String("error", err.Error()))
		case n > 0:
			logger.Info("expired sessions purged", slog.Int64("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunMCP serves the MCP protocol on stdio for the user with the given email.
func RunMCP(ctx context.Context, email string, opts ...Option) error {
	app, logger, db, err := setup(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	u, err := newAccounts(app.config, db).UserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("mcp: user %s: %w", email, err)
	}
	logger.Info("MCP server starting", slog.String("user", u.Email))
	return mcpserver.New(ideaservice.NewService(db, nil), u.ID).ServeStdio()
}

// RunExport writes every idea of the user with the given email to dir and
// returns the number of files written.
func RunExport(ctx context.Context, email, dir string, opts ...Option) (int, error) {
	app, logger, db, err := setup(opts)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	u, err := newAccounts(app.config, db).UserByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("export: user %s: %w", email, err)
	}
	v, err := vault.NewFS(dir)
	if err != nil {
		return 0, err
	}
	ideas := ideaservice.NewService(db, nil)
	return archive.New(ideas, v, logger).Export(ctx, u.ID)
}
