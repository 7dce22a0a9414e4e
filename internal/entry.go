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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/hiring"
	"github.com/starford/raido/internal/stubapi"
	"github.com/starford/raido/internal/transport"
)

// Run starts the application with the given options: it serves the stub
// hiring API, then primes the local cache through the client so the
// first UI load renders instantly.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("api_base_url", cfg.API.BaseURL),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", slog.Level(cfg.App.LogLevel).String()))

	// Initialize the local cache.
	db, err := cache.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer db.Close()

	// Build the stub API server.
	stubOpts := []stubapi.Option{
		stubapi.WithSeed(stubapi.DefaultSeed(cfg.Stub.SeedJobs, cfg.Stub.SeedCandidates)),
		stubapi.WithReorderFailRate(cfg.Stub.ReorderFailRate),
		stubapi.WithLatency(time.Duration(cfg.Stub.Latency)),
		stubapi.WithCredentials(cfg.Stub.LoginEmail, cfg.Stub.LoginPassword),
		stubapi.WithLogger(logger),
	}
	stub := stubapi.New(stubOpts...)
	defer stub.Close()
	if cfg.Stub.FixturePath != "" {
		seed, err := stubapi.LoadSeed(cfg.Stub.FixturePath)
		if err != nil {
			return fmt.Errorf("load fixture: %w", err)
		}
		stubapi.WithSeed(seed)(stub)
	}

	// Build the chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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

	r.Mount("/", stub.Router())

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// Build the hiring client against the configured API.
	session := transport.NewSession()
	api, err := transport.New(cfg.API.BaseURL, time.Duration(cfg.API.Timeout), session)
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	svc := hiring.NewService(api, db, logger)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start fixture hot-reload when configured.
	if cfg.Stub.FixturePath != "" {
		g.Go(func() error {
			return stub.WatchFixture(gCtx, cfg.Stub.FixturePath)
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

	// Prime the cache once the server is answering.
	g.Go(func() error {
		primeCache(gCtx, svc, logger)
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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

// primeCache fetches the first pages of jobs and candidates so reloads
// of the UI can render from the local store immediately. Failures are
// logged and ignored; the server keeps running either way.
func primeCache(ctx context.Context, svc *hiring.Service, logger *slog.Logger) {
	for attempt := 1; attempt <= 5; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
		}

		jobs, err := svc.ListJobs(ctx, hiring.JobFilter{PageSize: 50})
		if err != nil {
			logger.Debug("cache prime: jobs fetch failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}
		candidates, err := svc.ListCandidates(ctx, hiring.CandidateFilter{PageSize: 200})
		if err != nil {
			logger.Debug("cache prime: candidates fetch failed", slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}
		logger.Info("Local cache primed",
			slog.Int("jobs", jobs.Total),
			slog.Int("candidates", candidates.Total))
		return
	}
	logger.Warn("cache prime: giving up after repeated failures")
}
