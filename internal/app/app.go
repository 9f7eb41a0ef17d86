// Package app assembles the HTTP application: configuration, logging,
// metrics, the service layer, and the chi router with its middleware
// chain, plus the server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"tsanalyzer/internal/cache"
	"tsanalyzer/internal/config"
	"tsanalyzer/internal/errors"
	"tsanalyzer/internal/infrastructure"
	customMiddleware "tsanalyzer/internal/middleware"
	"tsanalyzer/internal/services"
	"tsanalyzer/internal/store"
	"tsanalyzer/internal/timeseries"
	handlers "tsanalyzer/internal/transport/http"
)

// AppName identifies the service in startup logs.
const AppName = "tsanalyzer"

// Application bundles the wired components and the running server.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics
	Router  chi.Router
	Server  *http.Server

	SeriesService     *services.SeriesService
	PreprocessService *services.PreprocessService
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() {
	spectral := timeseries.SpectralConfig{
		FallbackSpacing: a.Config.Analysis.FallbackSpacing,
		Tolerance:       a.Config.Analysis.SpacingTolerance,
	}

	repo := store.NewMemoryRepository()
	projectionCache := cache.NewMemoryCache()

	a.SeriesService = services.NewSeriesService(repo, projectionCache, spectral, a.Logger).WithMetrics(a.Metrics)
	a.PreprocessService = services.NewPreprocessService(a.Logger)
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	// Metrics endpoint stays outside the full middleware group.
	r.Handle("/metrics", a.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Metrics(a.Metrics))
		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.MaxBytes(a.Config.Analysis.MaxUploadBytes))

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", handlers.NewHealthHandler().Routes())
		r.Mount("/series", handlers.NewSeriesHandler(a.SeriesService, a.Logger, errorHandler).Routes())
		r.Mount("/preprocess", handlers.NewPreprocessHandler(a.PreprocessService, a.Logger, errorHandler).Routes())
	})

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", handlers.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
