// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"crypto/rand"
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
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tebiki/internal/api"
	"github.com/starford/tebiki/internal/auth"
	"github.com/starford/tebiki/internal/manualservice"
	"github.com/starford/tebiki/internal/mcpserver"
	"github.com/starford/tebiki/internal/metrics"
	"github.com/starford/tebiki/internal/notify"
	"github.com/starford/tebiki/internal/requestservice"
	"github.com/starford/tebiki/internal/sse"
	"github.com/starford/tebiki/internal/store"
	"github.com/starford/tebiki/internal/taxonomy"
)

// components are the long-lived collaborators shared by the HTTP and MCP
// front ends.
type components struct {
	db       *store.DB
	broker   *sse.Broker
	metrics  *metrics.Metrics
	auth     *auth.Authenticator
	manuals  *manualservice.Service
	requests *requestservice.Service
}

func (c *components) Close() {
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		slog.Error("close database failed", slog.String("error", err.Error()))
	}
}

func newComponents(cfg *Config, logger *slog.Logger) (*components, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	broker := sse.NewBroker(cfg.SSE.Throttle)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.GaugeFunc("sse", "clients", "Connected SSE clients.", func() float64 {
			return float64(broker.ClientCount())
		})
	}

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			db.Close()
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}

	notifier := notify.Multi{
		&notify.LogNotifier{Logger: logger, AdminEmail: cfg.Intake.AdminEmail},
		&notify.BrokerNotifier{Broker: broker},
	}

	manuals := manualservice.NewService(db, taxonomy.Default(), taxonomy.DefaultSteps(), broker, m)
	return &components{
		db:       db,
		broker:   broker,
		metrics:  m,
		auth:     auth.New(cfg.Auth.Options(secret)),
		manuals:  manuals,
		requests: requestservice.NewService(db, db, notifier, broker, m, logger),
	}, nil
}

func newLogger(app *application) *slog.Logger {
	out := app.logOut
	if out == nil {
		out = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
}

// newHandler builds the root router: health, metrics and the API under /api.
func newHandler(cfg *Config, c *components) (http.Handler, error) {
	deps := api.Deps{
		Manuals:  c.manuals,
		Requests: c.requests,
		Auth:     c.auth,
		Events:   c.broker,
	}
	if cfg.Intake.RateLimit != "" {
		limit, err := api.RateLimit(cfg.Intake.RateLimit)
		if err != nil {
			return nil, err
		}
		deps.IntakeLimit = limit
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "If-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
	}).Handler)
	if c.metrics != nil {
		r.Use(c.metrics.Middleware)
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(ctx); err != nil {
			slog.Error("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	if c.metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, c.metrics.Handler())
	}

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(deps))

	return r, nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

func setup(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(app)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	handler, err := newHandler(cfg, c)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		logger.Info("Shutting down server...")

		// Ends open SSE streams.
		c.broker.Close()

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

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	if app.logOut == nil {
		app.logOut = os.Stderr
	}
	logger := newLogger(app)
	slog.SetDefault(logger)

	c, err := newComponents(app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("Starting MCP server", slog.String("sqlite_path", app.config.SQLite.Path))
	return mcpserver.New(c.manuals, c.requests, app.version).ServeStdio()
}
