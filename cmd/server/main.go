package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/o.frames/internal/catalog"
	"github.com/Simplici0/o.frames/internal/config"
	"github.com/Simplici0/o.frames/internal/db"
	"github.com/Simplici0/o.frames/internal/logging"
	"github.com/Simplici0/o.frames/internal/metrics"
	"github.com/Simplici0/o.frames/internal/migrations"
	"github.com/Simplici0/o.frames/internal/seed"
)

type server struct {
	db       *sql.DB
	store    *catalog.Store
	auth     *authService
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func newServer(database *sql.DB, store *catalog.Store, auth *authService, m *metrics.Metrics) *server {
	return &server{
		db:       database,
		store:    store,
		auth:     auth,
		metrics:  m,
		validate: newValidator(),
	}
}

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.UpWithLogger(database, "migrations", logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to run database migrations")
		}
		stats, err := seed.Run(context.Background(), database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed starter catalog")
		}
		logger.Info().Int("inserts", stats.Inserts).Msg("starter catalog ensured")
	}

	srv := newServer(
		database,
		catalog.NewStore(database, cfg.CatalogCacheTTL),
		newAuthService(cfg.AdminAPIKey),
		metrics.New("frames"),
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("env", cfg.Env).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func (s *server) routes(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimates", s.handleEstimate)
		r.Post("/optimize", s.handleOptimize)
		r.Post("/frames/{key}/optimize", s.handleFrameOptimize)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleCatalogList)
			r.Post("/normalize", s.handleNormalize)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.requireAdmin)
				r.Put("/frames/{key}", s.handleFrameUpsert)
				r.Put("/sheets/{key}", s.handleSheetUpsert)
			})
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
