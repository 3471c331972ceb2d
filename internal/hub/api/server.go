// Package api exposes the hub's record store over HTTP: idempotent submission,
// unsynced retrieval, batch synced-marking and export. The contract is the
// important part; the router is deliberately thin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ftcpit/scoutsync/internal/hub/models"
	"github.com/ftcpit/scoutsync/internal/logging"
)

// RecordStore is the store surface the API needs. *hub.Store satisfies it.
type RecordStore interface {
	Upsert(ctx context.Context, id, payload string) error
	ListUnsynced(ctx context.Context) ([]models.Record, error)
	ListAll(ctx context.Context) ([]models.Record, error)
	MarkSynced(ctx context.Context, ids []string) error
	Counts(ctx context.Context) (total int, unsynced int, err error)
}

type Server struct {
	address string
	store   RecordStore
	logger  logging.Logger
	metrics *Metrics
}

func NewServer(address string, store RecordStore, logger logging.Logger) *Server {
	return &Server{
		address: address,
		store:   store,
		logger:  logger.With("module", "api"),
		metrics: NewMetrics(store),
	}
}

// Router builds the chi router for the submission API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleDashboard)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/submit", s.handleSubmit)
		r.Get("/unsynced", s.handleUnsynced)
		r.Post("/mark-synced", s.handleMarkSynced)
		r.Get("/all", s.handleAll)
		r.Get("/export-csv", s.handleExportCSV)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
