package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hostel-mcp/internal/analysis"
	"hostel-mcp/internal/config"
	"hostel-mcp/internal/narrative"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps request bodies read by the analysis routes.
const maxBodyBytes = 8 << 20

// Server is the HTTP front end of the analysis pipelines.
type Server struct {
	cfg     *config.AppConfig
	synth   *narrative.Synthesizer
	metrics *Metrics
	router  *chi.Mux
}

// NewServer builds the router with every route and middleware mounted.
func NewServer(cfg *config.AppConfig) *Server {
	s := &Server{
		cfg:     cfg,
		synth:   narrative.New(cfg.Thresholds),
		metrics: NewMetrics(),
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(AccessLog)
	s.router.Use(s.metrics.Middleware)
	s.router.Use(RecoverJSON)

	s.router.Post("/late_checkins", s.handleNarrative(analysis.LateCheckins))
	s.router.Post("/on_leave", s.handleNarrative(analysis.OnLeave))
	s.router.Post("/non_checked_in", s.handleNarrative(analysis.NonCheckedIn))
	s.router.Post("/leave_trends", s.handleNarrative(analysis.LeaveTrends))

	s.router.Post("/analysis/{metric}", s.handleAnalysis)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.HTTPAddr until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("HTTP API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
