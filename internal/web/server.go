package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/charts"
	"github.com/apodwikat/abtest/internal/stats"
)

// Server serves the dashboard and the JSON API.
type Server struct {
	router  chi.Router
	addr    string
	svc     *stats.Service
	charts  *charts.Builder
	metrics http.Handler
	logger  *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

func NewServer(addr string, svc *stats.Service, cb *charts.Builder, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router: chi.NewRouter(),
		addr:   addr,
		svc:    svc,
		charts: cb,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(HTMX)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Pages
	r.Get("/", s.handleDashboard)
	r.Get("/planning", s.handlePlanning)
	r.Post("/experiment", s.handleExperiment)
	r.Get("/charts/{name}", s.handleChart)
	r.Get("/runs", s.handleRuns)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sample-size", s.handleAPISampleSize)
		r.Get("/probability", s.handleAPIProbability)
		r.Get("/chi-square", s.handleAPIChiSquare)
		r.Post("/experiments", s.handleAPIRunExperiment)
		r.Delete("/experiments", s.handleAPIResetExperiment)
		r.Get("/runs", s.handleAPIRuns)
		r.Get("/runs/{id}", s.handleAPIRun)
	})
}

// ServeHTTP lets the server be used directly as a handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
