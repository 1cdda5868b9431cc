package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the API routes.
type Options struct {
	// WindowDays is the feed window used when a request omits its dates.
	WindowDays int
	// AuthToken gates /api routes when non-empty.
	AuthToken string
}

// Server exposes health, readiness, metrics, and the NEO risk API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 routes backed by repo.
func NewServer(addr string, ready sharedobs.ReadinessChecker, repo domain.NeoRepository, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withRequestID(logRequests(logger, mux)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	api := &apiHandler{repo: repo, windowDays: opts.WindowDays, logger: logger}
	mux.Handle("GET /api/v1/neos", requireAuth(opts.AuthToken, http.HandlerFunc(api.listNeos)))
	mux.Handle("GET /api/v1/neos/{id}", requireAuth(opts.AuthToken, http.HandlerFunc(api.getNeo)))
	mux.Handle("GET /api/v1/risk", requireAuth(opts.AuthToken, http.HandlerFunc(api.scoreRisk)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
