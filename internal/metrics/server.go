package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// Server serves Prometheus metrics and a liveness endpoint over HTTP.
type Server struct {
	addr     string
	gatherer prometheus.Gatherer
	logger   types.Logger
	server   *http.Server
}

// NewServer creates a new metrics server.
//
// Parameters:
//   - addr: Address to listen on (e.g., ":9090")
//   - gatherer: Metrics source (uses prometheus.DefaultGatherer if nil)
//   - logger: Logger for server events
//
// Returns:
//   - *Server: Initialized server
func NewServer(addr string, gatherer prometheus.Gatherer, logger types.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		addr:     addr,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the HTTP handler serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.healthHandler)

	return mux
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down.
//
// Parameters:
//   - ctx: Context controlling the server lifetime
//
// Returns:
//   - error: Listen failure or shutdown error
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting metrics server", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down metrics server")

	return s.server.Shutdown(shutdownCtx)
}

// healthHandler handles health check requests.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK\n")
}
