package server

import (
	"context"
	"net/http"
	"time"

	"github.com/opmux/opmux/internal/config"
	"github.com/opmux/opmux/internal/health"
	"github.com/opmux/opmux/internal/observability"
	"github.com/opmux/opmux/internal/util"
)

// MetricsServer serves the metrics endpoint and the health probes on
// a separate listener, so operational traffic stays off the main
// server.
type MetricsServer struct {
	httpServer *http.Server
	logger     observability.Logger
}

// NewMetricsServer creates a metrics server from the configuration.
func NewMetricsServer(
	cfg config.MetricsConfig,
	metrics *observability.Metrics,
	checker *health.Checker,
	logger observability.Logger,
) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())
	mux.HandleFunc("/health", checker.HealthHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the metrics server and blocks until it stops.
func (s *MetricsServer) Start() error {
	s.logger.Info("starting metrics server",
		observability.String("address", s.httpServer.Addr),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return util.WrapError(err, "metrics server error")
	}
	return nil
}

// Stop stops the metrics server gracefully.
func (s *MetricsServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping metrics server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the metrics server handler, mainly for tests.
func (s *MetricsServer) Handler() http.Handler {
	return s.httpServer.Handler
}
