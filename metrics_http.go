package timewatch

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/monitor"
)

const metricsShutdownGrace = 5 * time.Second

// MetricsHTTPServer serves the Prometheus exposition endpoint for one or more
// statistics monitors. Each monitor is bridged through a
// monitor.PrometheusCollector on a dedicated registry, so the endpoint only
// carries timewatch samples.
type MetricsHTTPServer struct {
	addr     string
	registry *prometheus.Registry
	router   *mux.Router
	srv      *http.Server
	ln       net.Listener
}

// NewMetricsHTTPServer builds a metrics server exposing the given monitors on
// GET /metrics.
func NewMetricsHTTPServer(addr string, monitors ...*monitor.Monitor) *MetricsHTTPServer {
	registry := prometheus.NewRegistry()
	for _, m := range monitors {
		registry.MustRegister(monitor.NewPrometheusCollector(m))
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return &MetricsHTTPServer{
		addr:     addr,
		registry: registry,
		router:   router,
	}
}

// Register adds another collector to the exposition, e.g. a second monitor
// registered after startup.
func (s *MetricsHTTPServer) Register(c prometheus.Collector) error {
	err := s.registry.Register(c)
	if err != nil {
		return ewrap.Wrap(err, "registering metrics collector")
	}

	return nil
}

// Start launches the listener.
func (s *MetricsHTTPServer) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "metrics listen")
	}

	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadTimeout,
	}

	go func() {
		// optional server; errors after shutdown are expected
		_ = s.srv.Serve(ln)
	}()

	return nil
}

// Address returns the bound address. Empty if not started yet.
func (s *MetricsHTTPServer) Address() string {
	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Shutdown stops the server.
func (s *MetricsHTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, metricsShutdownGrace)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if err != nil {
		return ewrap.Wrap(err, "metrics shutdown")
	}

	return nil
}
