package monitoring

import (
	"context"
	"fmt"
	"net/http"

	"github.com/compozy/http-client-mcp/pkg/config"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "http-client-mcp"

// Service owns the meter provider and the Prometheus registry behind /metrics.
type Service struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	registry *prom.Registry
	config   config.MonitoringConfig
}

// NewService creates a monitoring service. When monitoring is disabled the
// service hands out a no-op meter and serves no metrics.
func NewService(ctx context.Context, cfg config.MonitoringConfig) (*Service, error) {
	log := logger.FromContext(ctx)
	if !cfg.Enabled {
		log.Debug("Monitoring disabled, using no-op meter")
		return &Service{config: cfg, meter: noop.NewMeterProvider().Meter(meterName)}, nil
	}
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	log.Info("Monitoring enabled", "path", cfg.Path)
	return &Service{
		meter:    provider.Meter(meterName),
		provider: provider,
		registry: registry,
		config:   cfg,
	}, nil
}

// Meter returns the OpenTelemetry meter for custom instrumentation
func (s *Service) Meter() metric.Meter {
	return s.meter
}

func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Path is where the exporter handler should be mounted.
func (s *Service) Path() string {
	return s.config.Path
}

// GinMiddleware returns request metrics middleware, or a pass-through when disabled.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	if !s.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return HTTPMetrics(s.meter)
}

// ExporterHandler returns an HTTP handler for the /metrics endpoint
func (s *Service) ExporterHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("Monitoring service not initialized")); err != nil {
				logger.FromContext(r.Context()).Error("Failed to write response", "error", err)
			}
			return
		}
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

// SetAsGlobal installs the provider as the global OpenTelemetry meter provider.
func (s *Service) SetAsGlobal() {
	if s.provider != nil {
		otel.SetMeterProvider(s.provider)
	}
}

// Shutdown flushes and stops the meter provider.
func (s *Service) Shutdown(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Shutdown(ctx)
	}
	return nil
}
