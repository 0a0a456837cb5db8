package httptool

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusFault   = "fault"
)

type metrics struct {
	invocations   metric.Int64Counter
	latency       metric.Float64Histogram
	responseBytes metric.Int64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}
	invocations, err := meter.Int64Counter(
		"http_mcp_tool_invocations_total",
		metric.WithDescription("Total HTTP tool invocations grouped by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invocation counter: %w", err)
	}
	latency, err := meter.Float64Histogram(
		"http_mcp_tool_latency_seconds",
		metric.WithDescription("HTTP tool invocation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}
	responseBytes, err := meter.Int64Histogram(
		"http_mcp_tool_response_bytes",
		metric.WithDescription("HTTP response body size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create response size histogram: %w", err)
	}
	return &metrics{invocations: invocations, latency: latency, responseBytes: responseBytes}, nil
}

// record captures one invocation. faultCode is empty unless status is StatusFault.
func (m *metrics) record(
	ctx context.Context,
	tool string,
	status string,
	duration time.Duration,
	responseBytes int,
	faultCode string,
) {
	attrs := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.String("status", status),
	}
	if faultCode != "" {
		attrs = append(attrs, attribute.String("fault_code", faultCode))
	}
	m.invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.latency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	))
	if responseBytes > 0 {
		m.responseBytes.Record(ctx, int64(responseBytes), metric.WithAttributes(
			attribute.String("tool", tool),
		))
	}
}
