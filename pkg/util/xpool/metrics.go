package xpool

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xtpool/xpool"

	metricSubmitted  = "xtpool.pool.submitted"
	metricRejected   = "xtpool.pool.rejected"
	metricQueueDepth = "xtpool.pool.queue_depth"
)

// poolMetrics pool 级 OTel 指标。nil 值表示未启用。
type poolMetrics struct {
	submitted metric.Int64Counter
	rejected  metric.Int64Counter
	reg       metric.Registration
	attrs     metric.MeasurementOption
}

func newPoolMetrics(provider metric.MeterProvider, name string, mode Mode, depth func() int64) (*poolMetrics, error) {
	if provider == nil {
		return nil, nil
	}
	meter := provider.Meter(instrumentationName)

	submitted, err := meter.Int64Counter(metricSubmitted,
		metric.WithDescription("tasks accepted into the queue"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xpool: create %s: %w", metricSubmitted, err)
	}
	rejected, err := meter.Int64Counter(metricRejected,
		metric.WithDescription("tasks rejected because the queue was full"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xpool: create %s: %w", metricRejected, err)
	}
	gauge, err := meter.Int64ObservableGauge(metricQueueDepth,
		metric.WithDescription("tasks waiting in the queue"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("xpool: create %s: %w", metricQueueDepth, err)
	}

	attrs := metric.WithAttributes(
		attribute.String("pool", name),
		attribute.String("mode", mode.String()),
	)
	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, depth(), attrs)
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("xpool: register %s: %w", metricQueueDepth, err)
	}

	return &poolMetrics{submitted: submitted, rejected: rejected, reg: reg, attrs: attrs}, nil
}

func (m *poolMetrics) accepted() {
	if m != nil {
		m.submitted.Add(context.Background(), 1, m.attrs)
	}
}

func (m *poolMetrics) rejectedFull() {
	if m != nil {
		m.rejected.Add(context.Background(), 1, m.attrs)
	}
}

func (m *poolMetrics) close() error {
	if m == nil {
		return nil
	}
	return m.reg.Unregister()
}
