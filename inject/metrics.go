package inject

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/KOMKZ/go-yogan-inject/service"
	"github.com/KOMKZ/go-yogan-inject/telemetry"
)

// Metrics 注入器指标组件
// 记录服务解析、注入结果和构建耗时
type Metrics struct {
	mu         sync.RWMutex
	registered bool

	resolutions   metric.Int64Counter     // outcome: created, cached, error
	injections    metric.Int64Counter     // outcome: ok, error
	buildDuration metric.Float64Histogram // time spent in New
	bindings      metric.Int64ObservableGauge
}

// NewMetrics returns an unregistered recorder; Record calls are no-ops until
// RegisterMetrics succeeds.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) MetricsName() string { return "inject" }

// RegisterMetrics creates the instruments. registry feeds the bindings gauge.
func (m *Metrics) RegisterMetrics(meter metric.Meter, registry *service.Registry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registered {
		return nil
	}

	b := telemetry.NewMetricsBuilder(meter, "inject")
	var err error
	if m.resolutions, err = b.Counter("resolutions_total", "Service resolutions by outcome"); err != nil {
		return err
	}
	if m.injections, err = b.Counter("injections_total", "Injection points processed by outcome"); err != nil {
		return err
	}
	if m.buildDuration, err = b.DurationHistogram("build_duration_seconds", "Time spent building the injector"); err != nil {
		return err
	}
	if m.bindings, err = b.Gauge("bindings", "Registered service bindings", func(context.Context) (int64, error) {
		return int64(registry.Len()), nil
	}); err != nil {
		return err
	}

	m.registered = true
	return nil
}

func (m *Metrics) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

func (m *Metrics) RecordResolution(ctx context.Context, t reflect.Type, outcome string) {
	if !m.IsRegistered() {
		return
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", t.String()),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordInjection(ctx context.Context, target reflect.Type, outcome string) {
	if !m.IsRegistered() {
		return
	}
	m.injections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", target.String()),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordBuild(ctx context.Context, d time.Duration) {
	if !m.IsRegistered() {
		return
	}
	m.buildDuration.Record(ctx, d.Seconds())
}
