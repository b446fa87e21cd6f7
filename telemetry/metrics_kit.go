package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// MetricsBuilder 指标构建器，为所有指标添加统一的命名空间前缀
type MetricsBuilder struct {
	meter     metric.Meter
	namespace string
}

func NewMetricsBuilder(meter metric.Meter, namespace string) *MetricsBuilder {
	return &MetricsBuilder{meter: meter, namespace: namespace}
}

func (b *MetricsBuilder) fullName(name string) string {
	if b.namespace == "" {
		return name
	}
	return b.namespace + "_" + name
}

// Counter 创建计数器（单位 {count}）
func (b *MetricsBuilder) Counter(name, desc string) (metric.Int64Counter, error) {
	return b.CounterWithUnit(name, desc, "{count}")
}

func (b *MetricsBuilder) CounterWithUnit(name, desc, unit string) (metric.Int64Counter, error) {
	return b.meter.Int64Counter(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	)
}

// DurationHistogram 创建耗时直方图（单位：秒）
func (b *MetricsBuilder) DurationHistogram(name, desc string) (metric.Float64Histogram, error) {
	return b.meter.Float64Histogram(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit("s"),
	)
}

// Gauge 创建可观测仪表，采集时调用 callback 读取当前值
func (b *MetricsBuilder) Gauge(name, desc string, callback func(context.Context) (int64, error)) (metric.Int64ObservableGauge, error) {
	return b.meter.Int64ObservableGauge(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			v, err := callback(ctx)
			if err != nil {
				return err
			}
			o.Observe(v)
			return nil
		}),
	)
}
