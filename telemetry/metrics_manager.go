// Package telemetry wires OpenTelemetry metrics for the injector and the weaver.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsManager Metrics 管理器
//
// 设计目的：
//   - 统一管理 MeterProvider 和导出器
//   - 未启用时返回 no-op Meter，调用方无需判断
type MetricsManager struct {
	provider *sdkmetric.MeterProvider
	config   MetricsConfig
}

// NewMetricsManager 根据配置创建导出器（otlp 或 stdout）
// 不修改 otel 全局 MeterProvider
func NewMetricsManager(ctx context.Context, cfg MetricsConfig) (*MetricsManager, error) {
	if !cfg.Enabled {
		return &MetricsManager{config: cfg}, nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch cfg.Exporter {
	case "otlp":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithTimeout(cfg.ExportTimeout),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	case "stdout":
		exporter, err = stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s metrics exporter: %w", cfg.Exporter, err)
	}

	return NewMetricsManagerWithReader(cfg, sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(cfg.ExportInterval),
		sdkmetric.WithTimeout(cfg.ExportTimeout),
	)), nil
}

// NewMetricsManagerWithReader 使用指定的 Reader 创建（测试中传入 ManualReader）
func NewMetricsManagerWithReader(cfg MetricsConfig, reader sdkmetric.Reader) *MetricsManager {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	return &MetricsManager{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(reader)),
		config:   cfg,
	}
}

// Meter 获取命名 Meter，未启用时返回 no-op Meter
func (m *MetricsManager) Meter(name string) metric.Meter {
	if m.provider == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return m.provider.Meter(name)
}

func (m *MetricsManager) IsEnabled() bool {
	return m.provider != nil
}

// Shutdown 刷新未导出的数据并关闭导出器
func (m *MetricsManager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
