package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetricsConfig_Validate(t *testing.T) {
	assert.NoError(t, MetricsConfig{}.Validate())

	cfg := DefaultMetricsConfig()
	cfg.Enabled = true
	require.NoError(t, cfg.Validate())

	cfg.Exporter = "otlp"
	assert.Error(t, cfg.Validate(), "otlp needs an endpoint")
	cfg.Endpoint = "localhost:4317"
	assert.NoError(t, cfg.Validate())

	cfg.Exporter = "prometheus"
	assert.Error(t, cfg.Validate())
}

func TestMetricsManager_Disabled(t *testing.T) {
	m, err := NewMetricsManager(context.Background(), MetricsConfig{})
	require.NoError(t, err)
	assert.False(t, m.IsEnabled())
	assert.NotNil(t, m.Meter("x"))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestMetricsManager_Stdout(t *testing.T) {
	cfg := DefaultMetricsConfig()
	cfg.Enabled = true
	m, err := NewMetricsManager(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, m.IsEnabled())
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestMetricsBuilder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m := NewMetricsManagerWithReader(DefaultMetricsConfig(), reader)
	defer m.Shutdown(context.Background())

	b := NewMetricsBuilder(m.Meter("test"), "weaver")
	files, err := b.Counter("files_total", "Files woven")
	require.NoError(t, err)
	_, err = b.Gauge("packages", "Packages loaded", func(context.Context) (int64, error) { return 4, nil })
	require.NoError(t, err)
	hist, err := b.DurationHistogram("duration_seconds", "Run duration")
	require.NoError(t, err)

	ctx := context.Background()
	files.Add(ctx, 2)
	files.Add(ctx, 3)
	hist.Record(ctx, 0.25)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			found[metric.Name] = true
			switch data := metric.Data.(type) {
			case metricdata.Sum[int64]:
				assert.Equal(t, int64(5), data.DataPoints[0].Value)
			case metricdata.Gauge[int64]:
				assert.Equal(t, int64(4), data.DataPoints[0].Value)
			case metricdata.Histogram[float64]:
				assert.Equal(t, uint64(1), data.DataPoints[0].Count)
			}
		}
	}
	assert.True(t, found["weaver_files_total"])
	assert.True(t, found["weaver_packages"])
	assert.True(t, found["weaver_duration_seconds"])
}
