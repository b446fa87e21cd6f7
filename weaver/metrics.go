package weaver

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/KOMKZ/go-yogan-inject/telemetry"
)

// Metrics records weaver runs. A nil *Metrics records nothing.
type Metrics struct {
	runs     metric.Int64Counter     // outcome: ok, error
	files    metric.Int64Counter     // action: written, removed
	types    metric.Int64Counter     // kind: registered, woven
	duration metric.Float64Histogram // time spent in Run
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	b := telemetry.NewMetricsBuilder(meter, "weaver")
	m := &Metrics{}
	var err error
	if m.runs, err = b.Counter("runs_total", "Weaver runs by outcome"); err != nil {
		return nil, err
	}
	if m.files, err = b.Counter("files_total", "Files written or removed"); err != nil {
		return nil, err
	}
	if m.types, err = b.Counter("types_total", "Types registered or woven"); err != nil {
		return nil, err
	}
	if m.duration, err = b.DurationHistogram("run_duration_seconds", "Time spent in a weaver run"); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordRun(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.duration.Record(ctx, d.Seconds())
}

func (m *Metrics) recordReport(ctx context.Context, r *Report) {
	if m == nil {
		return
	}
	m.files.Add(ctx, int64(len(r.Written)), metric.WithAttributes(attribute.String("action", "written")))
	m.files.Add(ctx, int64(len(r.Removed)), metric.WithAttributes(attribute.String("action", "removed")))
	m.types.Add(ctx, int64(r.Registered), metric.WithAttributes(attribute.String("kind", "registered")))
	m.types.Add(ctx, int64(r.Woven), metric.WithAttributes(attribute.String("kind", "woven")))
}
