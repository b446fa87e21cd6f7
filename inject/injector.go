// Package inject fills tagged struct members with services from a registry.
//
// Service types embed Service and register bindings from a registration
// method. Consumer types tag members with `inject:""`. An Injector is built
// once from an Inventory of types; Inject then resolves every point of a
// consumer through the registry, using the consumer as the scope key.
package inject

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-inject/config"
	"github.com/KOMKZ/go-yogan-inject/logger"
	"github.com/KOMKZ/go-yogan-inject/service"
)

const meterName = "github.com/KOMKZ/go-yogan-inject/inject"

// Injector holds the service registry and the injectable types. Both are
// read-only once New returns.
type Injector struct {
	registry    *service.Registry
	injectables map[reflect.Type]*Injectable
	config      Config
	log         *logger.CtxZapLogger
	metrics     *Metrics
}

// Option 注入器选项
type Option func(*options)

type options struct {
	inventory Inventory
	config    Config
	log       *logger.CtxZapLogger
	meter     metric.Meter
}

// WithInventory builds from inv instead of the process-wide manifest.
func WithInventory(inv Inventory) Option {
	return func(o *options) { o.inventory = inv }
}

// WithTypes builds from the given types.
func WithTypes(types ...reflect.Type) Option {
	return WithInventory(Manifest(types))
}

func WithConfig(cfg Config) Option {
	return func(o *options) { o.config = cfg }
}

func WithLogger(log *logger.CtxZapLogger) Option {
	return func(o *options) { o.log = log }
}

// WithMeter 使用指定的 Meter 记录指标（默认使用 otel 全局 Meter）
func WithMeter(meter metric.Meter) Option {
	return func(o *options) { o.meter = meter }
}

// New scans the inventory once: service types run their registration
// method, then every struct type with injection points is recorded.
// Registration failures are logged and do not fail the build.
func New(opts ...Option) (*Injector, error) {
	o := options{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := config.ValidateAll(o.config); err != nil {
		return nil, err
	}
	if o.inventory == nil {
		o.inventory = Registered()
	}
	if o.log == nil {
		o.log = logger.GetLogger("inject")
	}

	i := &Injector{
		registry:    service.NewRegistry(),
		injectables: make(map[reflect.Type]*Injectable),
		config:      o.config,
		log:         o.log,
		metrics:     NewMetrics(),
	}

	ctx := context.Background()
	if o.config.Metrics {
		meter := o.meter
		if meter == nil {
			meter = otel.Meter(meterName)
		}
		if err := i.metrics.RegisterMetrics(meter, i.registry); err != nil {
			i.log.WarnCtx(ctx, "inject metrics disabled", zap.Error(err))
		}
	}

	start := time.Now()
	i.build(ctx, o.inventory.Types())
	i.metrics.RecordBuild(ctx, time.Since(start))
	return i, nil
}

func (i *Injector) build(ctx context.Context, types []reflect.Type) {
	registrar := service.NewRegistrar(i.registry, i.log)

	for _, t := range types {
		if t == nil || t.Kind() != reflect.Struct {
			continue
		}
		if marker, ok := markerField(t); ok {
			if err := i.registerService(t, marker, registrar); err != nil {
				i.logRegistrationError(ctx, t, err)
			}
		}
		if inj := scanInjectable(ctx, t, i.log); inj != nil {
			i.injectables[t] = inj
		}
	}

	if i.config.WarnAmbiguous {
		for _, c := range i.registry.Conflicts() {
			i.log.WarnCtx(ctx, "ambiguous service binding: the earlier binding wins",
				zap.Stringer("type", c.Type),
				zap.Stringer("winner", c.Winner),
				zap.Stringer("shadowed", c.Shadowed),
			)
		}
	}

	i.log.DebugCtx(ctx, "injector built",
		zap.Int("types", len(types)),
		zap.Int("bindings", i.registry.Len()),
		zap.Int("injectables", len(i.injectables)),
	)
}

// Registry returns the service registry.
func (i *Injector) Registry() *service.Registry {
	return i.registry
}

// Injectable returns the points of struct type t.
func (i *Injector) Injectable(t reflect.Type) (*Injectable, bool) {
	inj, ok := i.injectables[t]
	return inj, ok
}

// Injectables lists every injectable type ordered by type name.
func (i *Injector) Injectables() []*Injectable {
	out := make([]*Injectable, 0, len(i.injectables))
	for _, inj := range i.injectables {
		out = append(out, inj)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Type.String() < out[b].Type.String() })
	return out
}

// Resolve returns the service of type t for consumer.
func (i *Injector) Resolve(t reflect.Type, consumer any) (any, error) {
	res, err := i.registry.Lookup(t, consumer)
	i.recordResolution(context.Background(), t, res, err)
	return res.Value, err
}

// Reset drops every cached service value. Bindings stay registered.
func (i *Injector) Reset() {
	i.registry.Reset()
}

// Inject fills every injection point of target, which must be a non-nil
// pointer to a struct. Other values and types without points are ignored.
// Failures are logged per point and never abort the remaining points.
func (i *Injector) Inject(target any) {
	i.InjectContext(context.Background(), target)
}

// InjectContext is Inject with a context for log and metric correlation.
func (i *Injector) InjectContext(ctx context.Context, target any) {
	if target == nil {
		return
	}
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		i.log.DebugCtx(ctx, "inject target is not a non-nil pointer", zap.String("target", fmt.Sprintf("%T", target)))
		return
	}
	inj, ok := i.injectables[ptr.Type().Elem()]
	if !ok {
		return
	}
	for _, p := range inj.Points {
		i.injectPoint(ctx, ptr, target, inj.Type, p)
	}
}

func (i *Injector) injectPoint(ctx context.Context, ptr reflect.Value, target any, owner reflect.Type, p Point) {
	pointLog := i.log.With(
		zap.Stringer("target", owner),
		zap.String("member", p.Name),
		zap.Stringer("service", p.Type),
	)

	res, err := i.registry.Lookup(p.Type, target)
	i.recordResolution(ctx, p.Type, res, err)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			pointLog.ErrorCtx(ctx, fmt.Sprintf("service of type %s could not be injected", p.Type))
		} else {
			pointLog.ErrorCtx(ctx, ErrNotInjected.Message(), zap.Error(err))
		}
		i.metrics.RecordInjection(ctx, owner, "error")
		return
	}

	v := reflect.ValueOf(res.Value)
	if !v.IsValid() {
		v = reflect.Zero(p.Type)
	}
	if !v.Type().AssignableTo(p.Type) {
		pointLog.ErrorCtx(ctx, ErrNotInjected.Message(), zap.Stringer("got", v.Type()))
		i.metrics.RecordInjection(ctx, owner, "error")
		return
	}

	if err := setPoint(p, ptr, v); err != nil {
		pointLog.ErrorCtx(ctx, ErrNotInjected.Message(), zap.Error(err))
		i.metrics.RecordInjection(ctx, owner, "error")
		return
	}
	i.metrics.RecordInjection(ctx, owner, "ok")
}

func setPoint(p Point, ptr, v reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrNotInjected.WithMsgf("setting %s panicked: %v", p.Name, r)
		}
	}()
	p.set(ptr, v)
	return nil
}

func (i *Injector) recordResolution(ctx context.Context, t reflect.Type, res service.Resolution, err error) {
	switch {
	case err != nil:
		i.metrics.RecordResolution(ctx, t, "error")
	case res.Created:
		i.metrics.RecordResolution(ctx, t, "created")
	default:
		i.metrics.RecordResolution(ctx, t, "cached")
	}
}
