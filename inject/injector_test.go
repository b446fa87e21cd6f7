package inject

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KOMKZ/go-yogan-inject/scene"
	"github.com/KOMKZ/go-yogan-inject/service"
	"github.com/KOMKZ/go-yogan-inject/testutil"
)

func typesOf(vs ...any) []reflect.Type {
	out := make([]reflect.Type, len(vs))
	for i, v := range vs {
		out[i] = reflect.TypeOf(v)
	}
	return out
}

func newInjector(t *testing.T, opts ...Option) (*Injector, *observer.ObservedLogs) {
	t.Helper()
	log, logs := testutil.ObservedLogger("inject")
	base := []Option{
		WithLogger(log),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	}
	i, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return i, logs
}

func TestInjector_BuildsRegistryAndInjectables(t *testing.T) {
	i, _ := newInjector(t, WithTypes(typesOf(Services{}, Player{}, Clock{}, 42)...))

	assert.Equal(t, 3, i.Registry().Len())

	inj, ok := i.Injectable(reflect.TypeFor[Player]())
	require.True(t, ok)
	names := make([]string, len(inj.Points))
	for n, p := range inj.Points {
		names[n] = p.Name + ":" + p.Kind.String()
	}
	assert.Equal(t, []string{"Clock:field", "Ticker:field", "Level:field", "Missing:field", "session:property"}, names)

	_, ok = i.Injectable(reflect.TypeFor[Clock]())
	assert.False(t, ok)
	assert.Len(t, i.Injectables(), 1)
}

func TestInjector_InjectFillsPoints(t *testing.T) {
	i, logs := newInjector(t, WithTypes(typesOf(Services{}, Player{})...))

	s := scene.New("arena")
	p := &Player{}
	s.Add(&p.Object)
	i.Inject(p)

	require.NotNil(t, p.Clock)
	assert.Same(t, p.Clock, p.Ticker, "alias resolves the same singleton")
	require.NotNil(t, p.Level)
	assert.Same(t, s, p.Level.scene)
	require.NotNil(t, p.session)
	assert.Same(t, p, p.session.owner)
	assert.True(t, p.clockBeforeSession, "fields are injected before properties")
	assert.Nil(t, p.Missing)
	assert.Nil(t, p.Ignored)

	missing := logs.FilterMessage("service of type *inject.Unbound could not be injected").All()
	require.Len(t, missing, 1)
	assert.Equal(t, "Missing", missing[0].ContextMap()["member"])
	assert.Equal(t, zapcore.ErrorLevel, missing[0].Level)
}

func TestInjector_Scopes(t *testing.T) {
	i, _ := newInjector(t, WithTypes(typesOf(Services{}, Player{})...))
	levelsBefore := levelCalls.Load()

	s1, s2 := scene.New("one"), scene.New("two")
	a, b, c := &Player{}, &Player{}, &Player{}
	s1.Add(&a.Object)
	s1.Add(&b.Object)
	s2.Add(&c.Object)
	for _, p := range []*Player{a, b, c} {
		i.Inject(p)
	}

	assert.Same(t, a.Clock, c.Clock)
	assert.Same(t, a.Level, b.Level)
	assert.NotSame(t, a.Level, c.Level)
	assert.NotSame(t, a.session, b.session)
	assert.EqualValues(t, 2, levelCalls.Load()-levelsBefore)

	level, ok := i.Registry().Find(reflect.TypeFor[*Level]())
	require.True(t, ok)
	assert.Equal(t, 2, level.Len())

	i.Inject(a)
	assert.Equal(t, 2, level.Len(), "re-injecting reuses entries")
}

func TestInjector_FactoryCalledOnceAcrossInjections(t *testing.T) {
	i, _ := newInjector(t, WithTypes(typesOf(Services{}, Player{})...))
	before := clockCalls.Load()

	var first *Clock
	for n := 0; n < 25; n++ {
		p := &Player{}
		i.Inject(p)
		if first == nil {
			first = p.Clock
		}
		assert.Same(t, first, p.Clock)
	}
	assert.EqualValues(t, 1, clockCalls.Load()-before)
}

func TestInjector_InjectIgnoresUnknownTargets(t *testing.T) {
	i, logs := newInjector(t, WithTypes(typesOf(Services{}, Player{})...))

	assert.NotPanics(t, func() {
		i.Inject(nil)
		i.Inject(Player{})
		i.Inject((*Player)(nil))
		i.Inject(&Clock{})
		i.Inject(new(int))
	})
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestInjector_EmbeddedPointsAreNotInherited(t *testing.T) {
	i, _ := newInjector(t, WithTypes(typesOf(Services{}, Player{}, Derived{})...))

	_, ok := i.Injectable(reflect.TypeFor[Derived]())
	assert.False(t, ok)

	d := &Derived{}
	i.Inject(d)
	assert.Nil(t, d.Clock)
}

func TestInjector_MalformedPointsAreSkipped(t *testing.T) {
	i, logs := newInjector(t, WithTypes(typesOf(Services{}, Broken{})...))

	inj, ok := i.Injectable(reflect.TypeFor[Broken]())
	require.True(t, ok)
	require.Len(t, inj.Points, 1)
	assert.Equal(t, "Good", inj.Points[0].Name)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	members := map[string]string{}
	for _, e := range errs {
		members[e.ContextMap()["member"].(string)] = e.Message
	}
	assert.Equal(t, ErrUnsettableMember.Message(), members["hidden"])
	assert.Equal(t, ErrSetterNotFound.Message(), members["NoSetter"])
	assert.Equal(t, ErrSetterSignature.Message(), members["WrongSetter"])
	assert.Equal(t, ErrBadTag.Message(), members["Weird"])

	b := &Broken{}
	i.Inject(b)
	assert.NotNil(t, b.Good)
	assert.Nil(t, b.hidden)
}

func TestInjector_RegistrarFailuresDoNotAbortBuild(t *testing.T) {
	i, logs := newInjector(t, WithTypes(typesOf(
		PanickyServices{}, FailingServices{}, WrongSignatureServices{}, NoHookServices{}, Services{},
	)...))

	_, err := service.Resolve[*Clock](i.Registry(), nil)
	require.NoError(t, err)

	var failures []string
	for _, e := range logs.FilterLevelExact(zapcore.ErrorLevel).All() {
		if strings.HasPrefix(e.Message, "service registration failed") {
			failures = append(failures, e.ContextMap()["type"].(string))
		}
	}
	assert.ElementsMatch(t, []string{
		"inject.PanickyServices", "inject.FailingServices",
		"inject.WrongSignatureServices", "inject.NoHookServices",
	}, failures)

	panicked := logs.Filter(func(e observer.LoggedEntry) bool {
		return e.ContextMap()["type"] == "inject.PanickyServices"
	}).All()
	require.NotEmpty(t, panicked)
	assert.Contains(t, panicked[0].ContextMap()["error"], "registrar exploded")
	assert.Contains(t, panicked[0].ContextMap(), "registrar_stack")
}

func TestInjector_FirstRegisteredBindingWins(t *testing.T) {
	i, logs := newInjector(t, WithTypes(typesOf(Services{}, LateServices{}, Player{})...))

	p := &Player{}
	i.Inject(p)
	require.NotNil(t, p.Clock)
	assert.Positive(t, p.Clock.id)
	assert.Equal(t, 1, logs.FilterMessage("ambiguous service binding: the earlier binding wins").Len())

	i2, _ := newInjector(t, WithTypes(typesOf(LateServices{}, Services{}, Player{})...))
	p2 := &Player{}
	i2.Inject(p2)
	assert.EqualValues(t, -1, p2.Clock.id)
}

func TestInjector_WarnAmbiguousDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarnAmbiguous = false
	_, logs := newInjector(t, WithConfig(cfg), WithTypes(typesOf(Services{}, LateServices{})...))
	assert.Zero(t, logs.FilterMessage("ambiguous service binding: the earlier binding wins").Len())
}

func TestInjector_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RegisterMethod = "register"
	_, err := New(WithConfig(cfg), WithTypes())
	require.Error(t, err)
}

func TestInjector_Reset(t *testing.T) {
	i, _ := newInjector(t, WithTypes(typesOf(Services{}, Player{})...))
	a := &Player{}
	i.Inject(a)

	i.Reset()
	b := &Player{}
	i.Inject(b)
	assert.NotSame(t, a.Clock, b.Clock)
}

func TestInjector_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	i, _ := newInjector(t, WithMeter(mp.Meter("test")), WithTypes(typesOf(Services{}, Player{})...))
	i.Inject(&Player{})
	i.Inject(&Player{})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	var bindings int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					outcome, _ := dp.Attributes.Value("outcome")
					sums[m.Name+"/"+outcome.AsString()] += dp.Value
				}
			case metricdata.Gauge[int64]:
				bindings = data.DataPoints[0].Value
			}
		}
	}

	// 5 points per player, one of them unbound
	assert.EqualValues(t, 8, sums["inject_injections_total/ok"])
	assert.EqualValues(t, 2, sums["inject_injections_total/error"])
	assert.EqualValues(t, 2, sums["inject_resolutions_total/error"])
	assert.EqualValues(t, 3, bindings)
}
