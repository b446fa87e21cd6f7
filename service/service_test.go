package service

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KOMKZ/go-yogan-inject/contract"
	"github.com/KOMKZ/go-yogan-inject/scene"
	"github.com/KOMKZ/go-yogan-inject/testutil"
)

type Clock struct{ id int }

func (c *Clock) Tick() int { return c.id }

type Ticker interface{ Tick() int }

type actor struct{ scene.Object }

func newRegistrar(t *testing.T) (*Registrar, *observer.ObservedLogs) {
	t.Helper()
	log, logs := testutil.ObservedLogger("service")
	return NewRegistrar(NewRegistry(), log), logs
}

func counter() (func() *Clock, *atomic.Int32) {
	var n atomic.Int32
	return func() *Clock { return &Clock{id: int(n.Add(1))} }, &n
}

func TestBinding_DefaultsToSingleton(t *testing.T) {
	r, _ := newRegistrar(t)
	b := Bind[*Clock](r).Binding()
	assert.Equal(t, contract.Singleton, b.Kind())
	assert.Equal(t, reflect.TypeFor[*Clock](), b.ResultType())
	assert.Equal(t, "singleton(*service.Clock)", b.String())
}

func TestBinding_SingletonIdentity(t *testing.T) {
	r, _ := newRegistrar(t)
	newClock, calls := counter()
	Bind[*Clock](r).AsSingleton().From(newClock)

	s1, s2 := scene.New("a"), scene.New("b")
	a, b := &actor{}, &actor{}
	s1.Add(a)
	s2.Add(b)

	v1, err := Resolve[*Clock](r.Registry(), a)
	require.NoError(t, err)
	v2, err := Resolve[*Clock](r.Registry(), b)
	require.NoError(t, err)
	v3, err := Resolve[*Clock](r.Registry(), nil)
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Same(t, v1, v3)
	assert.EqualValues(t, 1, calls.Load())
}

func TestBinding_SceneScopedOneEntryPerScene(t *testing.T) {
	r, _ := newRegistrar(t)
	newClock, calls := counter()
	b := Bind[*Clock](r).AsSceneScoped().From(newClock).Binding()

	s1, s2 := scene.New("a"), scene.New("b")
	a1, a2, b1 := &actor{}, &actor{}, &actor{}
	s1.Add(a1)
	s1.Add(a2)
	s2.Add(b1)

	va1, _ := b.Resolve(a1)
	va2, _ := b.Resolve(a2)
	vb1, _ := b.Resolve(b1)

	assert.Same(t, va1, va2)
	assert.NotSame(t, va1, vb1)
	assert.Equal(t, 2, b.Len())
	assert.EqualValues(t, 2, calls.Load())
}

func TestBinding_ScopedPerConsumer(t *testing.T) {
	r, _ := newRegistrar(t)
	b := Bind[*Clock](r).AsScoped().FromConsumer(func(consumer any) *Clock {
		return &Clock{id: len(consumer.(*actor).Scene().Name())}
	}).Binding()

	s := scene.New("a")
	x, y := &actor{}, &actor{}
	s.Add(x)
	s.Add(y)

	vx1, _ := b.Resolve(x)
	vx2, _ := b.Resolve(x)
	vy, _ := b.Resolve(y)

	assert.Same(t, vx1, vx2)
	assert.NotSame(t, vx1, vy)
	assert.Equal(t, 2, b.Len())
}

func TestBinding_FactoryErrorsAreNotCached(t *testing.T) {
	r, _ := newRegistrar(t)
	fail := true
	b := Bind[*Clock](r).Provide(func(any) (*Clock, error) {
		if fail {
			return nil, errors.New("not ready")
		}
		return &Clock{id: 7}, nil
	}).Binding()

	_, err := b.Resolve(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFactoryFailed)
	assert.Contains(t, err.Error(), "not ready")
	assert.Equal(t, 0, b.Len())

	fail = false
	v, err := b.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, 7, v.(*Clock).id)
}

func TestBinding_FactoryPanicIsRecovered(t *testing.T) {
	r, _ := newRegistrar(t)
	b := Bind[*Clock](r).From(func() *Clock { panic("kaboom") }).Binding()

	_, err := b.Resolve(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFactoryPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestBinding_MissingFactory(t *testing.T) {
	r, _ := newRegistrar(t)
	Bind[*Clock](r)

	_, err := r.Registry().Resolve(reflect.TypeFor[*Clock](), nil)
	assert.ErrorIs(t, err, ErrMissingFactory)
}

func TestBinding_WrongTypeFromUntypedFactory(t *testing.T) {
	r, _ := newRegistrar(t)
	b := r.Bind(reflect.TypeFor[*Clock]()).From(func() any { return "clock" })

	_, err := b.Resolve(nil)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestBinding_ConcurrentMissCreatesOnce(t *testing.T) {
	r, _ := newRegistrar(t)
	newClock, calls := counter()
	b := Bind[*Clock](r).From(newClock).Binding()

	var wg sync.WaitGroup
	results := make([]any, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = b.Resolve(nil)
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.Same(t, results[0], v)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, b.Len())
}

func TestRegistry_Aliases(t *testing.T) {
	r, logs := newRegistrar(t)
	Bind[*Clock](r, TypeOf[Ticker](), TypeOf[string]()).From(func() *Clock { return &Clock{id: 3} })

	ticker, err := Resolve[Ticker](r.Registry(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, ticker.Tick())

	_, err = r.Registry().Resolve(TypeOf[string](), nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	dropped := logs.FilterMessage("service alias dropped: result type is not assignable").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, "string", dropped[0].ContextMap()["alias"])
}

func TestRegistry_FirstRegisteredWins(t *testing.T) {
	r, _ := newRegistrar(t)
	first := Bind[*Clock](r).From(func() *Clock { return &Clock{id: 1} }).Binding()
	second := Bind[*Clock](r, TypeOf[Ticker]()).From(func() *Clock { return &Clock{id: 2} }).Binding()

	v, err := Resolve[*Clock](r.Registry(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v.id)

	ticker, err := Resolve[Ticker](r.Registry(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ticker.Tick(), "only the second binding claims the alias")

	conflicts := r.Registry().Conflicts()
	require.Len(t, conflicts, 1)
	assert.Same(t, first, conflicts[0].Winner)
	assert.Same(t, second, conflicts[0].Shadowed)
	assert.Equal(t, TypeOf[*Clock](), conflicts[0].Type)
}

func TestRegistry_LookupReportsCreation(t *testing.T) {
	r, _ := newRegistrar(t)
	Bind[*Clock](r).From(func() *Clock { return &Clock{} })

	res, err := r.Registry().Lookup(TypeOf[*Clock](), nil)
	require.NoError(t, err)
	assert.True(t, res.Created)

	res, err = r.Registry().Lookup(TypeOf[*Clock](), nil)
	require.NoError(t, err)
	assert.False(t, res.Created)

	r.Registry().Reset()
	res, err = r.Registry().Lookup(TypeOf[*Clock](), nil)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 1, r.Registry().Len())
}

func TestBinding_ScopedMapConsumerReusesEntry(t *testing.T) {
	r, _ := newRegistrar(t)
	newClock, calls := counter()
	b := Bind[*Clock](r).AsScoped().From(newClock).Binding()

	consumer := map[string]any{"owner": "hud"}
	v1, err := b.Resolve(consumer)
	require.NoError(t, err)
	v2, err := b.Resolve(consumer)
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 1, b.Len())
	assert.EqualValues(t, 1, calls.Load())
}
