package service

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/KOMKZ/go-yogan-inject/contract"
)

// Factory creates a service value for consumer. consumer is the object being
// injected, or nil when resolving outside an injection.
type Factory func(consumer any) (any, error)

// Binding describes how one service type is produced and cached.
// Values are cached per contract scope and never evicted.
type Binding struct {
	result  reflect.Type
	aliases []reflect.Type
	kind    contract.Kind
	factory Factory

	mu      sync.Mutex
	entries []entry
}

type entry struct {
	contract contract.Contract
	value    any
}

// NewBinding creates a singleton binding for result without a factory.
// Aliases are taken as given; Registrar.Bind validates them.
func NewBinding(result reflect.Type, aliases ...reflect.Type) *Binding {
	return &Binding{result: result, aliases: aliases, kind: contract.Singleton}
}

func (b *Binding) ResultType() reflect.Type { return b.result }

// Aliases returns the extra types this binding can be looked up by.
func (b *Binding) Aliases() []reflect.Type {
	out := make([]reflect.Type, len(b.aliases))
	copy(out, b.aliases)
	return out
}

func (b *Binding) Kind() contract.Kind { return b.kind }

func (b *Binding) AsSingleton() *Binding   { return b.as(contract.Singleton) }
func (b *Binding) AsSceneScoped() *Binding { return b.as(contract.SceneScoped) }
func (b *Binding) AsScoped() *Binding      { return b.as(contract.Scoped) }

func (b *Binding) as(k contract.Kind) *Binding {
	b.mu.Lock()
	b.kind = k
	b.mu.Unlock()
	return b
}

// From sets a factory that ignores the consumer.
func (b *Binding) From(f func() any) *Binding {
	return b.Provide(func(any) (any, error) { return f(), nil })
}

// FromConsumer sets a factory that receives the consumer.
func (b *Binding) FromConsumer(f func(consumer any) any) *Binding {
	return b.Provide(func(consumer any) (any, error) { return f(consumer), nil })
}

// Provide sets a factory that may fail. Failures are not cached.
func (b *Binding) Provide(f Factory) *Binding {
	b.mu.Lock()
	b.factory = f
	b.mu.Unlock()
	return b
}

// CanCreate reports whether t is the result type or one of the aliases.
func (b *Binding) CanCreate(t reflect.Type) bool {
	if t == b.result {
		return true
	}
	for _, a := range b.aliases {
		if a == t {
			return true
		}
	}
	return false
}

// Resolve returns the cached value whose contract accepts consumer, creating
// and caching a new one on a miss.
func (b *Binding) Resolve(consumer any) (any, error) {
	v, _, err := b.resolve(consumer)
	return v, err
}

// resolve holds the binding lock across lookup and insert, so concurrent
// misses for one scope call the factory once.
func (b *Binding) resolve(consumer any) (value any, created bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.entries {
		if e.contract.IsValidOn(consumer) {
			return e.value, false, nil
		}
	}

	if b.factory == nil {
		return nil, false, ErrMissingFactory.WithData("type", b.result.String()).
			WithMsgf("service binding for %s has no factory", b.result)
	}

	value, err = b.create(consumer)
	if err != nil {
		return nil, false, err
	}

	c := contract.New(b.kind)
	c.Setup(consumer)
	b.entries = append(b.entries, entry{contract: c, value: value})
	return value, true, nil
}

func (b *Binding) create(consumer any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrFactoryPanic.WithData("type", b.result.String()).
				WithData("panic", fmt.Sprint(r)).
				WithMsgf("factory for %s panicked: %v", b.result, r)
		}
	}()

	value, err = b.factory(consumer)
	if err != nil {
		return nil, ErrFactoryFailed.WithData("type", b.result.String()).
			Wrapf(err, "factory for %s failed", b.result)
	}
	if value != nil && !reflect.TypeOf(value).AssignableTo(b.result) {
		return nil, ErrWrongType.WithData("type", b.result.String()).
			WithMsgf("factory for %s returned %T", b.result, value)
	}
	return value, nil
}

// Len returns the number of cached scope entries.
func (b *Binding) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Reset drops every cached value.
func (b *Binding) Reset() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s(%s)", b.kind, b.result)
}
