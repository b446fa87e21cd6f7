package service

import (
	"reflect"
	"sync"
)

// Registry 服务注册表（按注册顺序保存绑定）
// 查找时返回第一个能创建目标类型的绑定
type Registry struct {
	mu       sync.RWMutex
	bindings []*Binding
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add 追加绑定
func (r *Registry) Add(b *Binding) {
	r.mu.Lock()
	r.bindings = append(r.bindings, b)
	r.mu.Unlock()
}

// Find returns the first binding for t.
func (r *Registry) Find(t reflect.Type) (*Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bindings {
		if b.CanCreate(t) {
			return b, true
		}
	}
	return nil, false
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Binding *Binding
	Value   any
	Created bool // false when the value came from the cache
}

// Lookup resolves t for consumer and reports whether the value was created.
func (r *Registry) Lookup(t reflect.Type, consumer any) (Resolution, error) {
	b, ok := r.Find(t)
	if !ok {
		return Resolution{}, ErrServiceNotFound.WithData("type", t.String()).
			WithMsgf("no service registered for %s", t)
	}
	v, created, err := b.resolve(consumer)
	if err != nil {
		return Resolution{Binding: b}, err
	}
	return Resolution{Binding: b, Value: v, Created: created}, nil
}

// Resolve returns the value of type t for consumer.
func (r *Registry) Resolve(t reflect.Type, consumer any) (any, error) {
	res, err := r.Lookup(t, consumer)
	return res.Value, err
}

// Bindings 按注册顺序返回绑定快照
func (r *Registry) Bindings() []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// Reset drops the cached values of every binding. Bindings stay registered.
func (r *Registry) Reset() {
	for _, b := range r.Bindings() {
		b.Reset()
	}
}

// Conflict names a binding that can never be selected for Type because an
// earlier binding claims it.
type Conflict struct {
	Type     reflect.Type
	Winner   *Binding
	Shadowed *Binding
}

// Conflicts lists every type claimed by more than one binding.
func (r *Registry) Conflicts() []Conflict {
	bindings := r.Bindings()
	winners := make(map[reflect.Type]*Binding)
	var out []Conflict
	for _, b := range bindings {
		types := append([]reflect.Type{b.result}, b.aliases...)
		for _, t := range types {
			if w, ok := winners[t]; ok {
				if w != b {
					out = append(out, Conflict{Type: t, Winner: w, Shadowed: b})
				}
				continue
			}
			winners[t] = b
		}
	}
	return out
}

// Resolve is the typed form of Registry.Resolve.
func Resolve[T any](r *Registry, consumer any) (T, error) {
	var zero T
	v, err := r.Resolve(TypeOf[T](), consumer)
	if err != nil || v == nil {
		return zero, err
	}
	return v.(T), nil
}
