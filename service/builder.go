package service

import "reflect"

// Builder is the typed view of a Binding.
type Builder[T any] struct {
	binding *Binding
}

// TypeOf returns the reflect.Type of T; handy for aliases of interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Bind registers a binding producing T on r.
//
//	service.Bind[*Clock](r, service.TypeOf[Ticker]()).AsSceneScoped().From(NewClock)
func Bind[T any](r *Registrar, aliases ...reflect.Type) *Builder[T] {
	return &Builder[T]{binding: r.Bind(TypeOf[T](), aliases...)}
}

func (x *Builder[T]) AsSingleton() *Builder[T] {
	x.binding.AsSingleton()
	return x
}

func (x *Builder[T]) AsSceneScoped() *Builder[T] {
	x.binding.AsSceneScoped()
	return x
}

func (x *Builder[T]) AsScoped() *Builder[T] {
	x.binding.AsScoped()
	return x
}

func (x *Builder[T]) From(f func() T) *Builder[T] {
	x.binding.Provide(func(any) (any, error) { return f(), nil })
	return x
}

func (x *Builder[T]) FromConsumer(f func(consumer any) T) *Builder[T] {
	x.binding.Provide(func(consumer any) (any, error) { return f(consumer), nil })
	return x
}

func (x *Builder[T]) Provide(f func(consumer any) (T, error)) *Builder[T] {
	x.binding.Provide(func(consumer any) (any, error) {
		v, err := f(consumer)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	return x
}

// Binding returns the untyped binding.
func (x *Builder[T]) Binding() *Binding {
	return x.binding
}
