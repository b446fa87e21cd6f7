package service

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-inject/logger"
)

// Registrar 服务注册器，传给各服务类型的注册方法
//
// 用法：
//
//	func (Services) Register(r *service.Registrar) {
//		service.Bind[*Clock](r).AsSingleton().From(NewClock)
//	}
type Registrar struct {
	registry *Registry
	log      *logger.CtxZapLogger
	owner    reflect.Type
}

// NewRegistrar writes into registry. A nil log uses the "service" module logger.
func NewRegistrar(registry *Registry, log *logger.CtxZapLogger) *Registrar {
	if log == nil {
		log = logger.GetLogger("service")
	}
	return &Registrar{registry: registry, log: log}
}

// For returns a registrar that attributes its bindings to owner in logs.
func (r *Registrar) For(owner reflect.Type) *Registrar {
	clone := *r
	clone.owner = owner
	return &clone
}

// Registry returns the registry being filled.
func (r *Registrar) Registry() *Registry {
	return r.registry
}

// Bind appends a singleton binding for result. Aliases result cannot be
// assigned to are logged and dropped.
func (r *Registrar) Bind(result reflect.Type, aliases ...reflect.Type) *Binding {
	kept := make([]reflect.Type, 0, len(aliases))
	for _, a := range aliases {
		if a == nil || !result.AssignableTo(a) {
			r.log.ErrorCtx(context.Background(), "service alias dropped: result type is not assignable",
				zap.Stringer("result", result),
				zap.Stringer("alias", typeName{a}),
				zap.Stringer("owner", typeName{r.owner}),
			)
			continue
		}
		kept = append(kept, a)
	}

	b := NewBinding(result, kept...)
	r.registry.Add(b)
	r.log.DebugCtx(context.Background(), "service bound",
		zap.Stringer("result", result),
		zap.Int("aliases", len(kept)),
		zap.Stringer("owner", typeName{r.owner}),
	)
	return b
}

// typeName prints "<nil>" for a nil reflect.Type.
type typeName struct{ t reflect.Type }

func (n typeName) String() string {
	if n.t == nil {
		return "<nil>"
	}
	return n.t.String()
}
