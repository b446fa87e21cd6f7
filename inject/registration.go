package inject

import (
	"context"
	"fmt"
	"reflect"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-inject/service"
)

var (
	registrarType = reflect.TypeFor[*service.Registrar]()
	errorType     = reflect.TypeFor[error]()
)

// registerService runs the registration method of a service type.
// All failures are returned as layered errors; the caller logs them.
func (i *Injector) registerService(t reflect.Type, marker reflect.StructField, r *service.Registrar) (err error) {
	name := marker.Tag.Get(RegisterTag)
	if name == "" {
		name = i.config.RegisterMethod
	}

	method := reflect.New(t).MethodByName(name)
	if !method.IsValid() {
		return ErrRegistrarNotFound.WithData("method", name).
			WithMsgf("registration method %s not found on %s", name, t)
	}

	mt := method.Type()
	validOut := mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType)
	if mt.NumIn() != 1 || mt.In(0) != registrarType || !validOut {
		return ErrRegistrarSignature.WithData("method", name).
			WithMsgf("%s.%s has signature %s, want func(*service.Registrar) [error]", t, name, mt)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = ErrRegistrarFailed.WithData("method", name).
				WithData("stack", string(debug.Stack())).
				WithMsgf("%s.%s panicked: %v", t, name, rec)
		}
	}()

	out := method.Call([]reflect.Value{reflect.ValueOf(r.For(t))})
	if len(out) == 1 && !out[0].IsNil() {
		cause, _ := out[0].Interface().(error)
		return ErrRegistrarFailed.WithData("method", name).Wrapf(cause, "%s.%s failed", t, name)
	}
	return nil
}

// logRegistrationError keeps the build going after one registrar failed.
func (i *Injector) logRegistrationError(ctx context.Context, t reflect.Type, err error) {
	fields := []zap.Field{zap.Stringer("type", t), zap.Error(err)}
	if le, ok := err.(interface{ Data() map[string]any }); ok {
		if stack, ok := le.Data()["stack"].(string); ok {
			fields = append(fields, zap.String("registrar_stack", stack))
		}
	}
	i.log.ErrorCtx(ctx, fmt.Sprintf("service registration failed for %s", t), fields...)
}
