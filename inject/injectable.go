package inject

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-yogan-inject/logger"
)

// PointKind tells how a point is written.
type PointKind int

const (
	// FieldPoint is an exported field assigned directly.
	FieldPoint PointKind = iota
	// PropertyPoint is a member written through a setter method.
	PropertyPoint
)

func (k PointKind) String() string {
	if k == PropertyPoint {
		return "property"
	}
	return "field"
}

// Point is one member that receives a service.
type Point struct {
	Name string       // field name
	Type reflect.Type // declared type, used as the service lookup key
	Kind PointKind

	index  int           // field index, FieldPoint only
	setter reflect.Value // method func taking (receiver, value), PropertyPoint only
}

// set writes v into the struct ptr points to.
func (p Point) set(ptr, v reflect.Value) {
	if p.Kind == PropertyPoint {
		p.setter.Call([]reflect.Value{ptr, v})
		return
	}
	ptr.Elem().Field(p.index).Set(v)
}

// Injectable is a struct type with at least one injection point.
// Points list fields first, then properties, each in declaration order.
type Injectable struct {
	Type   reflect.Type
	Points []Point
}

// scanInjectable collects the directly declared points of struct type t.
// Malformed points are logged and skipped. It returns nil when t has none.
func scanInjectable(ctx context.Context, t reflect.Type, log *logger.CtxZapLogger) *Injectable {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields, props []Point
	ptrType := reflect.PointerTo(t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(Tag)
		if !ok {
			continue
		}
		fieldLog := log.With(zap.Stringer("type", t), zap.String("member", f.Name))

		opts, ok := parseTag(tag)
		if !ok {
			fieldLog.ErrorCtx(ctx, ErrBadTag.Message(), zap.String("tag", tag))
			continue
		}

		if opts.setter == "" {
			if !f.IsExported() {
				fieldLog.ErrorCtx(ctx, ErrUnsettableMember.Message(),
					zap.String("reason", "unexported field without setter"))
				continue
			}
			fields = append(fields, Point{Name: f.Name, Type: f.Type, Kind: FieldPoint, index: i})
			continue
		}

		m, ok := ptrType.MethodByName(opts.setter)
		if !ok {
			fieldLog.ErrorCtx(ctx, ErrSetterNotFound.Message(), zap.String("setter", opts.setter))
			continue
		}
		// method type includes the receiver
		mt := m.Type
		if mt.NumIn() != 2 || mt.In(1) != f.Type || mt.NumOut() != 0 {
			fieldLog.ErrorCtx(ctx, ErrSetterSignature.Message(),
				zap.String("setter", opts.setter),
				zap.Stringer("signature", mt),
				zap.String("want", "func("+f.Type.String()+")"),
			)
			continue
		}
		props = append(props, Point{Name: f.Name, Type: f.Type, Kind: PropertyPoint, setter: m.Func})
	}

	if len(fields)+len(props) == 0 {
		return nil
	}
	return &Injectable{Type: t, Points: append(fields, props...)}
}
