package inject

import (
	"reflect"
	"strings"
)

// Service marks a type as a provider of service bindings. Embed it and give
// the type a registration method:
//
//	type Services struct {
//		inject.Service `register:"Bind"`
//	}
//
//	func (Services) Bind(r *service.Registrar) { ... }
//
// Without a register tag the method named by Config.RegisterMethod is used.
// The method is called once, on a zero value, while the injector is built.
type Service struct{}

const (
	// Tag marks an injection point: `inject:""` for an exported field,
	// `inject:"setter=SetName"` for a member set through a method.
	Tag = "inject"
	// RegisterTag names the registration method on the embedded Service marker.
	RegisterTag = "register"
)

var serviceType = reflect.TypeFor[Service]()

// markerField returns the embedded Service field of t, if any.
func markerField(t reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == serviceType {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// tagOptions is the parsed value of an inject tag.
type tagOptions struct {
	setter string
}

func parseTag(tag string) (tagOptions, bool) {
	var opts tagOptions
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || key != "setter" || value == "" {
			return opts, false
		}
		opts.setter = value
	}
	return opts, true
}
