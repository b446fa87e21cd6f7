package inject

import (
	"reflect"
	"sync"
)

// Inventory enumerates the types the injector is built from.
type Inventory interface {
	Types() []reflect.Type
}

// Manifest is a fixed list of types.
type Manifest []reflect.Type

func (m Manifest) Types() []reflect.Type { return m }

var (
	manifestMu sync.Mutex
	manifest   Manifest
	seen       = make(map[reflect.Type]bool)
)

// Register adds types to the process-wide manifest. Generated init functions
// call it; duplicates are ignored.
func Register(types ...reflect.Type) {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	for _, t := range types {
		if t == nil || seen[t] {
			continue
		}
		seen[t] = true
		manifest = append(manifest, t)
	}
}

// Registered returns a snapshot of the process-wide manifest.
func Registered() Manifest {
	manifestMu.Lock()
	defer manifestMu.Unlock()
	out := make(Manifest, len(manifest))
	copy(out, manifest)
	return out
}
