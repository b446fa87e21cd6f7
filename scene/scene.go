// Package scene models the host runtime the injector serves: scenes that own
// objects, and assets that live outside any scene.
//
// Objects embed Object and are activated by Scene.Add, which calls Awake.
// Assets embed Asset and are activated by Enable, which calls OnEnable.
package scene

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Scene is a loaded unit of the host. Scene identity is pointer identity.
type Scene struct {
	id   uuid.UUID
	name string

	mu      sync.Mutex
	members []any
}

// New creates a scene with a random id.
func New(name string) *Scene {
	return &Scene{id: uuid.New(), name: name}
}

func (s *Scene) ID() uuid.UUID { return s.id }

func (s *Scene) Name() string { return s.name }

func (s *Scene) String() string {
	return fmt.Sprintf("%s(%s)", s.name, s.id)
}

// Add attaches obj to the scene and then calls its Awake method, if any.
// obj must embed Object. Adding an object that belongs to another scene panics.
func (s *Scene) Add(obj Member) {
	attachable, ok := obj.(attacher)
	if !ok {
		panic(fmt.Sprintf("scene: %T does not embed scene.Object", obj))
	}
	attachable.attach(s)

	s.mu.Lock()
	s.members = append(s.members, obj)
	s.mu.Unlock()

	if a, ok := obj.(Awakener); ok {
		a.Awake()
	}
}

// Members returns the objects added so far, in order.
func (s *Scene) Members() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.members))
	copy(out, s.members)
	return out
}

// Member is implemented by everything that can belong to a scene.
type Member interface {
	Scene() *Scene
}

// Awakener is the activation hook of scene objects.
type Awakener interface {
	Awake()
}

// Enabler is the activation hook of assets.
type Enabler interface {
	OnEnable()
}

type attacher interface {
	attach(*Scene)
}

// Of returns the scene consumer belongs to, or nil for anything that is not
// a scene member or is not attached yet.
func Of(consumer any) *Scene {
	m, ok := consumer.(Member)
	if !ok {
		return nil
	}
	if v := reflect.ValueOf(consumer); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return m.Scene()
}

// Object is embedded by scene objects.
type Object struct {
	mu    sync.RWMutex
	scene *Scene
}

func (o *Object) Scene() *Scene {
	if o == nil {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scene
}

func (o *Object) attach(s *Scene) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scene != nil && o.scene != s {
		panic(fmt.Sprintf("scene: object already belongs to %s", o.scene))
	}
	o.scene = s
}

// Asset is embedded by scene-independent data objects.
type Asset struct{}

// Scene always returns nil; assets never belong to a scene.
func (Asset) Scene() *Scene { return nil }

// Enable activates an asset by calling OnEnable, if implemented, and returns it.
func Enable[T any](asset T) T {
	if e, ok := any(asset).(Enabler); ok {
		e.OnEnable()
	}
	return asset
}
