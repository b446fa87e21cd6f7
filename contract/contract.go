// Package contract decides whether a resolved service value may be handed to
// a consumer. A contract is bound to one scope the first time Setup is called
// and answers IsValidOn for later consumers.
package contract

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/KOMKZ/go-yogan-inject/scene"
)

// Kind selects a scoping strategy.
type Kind int

const (
	// Singleton shares one value with every consumer.
	Singleton Kind = iota
	// SceneScoped shares one value per scene of the consumer.
	SceneScoped
	// Scoped gives each consumer its own value.
	Scoped
)

func (k Kind) String() string {
	switch k {
	case Singleton:
		return "singleton"
	case SceneScoped:
		return "scene_scoped"
	case Scoped:
		return "scoped"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{Singleton, SceneScoped, Scoped} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown contract kind %q", s)
}

// Contract ties a cached value to the scope it was created for.
type Contract interface {
	// Setup binds the contract to consumer's scope. Only the first call binds.
	Setup(consumer any)
	// IsValidOn reports whether the bound value may be given to consumer.
	IsValidOn(consumer any) bool
}

// New returns a fresh, unbound contract of kind k. Unknown kinds panic.
func New(k Kind) Contract {
	switch k {
	case Singleton:
		return singleton{}
	case SceneScoped:
		return &sceneScoped{}
	case Scoped:
		return &scoped{}
	default:
		panic(fmt.Sprintf("contract: unknown kind %d", int(k)))
	}
}

type singleton struct{}

func (singleton) Setup(any) {}

func (singleton) IsValidOn(any) bool { return true }

// sceneScoped matches consumers of the same scene. Consumers outside any scene
// share the nil scene.
type sceneScoped struct {
	once  sync.Once
	scene *scene.Scene
}

func (c *sceneScoped) Setup(consumer any) {
	c.once.Do(func() { c.scene = scene.Of(consumer) })
}

func (c *sceneScoped) IsValidOn(consumer any) bool {
	return scene.Of(consumer) == c.scene
}

// scoped matches exactly the consumer seen by Setup.
type scoped struct {
	once     sync.Once
	consumer any
}

func (c *scoped) Setup(consumer any) {
	c.once.Do(func() { c.consumer = consumer })
}

// IsValidOn compares by ==. Maps and slices compare by identity of their
// backing storage. Other non-comparable consumers never match, not even
// themselves.
func (c *scoped) IsValidOn(consumer any) (valid bool) {
	if c.consumer == nil || consumer == nil {
		return c.consumer == nil && consumer == nil
	}
	ta := reflect.TypeOf(c.consumer)
	if ta != reflect.TypeOf(consumer) {
		return false
	}
	switch ta.Kind() {
	case reflect.Map:
		return reflect.ValueOf(c.consumer).Pointer() == reflect.ValueOf(consumer).Pointer()
	case reflect.Slice:
		a, b := reflect.ValueOf(c.consumer), reflect.ValueOf(consumer)
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	}
	if !isComparable(c.consumer) {
		return false
	}
	// structs with interface fields can still hold uncomparable values
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()
	return c.consumer == consumer
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
