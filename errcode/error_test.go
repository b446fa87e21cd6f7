package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredError_New(t *testing.T) {
	err := New(21, 1, "service", "error.service.not_found", "service not found")

	assert.Equal(t, 210001, err.Code())
	assert.Equal(t, "service", err.Module())
	assert.Equal(t, "error.service.not_found", err.MsgKey())
	assert.Equal(t, "service not found", err.Error())
	assert.Empty(t, err.Data())
}

func TestLayeredError_WrapKeepsIdentity(t *testing.T) {
	base := New(21, 3, "service", "error.service.factory_failed", "factory failed")
	cause := errors.New("boom")

	wrapped := base.Wrap(cause)
	assert.Equal(t, "factory failed: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, base.Unwrap(), "original must not be modified")

	assert.Same(t, base, base.Wrap(nil))
}

func TestLayeredError_WithDataCopies(t *testing.T) {
	base := New(22, 1, "inject", "error.inject.x", "x")
	a := base.WithData("type", "Foo")
	b := a.WithFields(map[string]any{"member": "Bar"})

	assert.Empty(t, base.Data())
	assert.Equal(t, map[string]any{"type": "Foo"}, a.Data())
	assert.Equal(t, map[string]any{"type": "Foo", "member": "Bar"}, b.Data())
}

func TestLayeredError_Wrapf(t *testing.T) {
	base := New(23, 2, "weaver", "error.weaver.value_receiver", "value receiver")
	err := base.Wrapf(nil, "%s has a value receiver", "Awake")
	assert.Equal(t, "Awake has a value receiver", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestCodeOf(t *testing.T) {
	base := New(23, 9, "weaver", "error.weaver.load", "load failed")
	assert.Equal(t, 230009, CodeOf(fmt.Errorf("outer: %w", base)))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))
}

func TestRegistry_Conflict(t *testing.T) {
	r := NewRegistry()
	a := New(21, 1, "service", "error.service.not_found", "a")

	r.Register(a)
	require.NotPanics(t, func() { r.Register(a) })

	clash := New(21, 1, "inject", "error.inject.other", "b")
	assert.Panics(t, func() { r.Register(clash) })

	key, ok := r.Lookup(210001)
	require.True(t, ok)
	assert.Equal(t, "service:error.service.not_found", key)
	assert.Equal(t, []int{210001}, r.Codes())
}

func TestRegistry_Lock(t *testing.T) {
	r := NewRegistry()
	r.Lock()
	assert.True(t, r.IsLocked())
	assert.Panics(t, func() { r.Register(New(21, 2, "service", "k", "m")) })
}
