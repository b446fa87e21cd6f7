package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-inject/scene"
)

type actor struct{ scene.Object }

type plain struct{ n int }

func TestKind_String(t *testing.T) {
	for _, k := range []Kind{Singleton, SceneScoped, Scoped} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("transient")
	assert.Error(t, err)
	assert.Equal(t, "kind(9)", Kind(9).String())
	assert.Panics(t, func() { New(Kind(9)) })
}

func TestSingleton_AlwaysValid(t *testing.T) {
	c := New(Singleton)
	c.Setup(&plain{})
	assert.True(t, c.IsValidOn(nil))
	assert.True(t, c.IsValidOn(&actor{}))
}

func TestSceneScoped(t *testing.T) {
	s1, s2 := scene.New("one"), scene.New("two")
	a, b, c := &actor{}, &actor{}, &actor{}
	s1.Add(a)
	s1.Add(b)
	s2.Add(c)

	ct := New(SceneScoped)
	ct.Setup(a)
	assert.True(t, ct.IsValidOn(a))
	assert.True(t, ct.IsValidOn(b))
	assert.False(t, ct.IsValidOn(c))
	assert.False(t, ct.IsValidOn(&plain{}))

	ct.Setup(c)
	assert.False(t, ct.IsValidOn(c), "rebinding is ignored")
}

func TestSceneScoped_NilSceneShared(t *testing.T) {
	ct := New(SceneScoped)
	ct.Setup(&plain{})
	assert.True(t, ct.IsValidOn(&plain{}))
	assert.True(t, ct.IsValidOn(nil))
	assert.True(t, ct.IsValidOn(&actor{}), "unattached objects have no scene")
}

func TestScoped_ExactConsumer(t *testing.T) {
	first, second := &plain{n: 1}, &plain{n: 1}

	ct := New(Scoped)
	ct.Setup(first)
	assert.True(t, ct.IsValidOn(first))
	assert.False(t, ct.IsValidOn(second))

	ct.Setup(second)
	assert.False(t, ct.IsValidOn(second))
}

func TestScoped_MapAndSliceConsumersMatchByIdentity(t *testing.T) {
	consumer := map[string]int{"a": 1}
	ct := New(Scoped)
	ct.Setup(consumer)
	assert.True(t, ct.IsValidOn(consumer))
	assert.False(t, ct.IsValidOn(map[string]int{"a": 1}))

	items := []int{1, 2, 3}
	ct = New(Scoped)
	ct.Setup(items)
	assert.True(t, ct.IsValidOn(items))
	assert.False(t, ct.IsValidOn(items[:2]))
	assert.False(t, ct.IsValidOn([]int{1, 2, 3}))
}

func TestScoped_NonComparableStructNeverMatches(t *testing.T) {
	type holder struct{ v any }
	h := holder{v: []int{1}}
	ct := New(Scoped)
	ct.Setup(h)
	assert.False(t, ct.IsValidOn(h))
}
