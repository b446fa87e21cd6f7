package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type player struct {
	Object
	awakened int
	seen     *Scene
}

func (p *player) Awake() {
	p.awakened++
	p.seen = p.Scene()
}

type settings struct {
	Asset
	enabled bool
}

func (s *settings) OnEnable() { s.enabled = true }

func TestScene_AddAttachesBeforeAwake(t *testing.T) {
	s := New("level-1")
	p := &player{}

	s.Add(p)

	assert.Equal(t, 1, p.awakened)
	assert.Same(t, s, p.seen)
	assert.Same(t, s, Of(p))
	assert.Equal(t, []any{p}, s.Members())
}

func TestScene_AddToSecondScenePanics(t *testing.T) {
	p := &player{}
	New("a").Add(p)
	assert.Panics(t, func() { New("b").Add(p) })
}

func TestScene_Identity(t *testing.T) {
	a, b := New("same"), New("same")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, a.String(), "same(")
}

func TestOf_NonMembers(t *testing.T) {
	assert.Nil(t, Of(nil))
	assert.Nil(t, Of("plain"))
	assert.Nil(t, Of(&player{}), "not attached yet")

	var p *player
	assert.Nil(t, Of(p))
	assert.Nil(t, Of(&settings{}))
}

func TestEnable(t *testing.T) {
	cfg := Enable(&settings{})
	require.True(t, cfg.enabled)
	assert.Nil(t, Of(cfg))
}
