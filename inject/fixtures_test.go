package inject

import (
	"errors"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-inject/scene"
	"github.com/KOMKZ/go-yogan-inject/service"
)

var (
	clockCalls   atomic.Int32
	levelCalls   atomic.Int32
	sessionCalls atomic.Int32
)

type Ticker interface{ Now() int }

type Clock struct{ id int32 }

func (c *Clock) Now() int { return int(c.id) }

type Level struct {
	id    int32
	scene *scene.Scene
}

type Session struct {
	id    int32
	owner any
}

type Unbound struct{}

type Services struct {
	Service `register:"Bind"`
}

func (Services) Bind(r *service.Registrar) {
	service.Bind[*Clock](r, service.TypeOf[Ticker]()).From(func() *Clock {
		return &Clock{id: clockCalls.Add(1)}
	})
	service.Bind[*Level](r).AsSceneScoped().FromConsumer(func(consumer any) *Level {
		return &Level{id: levelCalls.Add(1), scene: scene.Of(consumer)}
	})
	service.Bind[*Session](r).AsScoped().FromConsumer(func(consumer any) *Session {
		return &Session{id: sessionCalls.Add(1), owner: consumer}
	})
}

// LateServices binds *Clock a second time.
type LateServices struct {
	Service
}

func (LateServices) Register(r *service.Registrar) {
	service.Bind[*Clock](r).From(func() *Clock { return &Clock{id: -1} })
}

type Player struct {
	scene.Object

	Clock   *Clock   `inject:""`
	Ticker  Ticker   `inject:""`
	Level   *Level   `inject:""`
	session *Session `inject:"setter=SetSession"`
	Missing *Unbound `inject:""`
	Ignored *Clock

	clockBeforeSession bool
}

func (p *Player) SetSession(s *Session) {
	p.clockBeforeSession = p.Clock != nil
	p.session = s
}

func (p *Player) Awake() { Inject(p) }

type Broken struct {
	hidden      *Clock `inject:""`
	NoSetter    *Clock `inject:"setter=Nope"`
	WrongSetter *Clock `inject:"setter=SetWrong"`
	Weird       *Clock `inject:"weird"`
	Good        *Clock `inject:""`
}

func (b *Broken) SetWrong(int) {}

// Embedded points are not inherited.
type Derived struct {
	Player
}

type PanickyServices struct{ Service }

func (PanickyServices) Register(*service.Registrar) { panic("registrar exploded") }

type FailingServices struct{ Service }

func (FailingServices) Register(*service.Registrar) error { return errors.New("not today") }

type WrongSignatureServices struct {
	Service `register:"Setup"`
}

func (WrongSignatureServices) Setup() {}

type NoHookServices struct{ Service }
