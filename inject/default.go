package inject

import (
	"sync"
)

var (
	defaultMu       sync.Mutex
	defaultInjector *Injector
)

// Init 初始化全局注入器
// 只有首次调用生效，之后的调用返回已有实例并忽略 opts。
// 在启动阶段调用可以提前完成类型扫描。
func Init(opts ...Option) (*Injector, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInjector != nil {
		return defaultInjector, nil
	}
	i, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defaultInjector = i
	return i, nil
}

// Default returns the process-wide injector, building it from the
// registered manifest on first use.
func Default() *Injector {
	i, err := Init()
	if err != nil {
		// the default configuration always validates
		panic(err)
	}
	return i
}

// Inject fills target using the process-wide injector.
func Inject(target any) {
	Default().Inject(target)
}

// Woven injects p and returns it. Woven constructors wrap their allocation
// in it so injection happens before the value escapes.
func Woven[T any](p *T) *T {
	Inject(p)
	return p
}

// Reset discards the process-wide injector and its cached services. The
// next Init or Default builds a new one.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInjector != nil {
		defaultInjector.Reset()
		defaultInjector = nil
	}
}
