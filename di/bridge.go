package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/KOMKZ/go-yogan-inject/inject"
	"github.com/KOMKZ/go-yogan-inject/service"
)

// Bridge 桥接器，连接 Injector 的服务注册表和 samber/do
//
// 设计目的：
//   - 让注册表中的绑定可以被 samber/do 访问
//   - 让 samber/do 中的服务可以作为绑定的工厂
type Bridge struct {
	injector *inject.Injector
	scope    *do.RootScope
}

func NewBridge(injector *inject.Injector, scope *do.RootScope) *Bridge {
	return &Bridge{injector: injector, scope: scope}
}

func (b *Bridge) Injector() *inject.Injector {
	return b.injector
}

func (b *Bridge) Scope() *do.RootScope {
	return b.scope
}

// Export 将 T 注册到 do 作用域（瞬态）
// 每次调用都通过注册表解析，缓存由绑定的契约决定
func Export[T any](b *Bridge) {
	do.ProvideTransient(b.scope, func(do.Injector) (T, error) {
		return resolve[T](b)
	})
}

// ExportNamed 以指定名称导出 T
func ExportNamed[T any](b *Bridge, name string) {
	do.ProvideNamedTransient(b.scope, name, func(do.Injector) (T, error) {
		return resolve[T](b)
	})
}

func resolve[T any](b *Bridge) (T, error) {
	var zero T
	v, err := b.injector.Resolve(service.TypeOf[T](), nil)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, service.ErrWrongType.WithMsgf("registry returned %T, expected %s", v, service.TypeOf[T]())
	}
	return typed, nil
}

// Invoker 返回从 do 作用域获取 T 的工厂
// 用法：
//
//	service.Bind[*Mailer](r).Provide(di.Invoker[*Mailer](scope))
func Invoker[T any](scope do.Injector) func(consumer any) (T, error) {
	return func(any) (T, error) {
		return do.Invoke[T](scope)
	}
}

// InvokerNamed 按名称获取 do 服务的工厂
func InvokerNamed[T any](scope do.Injector, name string) func(consumer any) (T, error) {
	return func(any) (T, error) {
		return do.InvokeNamed[T](scope, name)
	}
}

// Invoke 从 do 作用域解析 T
func Invoke[T any](b *Bridge) (T, error) {
	return do.Invoke[T](b.scope)
}

func MustInvoke[T any](b *Bridge) T {
	return do.MustInvoke[T](b.scope)
}

// Shutdown 关闭 do 作用域（不影响注册表中的实例）
func (b *Bridge) Shutdown() error {
	if err := b.scope.Shutdown(); err != nil {
		return fmt.Errorf("shutdown do scope: %w", err)
	}
	return nil
}

// ShutdownWithContext 带超时的关闭
func (b *Bridge) ShutdownWithContext(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- b.Shutdown()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HealthCheck 健康检查，返回各 do 服务的检查结果
func (b *Bridge) HealthCheck() map[string]error {
	return b.scope.HealthCheck()
}

func (b *Bridge) IsHealthy() bool {
	for _, err := range b.HealthCheck() {
		if err != nil {
			return false
		}
	}
	return true
}
