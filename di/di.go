// Package di connects the service registry of an inject.Injector with a
// samber/do scope.
package di

import "github.com/samber/do/v2"

// Injector samber/do 注入器
type Injector = do.Injector

// RootScope samber/do 根作用域
type RootScope = do.RootScope

// New 创建根注入器
var New = do.New

// NewWithOpts 使用选项创建根注入器
var NewWithOpts = do.NewWithOpts
