package service

import "github.com/KOMKZ/go-yogan-inject/errcode"

// ModuleCode is the errcode module of the service registry.
const ModuleCode = 21

const (
	ErrCodeServiceNotFound = 1
	ErrCodeMissingFactory  = 2
	ErrCodeFactoryFailed   = 3
	ErrCodeFactoryPanic    = 4
	ErrCodeWrongType       = 5
)

var (
	ErrServiceNotFound = errcode.Register(errcode.New(ModuleCode, ErrCodeServiceNotFound, "service", "error.service.not_found", "no service registered for type"))
	ErrMissingFactory  = errcode.Register(errcode.New(ModuleCode, ErrCodeMissingFactory, "service", "error.service.missing_factory", "service binding has no factory"))
	ErrFactoryFailed   = errcode.Register(errcode.New(ModuleCode, ErrCodeFactoryFailed, "service", "error.service.factory_failed", "service factory failed"))
	ErrFactoryPanic    = errcode.Register(errcode.New(ModuleCode, ErrCodeFactoryPanic, "service", "error.service.factory_panic", "service factory panicked"))
	ErrWrongType       = errcode.Register(errcode.New(ModuleCode, ErrCodeWrongType, "service", "error.service.wrong_type", "service factory returned a value of the wrong type"))
)
