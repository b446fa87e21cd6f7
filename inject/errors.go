package inject

import "github.com/KOMKZ/go-yogan-inject/errcode"

// ModuleCode is the errcode module of the injector.
const ModuleCode = 22

const (
	ErrCodeRegistrarNotFound  = 1
	ErrCodeRegistrarSignature = 2
	ErrCodeRegistrarFailed    = 3
	ErrCodeUnsettableMember   = 4
	ErrCodeSetterNotFound     = 5
	ErrCodeSetterSignature    = 6
	ErrCodeBadTag             = 7
	ErrCodeNotInjected        = 8
)

var (
	ErrRegistrarNotFound  = errcode.Register(errcode.New(ModuleCode, ErrCodeRegistrarNotFound, "inject", "error.inject.registrar_not_found", "registration method not found"))
	ErrRegistrarSignature = errcode.Register(errcode.New(ModuleCode, ErrCodeRegistrarSignature, "inject", "error.inject.registrar_signature", "registration method has the wrong signature"))
	ErrRegistrarFailed    = errcode.Register(errcode.New(ModuleCode, ErrCodeRegistrarFailed, "inject", "error.inject.registrar_failed", "registration method failed"))
	ErrUnsettableMember   = errcode.Register(errcode.New(ModuleCode, ErrCodeUnsettableMember, "inject", "error.inject.unsettable_member", "injection point cannot be set"))
	ErrSetterNotFound     = errcode.Register(errcode.New(ModuleCode, ErrCodeSetterNotFound, "inject", "error.inject.setter_not_found", "setter method not found"))
	ErrSetterSignature    = errcode.Register(errcode.New(ModuleCode, ErrCodeSetterSignature, "inject", "error.inject.setter_signature", "setter method has the wrong signature"))
	ErrBadTag             = errcode.Register(errcode.New(ModuleCode, ErrCodeBadTag, "inject", "error.inject.bad_tag", "malformed inject tag"))
	ErrNotInjected        = errcode.Register(errcode.New(ModuleCode, ErrCodeNotInjected, "inject", "error.inject.not_injected", "service could not be injected"))
)
