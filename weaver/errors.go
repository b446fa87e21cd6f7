package weaver

import "github.com/KOMKZ/go-yogan-inject/errcode"

// ModuleCode is the errcode module of the weaver.
const ModuleCode = 23

const (
	ErrCodeLoad             = 1
	ErrCodeUnresolvedType   = 2
	ErrCodeValueReceiver    = 3
	ErrCodeValueConstructor = 4
	ErrCodeSplice           = 5
	ErrCodeWrite            = 6
	ErrCodeGenerate         = 7
)

var (
	ErrLoad             = errcode.Register(errcode.New(ModuleCode, ErrCodeLoad, "weaver", "error.weaver.load", "package could not be loaded"))
	ErrUnresolvedType   = errcode.Register(errcode.New(ModuleCode, ErrCodeUnresolvedType, "weaver", "error.weaver.unresolved_type", "type metadata could not be resolved"))
	ErrValueReceiver    = errcode.Register(errcode.New(ModuleCode, ErrCodeValueReceiver, "weaver", "error.weaver.value_receiver", "activation method has a value receiver"))
	ErrValueConstructor = errcode.Register(errcode.New(ModuleCode, ErrCodeValueConstructor, "weaver", "error.weaver.value_constructor", "constructor returns the injectable type by value"))
	ErrSplice           = errcode.Register(errcode.New(ModuleCode, ErrCodeSplice, "weaver", "error.weaver.splice", "woven source could not be produced"))
	ErrWrite            = errcode.Register(errcode.New(ModuleCode, ErrCodeWrite, "weaver", "error.weaver.write", "woven file could not be written"))
	ErrGenerate         = errcode.Register(errcode.New(ModuleCode, ErrCodeGenerate, "weaver", "error.weaver.generate", "generated file could not be rendered"))
)
