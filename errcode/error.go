// Package errcode provides layered error codes shared by the injector packages.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import (
	"errors"
	"fmt"
)

// LayeredError is a coded error carrying a module name, a message key, context data
// and an optional cause.
type LayeredError struct {
	module string         // owning package (service, inject, weaver)
	code   int            // MMBBBB
	msgKey string         // stable key, e.g. "error.service.not_found"
	msg    string         // default message
	data   map[string]any // context data
	cause  error
}

// New creates a layered error. moduleCode is 10-99, businessCode is 1-9999.
func New(moduleCode, businessCode int, module, msgKey, msg string) *LayeredError {
	return &LayeredError{
		module: module,
		code:   moduleCode*10000 + businessCode,
		msgKey: msgKey,
		msg:    msg,
		data:   make(map[string]any),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full MMBBBB code.
func (e *LayeredError) Code() int { return e.code }

// Module returns the owning module name.
func (e *LayeredError) Module() string { return e.module }

// MsgKey returns the message key.
func (e *LayeredError) MsgKey() string { return e.msgKey }

// Message returns the message without the cause.
func (e *LayeredError) Message() string { return e.msg }

// Data returns the context data.
func (e *LayeredError) Data() map[string]any { return e.data }

// Unwrap supports errors.Is / errors.As through the cause chain.
func (e *LayeredError) Unwrap() error { return e.cause }

// WithMsg returns a copy with a replaced message.
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message.
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one more context entry.
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// WithFields returns a copy with the given context entries merged in.
func (e *LayeredError) WithFields(fields map[string]any) *LayeredError {
	clone := *e
	clone.data = e.cloneData()
	for k, v := range fields {
		clone.data[k] = v
	}
	return &clone
}

// Wrap returns a copy whose cause is cause. A nil cause returns e unchanged.
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Wrapf wraps cause and replaces the message.
func (e *LayeredError) Wrapf(cause error, format string, args ...any) *LayeredError {
	clone := e.WithMsgf(format, args...)
	clone.cause = cause
	return clone
}

// Is matches any LayeredError with the same code.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) cloneData() map[string]any {
	data := make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}", e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}

// CodeOf returns the code of the first LayeredError in err's chain, or 0.
func CodeOf(err error) int {
	var le *LayeredError
	if errors.As(err, &le) {
		return le.code
	}
	return 0
}
