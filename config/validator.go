package config

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KOMKZ/go-yogan-inject/errcode"
)

const (
	ModuleCode         = 20
	ErrCodeInvalid     = 1
	ErrCodeLoadFailure = 2
)

var (
	ErrInvalidConfig = errcode.Register(errcode.New(ModuleCode, ErrCodeInvalid, "config", "error.config.invalid", "invalid configuration"))
	ErrLoadFailed    = errcode.Register(errcode.New(ModuleCode, ErrCodeLoadFailure, "config", "error.config.load_failed", "configuration could not be loaded"))
)

// Validator is implemented by every config section.
type Validator interface {
	Validate() error
}

// ValidateAll stops at the first failing section and returns it as ErrInvalidConfig.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return ValidationError(err)
		}
	}
	return nil
}

// ValidationError converts ozzo validation errors into ErrInvalidConfig with
// a "fields" entry mapping field name to message. Other errors are wrapped as is.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	var ve validation.Errors
	if !errors.As(err, &ve) {
		return ErrInvalidConfig.Wrap(err)
	}

	fields := make(map[string]string, len(ve))
	for name, fieldErr := range ve {
		if fieldErr != nil {
			fields[name] = fieldErr.Error()
		}
	}
	return ErrInvalidConfig.Wrap(err).WithData("fields", fields)
}
