package inject

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var identifier = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// Config is the "inject" configuration section.
type Config struct {
	// RegisterMethod is the hook called on service types whose marker has no register tag.
	RegisterMethod string `mapstructure:"register_method"`
	// WarnAmbiguous logs bindings shadowed by an earlier binding for the same type.
	WarnAmbiguous bool `mapstructure:"warn_ambiguous"`
	// Metrics records resolutions and injections on the configured meter.
	Metrics bool `mapstructure:"metrics"`
}

func DefaultConfig() Config {
	return Config{
		RegisterMethod: "Register",
		WarnAmbiguous:  true,
		Metrics:        true,
	}
}

// Validate implements config.Validator.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RegisterMethod, validation.Required, validation.Match(identifier).Error("must be an exported method name")),
	)
}
