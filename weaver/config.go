package weaver

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	ModeTypes  = "types"
	ModeSyntax = "syntax"
)

var (
	goIdent       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	exportedIdent = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)
	genFileName   = regexp.MustCompile(`^[A-Za-z0-9_.-]+\.go$`)
)

// Config is the "weaver" configuration section.
type Config struct {
	// Mode selects the loader: types (go/packages, full type information)
	// or syntax (go/parser, one directory at a time).
	Mode string `mapstructure:"mode"`
	// Output is the name of the generated file written into each package.
	Output string `mapstructure:"output"`
	// Tag is the struct tag key marking injection points.
	Tag string `mapstructure:"tag"`
	// InjectImport is the import path of the runtime injector package.
	InjectImport string `mapstructure:"inject_import"`
	// InjectAlias is the identifier used when the import has to be added.
	InjectAlias string `mapstructure:"inject_alias"`
	// ServiceMarker is the full name of the embedded service marker type.
	ServiceMarker string `mapstructure:"service_marker"`
	// ObjectType and AssetType are the full names of the host base types.
	ObjectType string `mapstructure:"object_type"`
	AssetType  string `mapstructure:"asset_type"`
	// ObjectActivation and AssetActivation name the methods the host calls
	// first on a new object or asset.
	ObjectActivation string `mapstructure:"object_activation"`
	AssetActivation  string `mapstructure:"asset_activation"`
	// ImportPath overrides the import path of a syntax mode package.
	ImportPath string `mapstructure:"import_path"`
	// Concurrency bounds the number of packages planned at once.
	Concurrency int  `mapstructure:"concurrency"`
	DryRun      bool `mapstructure:"dry_run"`
}

func DefaultConfig() Config {
	const root = "github.com/KOMKZ/go-yogan-inject"
	return Config{
		Mode:             ModeTypes,
		Output:           "zz_inject.gen.go",
		Tag:              "inject",
		InjectImport:     root + "/inject",
		InjectAlias:      "inject",
		ServiceMarker:    root + "/inject.Service",
		ObjectType:       root + "/scene.Object",
		AssetType:        root + "/scene.Asset",
		ObjectActivation: "Awake",
		AssetActivation:  "OnEnable",
		Concurrency:      4,
	}
}

func validFullName(value any) error {
	s, _ := value.(string)
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 || !goIdent.MatchString(s[i+1:]) {
		return validation.NewError("validation_full_name", "must be <import path>.<TypeName>")
	}
	return nil
}

// Validate implements config.Validator.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Mode, validation.Required, validation.In(ModeTypes, ModeSyntax)),
		validation.Field(&c.Output, validation.Required, validation.Match(genFileName)),
		validation.Field(&c.Tag, validation.Required, validation.Match(goIdent)),
		validation.Field(&c.InjectImport, validation.Required),
		validation.Field(&c.InjectAlias, validation.Required, validation.Match(goIdent)),
		validation.Field(&c.ServiceMarker, validation.Required, validation.By(validFullName)),
		validation.Field(&c.ObjectType, validation.Required, validation.By(validFullName)),
		validation.Field(&c.AssetType, validation.Required, validation.By(validFullName)),
		validation.Field(&c.ObjectActivation, validation.Required, validation.Match(exportedIdent)),
		validation.Field(&c.AssetActivation, validation.Required, validation.Match(exportedIdent)),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(256)),
	)
}
