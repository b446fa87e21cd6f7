package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// LoaderBuilder assembles the standard layering:
// file (10), <env>.yaml next to it (20), environment (50), flags (100).
type LoaderBuilder struct {
	configFile string
	envPrefix  string
	envBinds   map[string]string
	flags      *pflag.FlagSet
	flagKeys   map[string]string
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{envBinds: make(map[string]string)}
}

func (b *LoaderBuilder) WithConfigFile(path string) *LoaderBuilder {
	b.configFile = path
	return b
}

func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithEnvBinding maps a config key containing underscores to an env name.
func (b *LoaderBuilder) WithEnvBinding(key, envKey string) *LoaderBuilder {
	b.envBinds[key] = envKey
	return b
}

func (b *LoaderBuilder) WithFlags(flags *pflag.FlagSet, keys map[string]string) *LoaderBuilder {
	b.flags = flags
	b.flagKeys = keys
	return b
}

func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configFile != "" {
		loader.AddSource(NewFileSource(b.configFile, 10))
		if env := GetEnv(); env != "" {
			ext := filepath.Ext(b.configFile)
			envFile := filepath.Join(filepath.Dir(b.configFile), env+ext)
			if envFile != b.configFile {
				loader.AddSource(NewFileSource(envFile, 20))
			}
		}
	}

	if b.envPrefix != "" {
		env := NewEnvSource(b.envPrefix, 50)
		for k, v := range b.envBinds {
			env.AddBinding(k, v)
		}
		loader.AddSource(env)
	}

	if b.flags != nil {
		loader.AddSource(NewFlagSource(b.flags, b.flagKeys, 100))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv returns APP_ENV, then ENV, lower-cased. Empty when neither is set.
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return strings.ToLower(env)
	}
	return strings.ToLower(os.Getenv("ENV"))
}
