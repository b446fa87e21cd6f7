package config

import (
	"os"
	"strings"
)

// EnvSource maps PREFIX_SECTION_KEY variables to config keys.
// Without explicit bindings every PREFIX_ variable is scanned and
// PREFIX_WEAVER_MODE becomes weaver.mode. Keys containing underscores
// (inject_import) need an explicit binding.
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> env name without prefix
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{prefix: prefix, priority: priority, bindings: make(map[string]string)}
}

// AddBinding maps key to PREFIX_envKey.
func (s *EnvSource) AddBinding(key, envKey string) *EnvSource {
	s.bindings[key] = envKey
	return s
}

func (s *EnvSource) Name() string { return "env:" + s.prefix }

func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	if s.prefix == "" {
		return result, nil
	}
	prefix := s.prefix + "_"

	bound := make(map[string]bool, len(s.bindings))
	for key, envKey := range s.bindings {
		name := prefix + envKey
		bound[name] = true
		if value, ok := os.LookupEnv(name); ok && value != "" {
			result[key] = value
		}
	}

	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, prefix) || bound[name] {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		result[strings.ReplaceAll(key, "_", ".")] = value
	}
	return result, nil
}
