package config

import (
	"github.com/spf13/pflag"
)

// FlagSource exposes explicitly set command line flags. Flags left at their
// default never override lower layers.
type FlagSource struct {
	flags    *pflag.FlagSet
	keys     map[string]string // flag name -> config key
	priority int
}

// NewFlagSource 创建命令行参数数据源
// keys: flag 名 -> 配置键
func NewFlagSource(flags *pflag.FlagSet, keys map[string]string, priority int) *FlagSource {
	return &FlagSource{flags: flags, keys: keys, priority: priority}
}

func (s *FlagSource) Name() string { return "flags" }

func (s *FlagSource) Priority() int { return s.priority }

func (s *FlagSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	if s.flags == nil {
		return result, nil
	}
	s.flags.Visit(func(f *pflag.Flag) {
		if key, ok := s.keys[f.Name]; ok {
			result[key] = f.Value.String()
		}
	})
	return result, nil
}
