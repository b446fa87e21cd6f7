package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader 配置加载器（支持多数据源，按优先级合并到 viper）
type Loader struct {
	sources     []ConfigSource
	merged      map[string]any
	v           *viper.Viper
	loadedFiles []string
}

func NewLoader() *Loader {
	return &Loader{merged: make(map[string]any), v: viper.New()}
}

// AddSource appends a source. Order of calls does not matter, priority does.
func (l *Loader) AddSource(source ConfigSource) *Loader {
	l.sources = append(l.sources, source)
	return l
}

// Load reads every source from lowest to highest priority; later keys win.
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.merged = make(map[string]any)
	l.loadedFiles = l.loadedFiles[:0]
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load config source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok && len(data) > 0 {
			l.loadedFiles = append(l.loadedFiles, fs.path)
		}
		for k, v := range data {
			l.merged[k] = v
		}
	}

	l.v = viper.New()
	for key, value := range unflattenMap(l.merged) {
		l.v.Set(key, value)
	}
	return nil
}

func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		keys := strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
		if len(keys) == 0 {
			continue
		}
		current := result
		for _, k := range keys[:len(keys)-1] {
			next, ok := current[k].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[k] = next
			}
			current = next
		}
		current[keys[len(keys)-1]] = value
	}
	return result
}

// Unmarshal decodes the whole configuration using mapstructure tags.
func (l *Loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section. A missing section leaves v untouched.
func (l *Loader) UnmarshalKey(key string, v any) error {
	if !l.v.IsSet(key) {
		return nil
	}
	return l.v.UnmarshalKey(key, v)
}

func (l *Loader) Get(key string) any { return l.v.Get(key) }

func (l *Loader) GetString(key string) string { return l.v.GetString(key) }

func (l *Loader) GetInt(key string) int { return l.v.GetInt(key) }

func (l *Loader) GetBool(key string) bool { return l.v.GetBool(key) }

func (l *Loader) IsSet(key string) bool { return l.v.IsSet(key) }

func (l *Loader) AllSettings() map[string]any { return l.v.AllSettings() }

// GetLoadedFiles lists the files that contributed at least one key.
func (l *Loader) GetLoadedFiles() []string { return l.loadedFiles }

func (l *Loader) GetViper() *viper.Viper { return l.v }
