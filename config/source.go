package config

// ConfigSource is one layer of configuration. Keys are dot separated, e.g. "weaver.mode".
//
// Suggested priorities:
//   - config file (injweave.yaml): 10
//   - environment file (<env>.yaml): 20
//   - environment variables: 50
//   - command line flags: 100
type ConfigSource interface {
	Name() string
	Priority() int
	Load() (map[string]any, error)
}
