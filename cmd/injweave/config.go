package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/KOMKZ/go-yogan-inject/config"
	"github.com/KOMKZ/go-yogan-inject/logger"
	"github.com/KOMKZ/go-yogan-inject/telemetry"
	"github.com/KOMKZ/go-yogan-inject/weaver"
)

// AppConfig is the injweave configuration file.
type AppConfig struct {
	Weaver  weaver.Config           `mapstructure:"weaver"`
	Logger  logger.ManagerConfig    `mapstructure:"logger"`
	Metrics telemetry.MetricsConfig `mapstructure:"metrics"`
}

func defaultAppConfig() AppConfig {
	log := logger.DefaultManagerConfig()
	log.Encoding = "console"
	log.EnableStack = false
	return AppConfig{
		Weaver:  weaver.DefaultConfig(),
		Logger:  log,
		Metrics: telemetry.DefaultMetricsConfig(),
	}
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"mode":        "weaver.mode",
	"output":      "weaver.output",
	"dry-run":     "weaver.dry_run",
	"import-path": "weaver.import_path",
	"concurrency": "weaver.concurrency",
	"log-level":   "logger.level",
}

// envBindings covers keys with underscores, which the prefix scan would
// split into sections.
var envBindings = map[string]string{
	"weaver.inject_import":     "WEAVER_INJECT_IMPORT",
	"weaver.inject_alias":      "WEAVER_INJECT_ALIAS",
	"weaver.service_marker":    "WEAVER_SERVICE_MARKER",
	"weaver.object_type":       "WEAVER_OBJECT_TYPE",
	"weaver.asset_type":        "WEAVER_ASSET_TYPE",
	"weaver.object_activation": "WEAVER_OBJECT_ACTIVATION",
	"weaver.asset_activation":  "WEAVER_ASSET_ACTIVATION",
	"weaver.import_path":       "WEAVER_IMPORT_PATH",
	"weaver.dry_run":           "WEAVER_DRY_RUN",
	"logger.enable_file":       "LOGGER_ENABLE_FILE",
	"logger.base_log_dir":      "LOGGER_BASE_LOG_DIR",
	"metrics.service_name":     "METRICS_SERVICE_NAME",
	"metrics.export_interval":  "METRICS_EXPORT_INTERVAL",
	"metrics.export_timeout":   "METRICS_EXPORT_TIMEOUT",
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(file, envPrefix string, flags *pflag.FlagSet) (AppConfig, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return AppConfig{}, usageError{fmt.Errorf("config file: %w", err)}
		}
	}

	b := config.NewLoaderBuilder().
		WithConfigFile(file).
		WithEnvPrefix(envPrefix).
		WithFlags(flags, flagKeys)
	for key, env := range envBindings {
		b.WithEnvBinding(key, env)
	}
	loader, err := b.Build()
	if err != nil {
		return AppConfig{}, config.ErrLoadFailed.Wrap(err)
	}

	cfg := defaultAppConfig()
	sections := []struct {
		key    string
		target any
	}{
		{"weaver", &cfg.Weaver},
		{"logger", &cfg.Logger},
		{"metrics", &cfg.Metrics},
	}
	for _, s := range sections {
		if err := loader.UnmarshalKey(s.key, s.target); err != nil {
			return AppConfig{}, config.ErrLoadFailed.Wrapf(err, "decode %s section", s.key)
		}
	}

	if err := config.ValidateAll(cfg.Weaver, cfg.Logger, cfg.Metrics); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
