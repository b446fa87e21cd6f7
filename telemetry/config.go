package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MetricsConfig Metrics 导出配置
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	ServiceName    string            `mapstructure:"service_name"`
	Exporter       string            `mapstructure:"exporter"` // stdout or otlp
	Endpoint       string            `mapstructure:"endpoint"` // otlp only, host:port
	Insecure       bool              `mapstructure:"insecure"`
	Headers        map[string]string `mapstructure:"headers"`
	ExportInterval time.Duration     `mapstructure:"export_interval"`
	ExportTimeout  time.Duration     `mapstructure:"export_timeout"`
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		ServiceName:    "injweave",
		Exporter:       "stdout",
		ExportInterval: 30 * time.Second,
		ExportTimeout:  10 * time.Second,
	}
}

// Validate 验证配置（未启用时总是有效）
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Exporter, validation.Required, validation.In("stdout", "otlp")),
		validation.Field(&c.Endpoint, validation.When(c.Exporter == "otlp", validation.Required)),
		validation.Field(&c.ExportInterval, validation.Min(time.Second)),
		validation.Field(&c.ExportTimeout, validation.Min(100*time.Millisecond)),
	)
}
