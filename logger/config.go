package logger

import (
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap/zapcore"
)

var validLevels = []any{"debug", "info", "warn", "error"}

// ManagerConfig Logger 管理器配置（所有模块共享）
type ManagerConfig struct {
	Level           string `mapstructure:"level"`
	Encoding        string `mapstructure:"encoding"` // json or console
	EnableConsole   bool   `mapstructure:"enable_console"`
	EnableFile      bool   `mapstructure:"enable_file"`
	BaseLogDir      string `mapstructure:"base_log_dir"` // files go to <base_log_dir>/<module>/
	MaxSize         int    `mapstructure:"max_size"`     // MB
	MaxBackups      int    `mapstructure:"max_backups"`
	MaxAge          int    `mapstructure:"max_age"` // days
	Compress        bool   `mapstructure:"compress"`
	EnableCaller    bool   `mapstructure:"enable_caller"`
	EnableStack     bool   `mapstructure:"enable_stacktrace"`
	StacktraceDepth int    `mapstructure:"stacktrace_depth"` // 0 means 10 frames
	EnableTraceID   bool   `mapstructure:"enable_trace_id"`
}

// DefaultManagerConfig 默认配置：json 格式，仅输出到控制台
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Level:           "info",
		Encoding:        "json",
		EnableConsole:   true,
		BaseLogDir:      "logs",
		MaxSize:         100,
		MaxBackups:      3,
		MaxAge:          28,
		Compress:        true,
		EnableCaller:    true,
		EnableStack:     true,
		StacktraceDepth: 5,
		EnableTraceID:   true,
	}
}

// ApplyDefaults 为零值字段填充默认值
// 布尔字段保持调用方给定的值
func (c *ManagerConfig) ApplyDefaults() {
	d := DefaultManagerConfig()
	if c.Level == "" {
		c.Level = d.Level
	}
	if c.Encoding == "" {
		c.Encoding = d.Encoding
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = d.BaseLogDir
	}
	if c.MaxSize == 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = d.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = d.MaxAge
	}
}

// Validate 实现 config.Validator 接口
func (c ManagerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In(validLevels...)),
		validation.Field(&c.Encoding, validation.Required, validation.In("json", "console")),
		validation.Field(&c.BaseLogDir, validation.When(c.EnableFile, validation.Required)),
		validation.Field(&c.MaxSize, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.MaxBackups, validation.Min(0), validation.Max(1000)),
		validation.Field(&c.MaxAge, validation.Min(0), validation.Max(3650)),
		validation.Field(&c.StacktraceDepth, validation.Min(0), validation.Max(64)),
	)
}

// ParseLevel 解析日志级别，未知级别按 info 处理
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// filePath returns logs/<module>/<module>-<level>.log.
func (c ManagerConfig) filePath(module, level string) string {
	return filepath.Join(c.BaseLogDir, module, module+"-"+level+".log")
}
