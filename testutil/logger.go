package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KOMKZ/go-yogan-inject/logger"
)

// ObservedLogger returns a module logger recording every entry at debug
// level and above.
func ObservedLogger(module string) (*logger.CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.New(zap.New(core), module), logs
}
