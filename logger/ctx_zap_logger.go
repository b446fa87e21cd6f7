package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger 带上下文的 zap Logger
//
// 设计目的：
//   - 创建时绑定模块名，调用方只需传入 ctx
//   - 自动从 ctx 中提取 trace_id / span_id
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

// New 包装已有的 zap.Logger，并附加 module 字段
// 测试中可配合 zaptest/observer 捕获输出
func New(z *zap.Logger, module string) *CtxZapLogger {
	cfg := DefaultManagerConfig()
	cfg.EnableStack = false
	return &CtxZapLogger{
		base:   z.With(zap.String("module", module)).WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &cfg,
	}
}

// Nop 返回丢弃所有输出的 Logger
func Nop() *CtxZapLogger {
	return New(zap.NewNop(), "nop")
}

// Module 获取绑定的模块名
func (l *CtxZapLogger) Module() string {
	return l.module
}

func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// ErrorCtx 记录 Error 日志，启用时附加限定深度的调用栈
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	enriched := l.enrichFields(ctx, fields)
	if l.config != nil && l.config.EnableStack {
		depth := l.config.StacktraceDepth
		if depth <= 0 {
			depth = 10
		}
		// skip: runtime.Callers, CaptureStacktrace, ErrorCtx
		if stack := CaptureStacktrace(3, depth); stack != "" {
			enriched = append(enriched, zap.String("stack", stack))
		}
	}
	l.base.Error(msg, enriched...)
}

func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With 创建携带固定字段的子 Logger
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// GetZapLogger 获取底层 zap.Logger（用于第三方库集成）
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrichFields 从 ctx 中提取 trace_id（如果存在活跃 span）
func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil || l.config == nil || !l.config.EnableTraceID {
		return fields
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return fields
	}
	enriched := make([]zap.Field, 0, len(fields)+1)
	enriched = append(enriched, zap.String("trace_id", sc.TraceID().String()))
	return append(enriched, fields...)
}
