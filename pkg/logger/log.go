package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (l *logger) Context(ctx context.Context) context.Context {
	if fromContext(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, logCtxKey{}, &logContext{
		LogID:     l.ids.next(),
		StartTime: time.Now(),
	})
}

func (l *logger) ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture) {
	lgCtx := fromContext(ctx)
	if lgCtx == nil {
		lgCtx = &logContext{LogID: l.ids.next()}
	}

	op := *lgCtx
	op.OperationName = operationName
	op.StartTime = time.Now()
	ctx = context.WithValue(ctx, logCtxKey{}, &op)

	return ctx, func(attrs ...zap.Field) {
		attrs = append(attrs, op.fields()...)
		attrs = append(attrs, zap.String(durationKey, time.Since(op.StartTime).String()))
		l.lg.Info(op.OperationName, attrs...)
	}
}

func (l *logger) write(ctx context.Context, level zapcore.Level, msg string, fields []zapcore.Field) {
	ce := l.lg.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(append(fields, fromContext(ctx).fields()...)...)
}

func (l *logger) Debug(ctx context.Context, log string, fields ...zapcore.Field) {
	l.write(ctx, zapcore.DebugLevel, log, fields)
}

func (l *logger) Info(ctx context.Context, log string, fields ...zapcore.Field) {
	l.write(ctx, zapcore.InfoLevel, log, fields)
}

func (l *logger) Warn(ctx context.Context, log string, fields ...zapcore.Field) {
	l.write(ctx, zapcore.WarnLevel, log, fields)
}

func (l *logger) Error(ctx context.Context, log string, fields ...zapcore.Field) {
	l.write(ctx, zapcore.ErrorLevel, log, fields)
}
