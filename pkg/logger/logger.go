package logger

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tgpay/pkg/config"
)

// Capture logs the operation started by ContextWithCapture along with its duration.
type Capture func(attrs ...zap.Field)

type Logger interface {
	// Context gives ctx a log id unless it already has one.
	Context(ctx context.Context) context.Context
	ContextWithCapture(ctx context.Context, operationName string) (context.Context, Capture)

	Debug(ctx context.Context, log string, fields ...zapcore.Field)
	Info(ctx context.Context, log string, fields ...zapcore.Field)
	Warn(ctx context.Context, log string, fields ...zapcore.Field)
	Error(ctx context.Context, log string, fields ...zapcore.Field)
}

var Module = fx.Provide(func(cfg config.IConfig) Logger {
	return New(cfg.GetString("log.level"))
})

// New writes json lines to stdout.
func New(level string) Logger {
	prodEncoderConfig := zap.NewProductionEncoderConfig()
	prodEncoderConfig.FunctionKey = "func"

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(prodEncoderConfig),
		zapcore.Lock(os.Stdout),
		getLevel(level),
	)
	return newWithCore(core)
}

// NewNop discards everything. Used in tests.
func NewNop() Logger {
	return newWithCore(zapcore.NewNopCore())
}

func newWithCore(core zapcore.Core) *logger {
	// two frames: the level method and write
	return &logger{
		lg:  zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		ids: newIDGenerator(),
	}
}

type logger struct {
	lg  *zap.Logger
	ids *idGenerator
}

func getLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}
