package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

func Init() {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		return
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zapcore.InfoLevel,
	)

	base = zap.New(core)
	base.Info("logger initialized")
}

func get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if base == nil {
		base = zap.NewNop()
	}
	return base
}

func zapFields(fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(msg string, fields map[string]any) {
	get().Info(msg, zapFields(fields)...)
}

func Warn(msg string, fields map[string]any) {
	get().Warn(msg, zapFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	get().Error(msg, zapFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	get().Fatal(msg, zapFields(fields)...)
}
