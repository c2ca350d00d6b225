package logger

import (
	"os"

	"github.com/samvad-hq/overpass-harvester/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface passed to components.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Init initializes a zap SugaredLogger using settings from config.
func Init(cfg *config.Config) (Logger, error) {
	level := parseLevel(cfg.LogLevel)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	sugar := logger.Sugar().With("app", cfg.AppName)
	S = sugar
	return Zap{S: sugar}, nil
}

func parseLevel(lvl string) zapcore.Level {
	switch lvl {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Zap adapts a SugaredLogger to Logger.
type Zap struct {
	S *zap.SugaredLogger
}

func (z Zap) InfoObj(msg, key string, obj interface{}) {
	if z.S != nil {
		z.S.Desugar().Info(msg, zap.Any(key, obj))
	}
}

func (z Zap) DebugObj(msg, key string, obj interface{}) {
	if z.S != nil {
		z.S.Desugar().Debug(msg, zap.Any(key, obj))
	}
}

func (z Zap) WarnObj(msg, key string, obj interface{}) {
	if z.S != nil {
		z.S.Desugar().Warn(msg, zap.Any(key, obj))
	}
}

func (z Zap) ErrorObj(msg, key string, obj interface{}) {
	if z.S != nil {
		z.S.Desugar().Error(msg, zap.Any(key, obj))
	}
}

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Minimal object logging helpers -------------------------------------------------
// These are tiny wrappers that log the given object as a structured field named
// `key` on the package-level logger.
func InfoObj(msg, key string, obj interface{}) { Zap{S: S}.InfoObj(msg, key, obj) }

func DebugObj(msg, key string, obj interface{}) { Zap{S: S}.DebugObj(msg, key, obj) }

func WarnObj(msg, key string, obj interface{}) { Zap{S: S}.WarnObj(msg, key, obj) }

func ErrorObj(msg, key string, obj interface{}) { Zap{S: S}.ErrorObj(msg, key, obj) }
