package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging interface used throughout the engine.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Named(name string) Logger
	Sync() error
}

// LogLevel identifies a logging level by name.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LoggingConfig configures a logger.
type LoggingConfig struct {
	Level       LogLevel
	Format      string // "json" or "console"
	Environment string // "development" or "production"
}

// logger implements the Logger interface using zap.
type logger struct {
	zap *zap.Logger
}

// noopLogger implements the Logger interface but does nothing.
type noopLogger struct{}

// NewLogger creates a new logger with the given configuration.
func NewLogger(config LoggingConfig) Logger {
	level := zapcore.InfoLevel
	switch strings.ToLower(string(config.Level)) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var zapConfig zap.Config
	if config.Environment == "production" || config.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapLogger, _ := zapConfig.Build(zap.AddCallerSkip(1))
	return &logger{zap: zapLogger}
}

// NewProductionLogger creates a JSON logger at info level.
func NewProductionLogger() Logger {
	return NewLogger(LoggingConfig{Level: LevelInfo, Environment: "production"})
}

// NewDevelopmentLogger creates a colored console logger at debug level.
func NewDevelopmentLogger() Logger {
	return NewLogger(LoggingConfig{Level: LevelDebug, Environment: "development"})
}

// NewNoopLogger creates a logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *logger) Debug(msg string, fields ...Field) { l.zap.Debug(msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.zap.Info(msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.zap.Warn(msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.zap.Error(msg, fields...) }

func (l *logger) With(fields ...Field) Logger {
	return &logger{zap: l.zap.With(fields...)}
}

func (l *logger) Named(name string) Logger {
	return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}

func (l *noopLogger) Debug(msg string, fields ...Field) {}
func (l *noopLogger) Info(msg string, fields ...Field)  {}
func (l *noopLogger) Warn(msg string, fields ...Field)  {}
func (l *noopLogger) Error(msg string, fields ...Field) {}
func (l *noopLogger) With(fields ...Field) Logger       { return l }
func (l *noopLogger) Named(name string) Logger          { return l }
func (l *noopLogger) Sync() error                       { return nil }
