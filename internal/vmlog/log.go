// Package vmlog wraps zap so every component logs through one shared,
// leveled, structured sink instead of ad hoc println/fmt.Fprintf calls.
package vmlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the shared structured logger handle.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger at the given level ("debug", "info", "warn", "error").
// An unrecognized level falls back to "info".
func New(level string) *Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &Logger{z: logger.Sugar()}
}

// Nop returns a Logger that discards everything, used by tests that don't
// care about trace output.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.z.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.z.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.z.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.z.Errorf(format, args...) }

// Sync flushes any buffered log entries; callers should defer this in main.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}
