// Package logging provides the sugared zap logger used throughout this
// module. Components take a *zap.SugaredLogger at construction time rather
// than reaching for a package global, so tests can assert on captured output.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a sugared logger at the given level ("debug", "info", "warn",
// "error"). An unrecognized level falls back to "info".
func New(level string) *zap.SugaredLogger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		// Build only fails on bad sink configuration; NewProductionConfig's
		// defaults are always valid.
		panic(err)
	}
	return logger.Sugar()
}

// Noop returns a logger that discards everything, for tests that don't care
// about log output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Named returns a child logger scoped to the given component name, mirroring
// the teacher's WithServiceName convention.
func Named(log *zap.SugaredLogger, name string) *zap.SugaredLogger {
	return log.Named(name)
}
