// Package logger holds the process-wide zap logger used by every Ember3D package.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared logger. It is a no-op logger until Init or InitWith runs,
// so packages can log from tests without any setup.
var Log = zap.NewNop()

// Options controls how the logger is built.
type Options struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Init builds a development console logger at info level.
func Init() {
	if err := InitWith(Options{Level: "info", Development: true}); err != nil {
		fmt.Printf("logger: falling back to production config: %v\n", err)
		Log, _ = zap.NewProduction()
	}
}

// InitWith builds the logger from opts and replaces Log.
// Errors and warnings are printed with colored level markers.
func InitWith(opts Options) error {
	var level zapcore.Level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(level)

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = built
	return nil
}

// Sync flushes buffered entries. Safe to call on the no-op logger.
func Sync() {
	_ = Log.Sync()
}
