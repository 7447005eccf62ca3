// Package logging builds the zap logger shared by every subcommand.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options mirrors the log section of the config plus the --verbose flag.
type Options struct {
	Level       string
	Development bool
	Verbose     bool
}

// ParseLevel accepts zap level names; empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// Config returns the zap config for o without building it. Verbose forces
// debug level.
func Config(o Options) (zap.Config, error) {
	level, err := ParseLevel(o.Level)
	if err != nil {
		return zap.Config{}, err
	}
	if o.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if o.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg, nil
}

// New builds the logger. Callers should Sync it before exit.
func New(o Options) (*zap.Logger, error) {
	cfg, err := Config(o)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
