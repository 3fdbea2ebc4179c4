// Package logger builds the process-wide zap logger and carries
// request-scoped loggers through context.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger for the given environment. local, dev and
// docker use colored console output; anything else gets production JSON.
// level (if non-empty) overrides the environment default: debug, info,
// warn, error.
func NewLogger(env string, level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
		cfg.InitialFields = map[string]any{"service": "twinrag"}
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
