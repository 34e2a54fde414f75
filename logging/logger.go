// Package logging builds the zap logger shared by the CLI, the service and
// the viewer.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Settings selects the log level and encoding.
type Settings struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, console
}

func DefaultSettings() Settings {
	return Settings{Level: "info", Format: "json"}
}

// New builds a production (JSON) or development (console) logger at the
// configured level. Empty fields keep the preset's defaults.
func New(s Settings) (*zap.Logger, error) {
	var cfg zap.Config
	switch s.Format {
	case "", "json":
		cfg = zap.NewProductionConfig()
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", s.Format)
	}

	if s.Level != "" {
		lvl, err := zapcore.ParseLevel(s.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Verbose forces debug level, keeping the format.
func (s Settings) Verbose() Settings {
	s.Level = "debug"
	return s
}
