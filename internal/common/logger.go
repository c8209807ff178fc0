package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/berrythewa/quicklaunch/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the log file created under the configured log directory
const LogFileName = "qlaunch.log"

// LoggerOptions adjusts the logger built from the configuration
type LoggerOptions struct {
	// Verbose selects zap's development config
	Verbose bool
	// Level overrides the configured level when set
	Level string
	// Stderr forces logging to stderr even when file logging is enabled
	Stderr bool
}

// NewLogger creates a new logger instance
func NewLogger(cfg *config.Config, opts LoggerOptions) (*zap.Logger, error) {
	levelName := cfg.Log.Level
	if opts.Level != "" {
		levelName = opts.Level
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if opts.Verbose {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.Config{
			Level:       zap.NewAtomicLevelAt(level),
			Development: false,
			Sampling: &zap.SamplingConfig{
				Initial:    100,
				Thereafter: 100,
			},
			Encoding:         "json",
			EncoderConfig:    zap.NewProductionEncoderConfig(),
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		}
		if cfg.Log.Format == "console" {
			zcfg.Encoding = "console"
		}
	}

	// The terminal frontend owns stdout and stderr, so logs go to a file
	if cfg.Log.EnableFileLogging && !opts.Stderr && cfg.SystemPaths.LogDir != "" {
		if err := os.MkdirAll(cfg.SystemPaths.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path := filepath.Join(cfg.SystemPaths.LogDir, LogFileName)
		zcfg.OutputPaths = []string{path}
		zcfg.ErrorOutputPaths = []string{path}
	}

	return zcfg.Build()
}
