// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldTarget        = "target"
	FieldToolset       = "toolset"
	FieldConfiguration = "configuration"
	FieldPath          = "path"
	FieldCount         = "count"
	FieldDurationMS    = "duration_ms"
	FieldBinary        = "binary"
	FieldVersion       = "version"
	FieldError         = "error"
)

var (
	// Global logger instance
	Logger *zap.SugaredLogger
	// JSONOutput is true when Initialize selected the JSON encoder
	JSONOutput bool
)

func init() {
	// No-op until Initialize so library code can log unconditionally.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Verbose lowers the level to debug;
// jsonOutput switches to the production JSON encoder.
func Initialize(verbose, jsonOutput bool) error {
	JSONOutput = jsonOutput

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}

		zapLogger, err := config.Build()
		if err != nil {
			return err
		}

		Logger = zapLogger.Sugar()
		return nil
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	Logger = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		),
	).Sugar()

	return nil
}

// ComponentLogger returns a named logger for a component.
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
