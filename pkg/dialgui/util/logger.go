package util

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logDirectory = "logs"
	logFilename  = "dialgui-latest-run.log"
)

// NewLogger provides a logger instance for the whole program. Verbose runs log at debug level.
// Console loggers write to stderr, others to a file under configDir
func NewLogger(verbose bool, console bool, configDir string) (*zap.SugaredLogger, error) {
	var loggerConfig zap.Config

	if verbose {
		loggerConfig = zap.NewDevelopmentConfig()
	} else {
		loggerConfig = zap.NewProductionConfig()
		loggerConfig.Encoding = "console"
	}

	if console {
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		loggerConfig.OutputPaths = []string{"stderr"}
	} else {
		logDir := filepath.Join(configDir, logDirectory)
		if err := EnsureDirExists(logDir); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}

		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		loggerConfig.OutputPaths = []string{filepath.Join(logDir, logFilename)}
	}

	// all build types: make it readable
	loggerConfig.DisableCaller = true
	loggerConfig.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}

	loggerConfig.EncoderConfig.EncodeName = func(s string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-27s", s))
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("create zap logger: %w", err)
	}

	return logger.Sugar(), nil
}
