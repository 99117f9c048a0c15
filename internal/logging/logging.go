package logging

import (
	"strings"

	"SecretQuery/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Output goes to stderr so stdout stays free
// for tool results.
func New(level string, production bool) (*zap.Logger, error) {
	var logCfg zap.Config
	if production {
		logCfg = zap.NewProductionConfig()
	} else {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	logCfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	return logCfg.Build()
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return zapcore.ErrorLevel
	case "warn":
		return zapcore.WarnLevel
	case "debug":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// ForTool tags logger with the tool name and a fresh run id.
func ForTool(logger *zap.Logger, tool string) *zap.Logger {
	return logger.With(zap.String("tool", tool), zap.String("run_id", uuid.NewString()))
}

// Build returns the logger for tool. cfg may be nil when loading the
// configuration failed, in which case defaults are used so the failure can
// still be logged.
func Build(tool string, cfg *config.Config) *zap.Logger {
	level, production := config.DefaultLogLevel, false
	if cfg != nil {
		level, production = cfg.LogLevel, cfg.Production
	}
	logger, err := New(level, production)
	if err != nil {
		panic(err)
	}
	return ForTool(logger, tool)
}
