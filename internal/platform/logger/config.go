package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger.
type Config struct {
	Level      string
	Format     string
	OutputFile string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT_FILE. The logger is
// built before the application config so it reads the environment directly.
func ConfigFromEnv() Config {
	return Config{
		Level:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		OutputFile: getEnv("LOG_OUTPUT_FILE", "stdout"),
	}
}

func (c Config) zapLevel() zapcore.Level {
	switch c.Level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
