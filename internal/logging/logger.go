package logging

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is read from pool workers, so it is swapped atomically and never nil
var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "ARGUS_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks ARGUS_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger.Store(zap.NewNop())
		return nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Store(built)
	return nil
}

// ParseLevel maps a level name onto a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
}

// SetLogger replaces the global logger. Tests use it with zaptest/observer.
// A nil logger silences logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// GetLogger returns the global logger instance. It is silent until
// Initialize or SetLogger is called so CLI output stays clean.
func GetLogger() *zap.Logger {
	return logger.Load()
}

// Sync flushes buffered log entries
func Sync() {
	_ = GetLogger().Sync()
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Region returns the standard field for a region code
func Region(code string) zap.Field {
	return zap.String("region", code)
}

// LogRequest logs a completed directory request
func LogRequest(url string, statusCode int, elapsed time.Duration) {
	Debug("Directory request",
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Duration("elapsed", elapsed),
	)
}

// LogPageResult logs the outcome of a successful page fetch
func LogPageResult(region string, page int, found int) {
	Debug("Page fetched",
		zap.String("region", region),
		zap.Int("page", page),
		zap.Int("endpoints", found),
	)
}

// LogPageFailure logs a page that yielded no results because its fetch failed
func LogPageFailure(region string, page int, err error) {
	Warn("Page fetch failed, continuing without it",
		zap.String("region", region),
		zap.Int("page", page),
		zap.Error(err),
	)
}

// LogProbe logs a reachability check. cause is nil for reachable endpoints.
func LogProbe(endpoint string, reachable bool, statusCode int, cause error) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Bool("reachable", reachable),
	}
	if statusCode != 0 {
		fields = append(fields, zap.Int("status_code", statusCode))
	}
	if cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}
	Debug("Probe", fields...)
}
