// Package logging builds the zap loggers used across cim and a notifier that
// records notifications as structured log lines.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tormodhaugland/cim/internal/catalog"
)

const defaultLogLevel = "info"

// LevelEnv overrides the configured level when set.
const LevelEnv = "CIM_LOG_LEVEL"

// New constructs a JSON logger writing to outputs. An empty outputs writes to
// stderr. The level comes from LevelEnv, then level, then "info".
func New(level string, outputs ...string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	candidates := []string{os.Getenv(LevelEnv), level, defaultLogLevel}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if err := atom.UnmarshalText([]byte(c)); err == nil {
			break
		}
	}

	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		CallerKey:     "caller",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		StacktraceKey: "stacktrace",
	}

	cfg := zap.Config{
		Level:             atom,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// NewFile constructs a logger appending to path, creating its directory.
// The TUI owns the terminal, so interactive sessions log here.
func NewFile(level, path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return New(level, path)
}

// Notifier forwards notifications to Next and logs each one.
type Notifier struct {
	Logger *zap.Logger
	Next   catalog.Notifier
}

// NewNotifier wraps next with logging. A nil logger disables logging.
func NewNotifier(logger *zap.Logger, next catalog.Notifier) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{Logger: logger, Next: next}
}

// Notify implements catalog.Notifier.
func (n *Notifier) Notify(title, message string, severity catalog.Severity) {
	fields := []zap.Field{
		zap.String("title", title),
		zap.String("notification", message),
		zap.String("kind", string(severity)),
	}
	if severity == catalog.SeverityError {
		n.Logger.Warn("notification", fields...)
	} else {
		n.Logger.Info("notification", fields...)
	}
	if n.Next != nil {
		n.Next.Notify(title, message, severity)
	}
}
