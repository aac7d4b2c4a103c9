// Package logging provides the zap-backed implementation of assets.Logger.
package logging

import (
	"fmt"
	"strings"

	assets "github.com/goliatone/go-assets"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode ("development" or "production") at level.
// An empty level means debug.
func New(mode, level string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	lvl := zapcore.DebugLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(logger *zap.Logger) *Logger {
	return &Logger{SugaredLogger: logger.Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, normalizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, normalizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, normalizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, normalizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(normalizeKVs(keysAndValues)...)}
}

// LogQuery reports a cache query, at warn level when it failed.
func (l *Logger) LogQuery(event assets.QueryLogEvent) {
	kv := []any{
		"engine", event.Engine,
		"expr", event.Expr,
		"scanned", event.Scanned,
		"matched", event.Matched,
		"duration", event.Duration,
	}
	if event.Err != nil {
		l.Warn("asset query failed", append(kv, "error", event.Err)...)
		return
	}
	l.Debug("asset query", kv...)
}

// normalizeKVs renders ids and kinds as strings so encoders do not reflect
// into them.
func normalizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	for i, value := range kv {
		switch v := value.(type) {
		case assets.ID:
			out[i] = v.String()
		case assets.Kind:
			out[i] = v.String()
		default:
			out[i] = value
		}
	}
	return out
}

var (
	_ assets.Logger      = (*Logger)(nil)
	_ assets.QueryLogger = (*Logger)(nil)
)
