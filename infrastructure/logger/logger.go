package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects encoder and level for the process logger.
type Config struct {
	Level       string
	Environment string
	ServiceName string
}

var (
	mu  sync.RWMutex
	log *zap.Logger
)

type ctxKey struct{}

// InitLogger builds and installs the process-wide logger.
func InitLogger(cfg Config) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.Environment == "production" {
		logConfig = zap.NewProductionConfig()
		logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	l, err := logConfig.Build()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}

	mu.Lock()
	log = l
	mu.Unlock()

	l.Info("logger initialized", zap.String("level", level.String()), zap.String("env", cfg.Environment))
	return l, nil
}

// GetLogger returns the process logger, falling back to a production logger.
func GetLogger() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		fallback, err := zap.NewProduction()
		if err != nil {
			fallback = zap.NewNop()
		}
		log = fallback
	}
	return log
}

// WithContext stores l on ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger or the process logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return GetLogger()
}
