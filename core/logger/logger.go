package logger

import (
	"fmt"

	"mod-loader/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger. Extra options are applied on top of the configuration.
func New(cfg *Config, opts ...zap.Option) (*zap.Logger, error) {
	zc, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	l, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if cfg.Name != "" {
		l = l.Named(cfg.Name)
	}
	return l, nil
}

// zapConfig maps cfg onto a zap preset: development for debug, production otherwise.
func zapConfig(cfg *Config) (zap.Config, error) {
	var zc zap.Config
	if cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return zc, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc = zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	switch cfg.Format {
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	case "json", "":
		zc.Encoding = "json"
	default:
		return zc, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"
	zc.EncoderConfig.NameKey = "component"
	return zc, nil
}

// Component returns the logger for a named part of the loader, or a no-op logger for nil.
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(name)
}

// WithRayID returns a logger with the ray_id field set from the Fiber context.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if id, ok := c.Locals(rayid.LocalsKey).(string); ok && id != "" {
		return l.With(zap.String("ray_id", id))
	}
	return l
}
