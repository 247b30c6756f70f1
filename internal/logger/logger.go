package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options tune the logger beyond the environment defaults.
type Options struct {
	// Level overrides the env level: debug, info, warn, error.
	Level string
	// Format overrides the env encoding: json or console.
	Format string
	// Service and Version are attached to every entry when set.
	Service string
	Version string
}

// NewLogger creates a zap logger for the given environment.
// prod logs JSON at info, local/dev/docker log colored console output at debug.
func NewLogger(env string, opts Options) (*zap.Logger, error) {
	cfg, err := buildConfig(env, opts)
	if err != nil {
		return nil, err
	}
	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func buildConfig(env string, opts Options) (zap.Config, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return cfg, fmt.Errorf("unknown environment %q for logger", env)
	}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return cfg, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	switch opts.Format {
	case "":
	case FormatJSON:
		cfg.Encoding = FormatJSON
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case FormatConsole:
		cfg.Encoding = FormatConsole
	default:
		return cfg, fmt.Errorf("invalid log format %q (want json or console)", opts.Format)
	}

	fields := map[string]any{}
	if opts.Service != "" {
		fields["service"] = opts.Service
	}
	if opts.Version != "" {
		fields["version"] = opts.Version
	}
	if len(fields) > 0 {
		cfg.InitialFields = fields
	}
	return cfg, nil
}
