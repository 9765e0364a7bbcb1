package zap

import (
	"fmt"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerSkipFrames = 1

// Environment controls the baseline logger profile.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentStaging     Environment = "staging"
	EnvironmentDevelopment Environment = "development"
	EnvironmentLocal       Environment = "local"
)

// Config contains all required logger initialization inputs.
type Config struct {
	Environment Environment
	Level       string

	// OTelLibraryName, when set, tees log records into the OpenTelemetry
	// log bridge under that instrumentation scope. Leave empty to log to
	// stdout/stderr only.
	OTelLibraryName string
}

func (config Config) validate() error {
	switch config.Environment {
	case EnvironmentProduction, EnvironmentStaging, EnvironmentDevelopment, EnvironmentLocal:
		return nil
	default:
		return fmt.Errorf("invalid environment %q", config.Environment)
	}
}

// New creates a structured logger and returns it with a runtime-adjustable
// level handle.
func New(config Config) (*Logger, zap.AtomicLevel, error) {
	if err := config.validate(); err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("invalid zap config: %w", err)
	}

	baseConfig := buildConfigByEnvironment(config.Environment)

	level, err := resolveLevel(config)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	baseConfig.Level = level
	baseConfig.DisableStacktrace = true

	coreOptions := []zap.Option{
		zap.AddCallerSkip(callerSkipFrames),
	}

	if config.OTelLibraryName != "" {
		coreOptions = append(coreOptions, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelzap.NewCore(config.OTelLibraryName))
		}))
	}

	built, err := baseConfig.Build(coreOptions...)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{logger: built, atomicLevel: level}, level, nil
}

func resolveLevel(config Config) (zap.AtomicLevel, error) {
	if strings.TrimSpace(config.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(config.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", config.Level, err)
		}

		return zap.NewAtomicLevelAt(parsed), nil
	}

	if config.Environment == EnvironmentDevelopment || config.Environment == EnvironmentLocal {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}

	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}

func buildConfigByEnvironment(environment Environment) zap.Config {
	if environment == EnvironmentDevelopment || environment == EnvironmentLocal {
		config := zap.NewDevelopmentConfig()
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		return config
	}

	config := zap.NewProductionConfig()
	config.Encoding = "json"
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return config
}
