package retry

import (
	"fmt"
	"strings"
	"time"

	"github.com/revelfire/common-lib/common"
)

const (
	defaultMaxAttempts  = 5
	defaultInitialDelay = 100 * time.Millisecond
	defaultDelayFactor  = 5.0

	quickMaxAttempts  = 3
	quickInitialDelay = 50 * time.Millisecond
	quickDelayFactor  = 2.0

	persistentMaxAttempts  = 10
	persistentInitialDelay = 250 * time.Millisecond
	persistentDelayFactor  = 3.0
)

// Config controls the retry budget and the shape of backoff growth. The
// zero value is not usable; build configs with DefaultConfig, QuickConfig,
// PersistentConfig, ConfigFromEnv, or a literal, and let the executor
// constructor validate them.
type Config struct {
	// MaxAttempts is the total invocation budget, including the first
	// attempt. Must be at least 1; 1 means run once with zero retries.
	MaxAttempts int
	// InitialDelay is the wait inserted after the first failed attempt.
	// Must be positive.
	InitialDelay time.Duration
	// DelayFactor is the growth factor handed to the backoff strategy.
	// Must be positive.
	DelayFactor float64
}

// DefaultConfig returns the documented baseline: 5 attempts, 100ms initial
// delay, growth factor 5.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  defaultMaxAttempts,
		InitialDelay: defaultInitialDelay,
		DelayFactor:  defaultDelayFactor,
	}
}

// QuickConfig returns a preset tuned for interactive paths: 3 attempts,
// 50ms initial delay, growth factor 2.
func QuickConfig() Config {
	return Config{
		MaxAttempts:  quickMaxAttempts,
		InitialDelay: quickInitialDelay,
		DelayFactor:  quickDelayFactor,
	}
}

// PersistentConfig returns a preset tuned for background work that should
// outlast longer outages: 10 attempts, 250ms initial delay, growth factor 3.
func PersistentConfig() Config {
	return Config{
		MaxAttempts:  persistentMaxAttempts,
		InitialDelay: persistentInitialDelay,
		DelayFactor:  persistentDelayFactor,
	}
}

// ConfigFromEnv builds a Config from <PREFIX>_MAX_ATTEMPTS,
// <PREFIX>_INITIAL_DELAY, and <PREFIX>_DELAY_FACTOR, falling back to the
// defaults for unset or unparseable variables. A blank prefix reads the
// RETRY_* variables. Delay values accept time.ParseDuration syntax or bare
// integer milliseconds.
func ConfigFromEnv(prefix string) Config {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "RETRY"
	}

	return Config{
		MaxAttempts:  common.GetenvIntOrDefault(prefix+"_MAX_ATTEMPTS", defaultMaxAttempts),
		InitialDelay: common.GetenvDurationOrDefault(prefix+"_INITIAL_DELAY", defaultInitialDelay),
		DelayFactor:  common.GetenvFloatOrDefault(prefix+"_DELAY_FACTOR", defaultDelayFactor),
	}
}

// Validate reports the first violated constraint as an ErrInvalidConfig-
// wrapped error naming the offending parameter.
func (config Config) Validate() error {
	if config.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, config.MaxAttempts)
	}

	if config.InitialDelay <= 0 {
		return fmt.Errorf("%w: initial delay must be positive, got %s", ErrInvalidConfig, config.InitialDelay)
	}

	if config.DelayFactor <= 0 {
		return fmt.Errorf("%w: delay factor must be positive, got %g", ErrInvalidConfig, config.DelayFactor)
	}

	return nil
}
