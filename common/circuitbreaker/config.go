package circuitbreaker

import "time"

// Config tunes when the circuit trips and how it probes for recovery.
type Config struct {
	// MaxRequests is how many probe requests may pass while half-open.
	MaxRequests uint32
	// Interval is the cyclic period over which closed-state counts are
	// cleared. Zero keeps counts for the life of the closed state.
	Interval time.Duration
	// Timeout is how long the circuit stays open before moving to half-open.
	Timeout time.Duration
	// ConsecutiveFailures trips the circuit regardless of ratio.
	ConsecutiveFailures uint32
	// FailureRatio trips the circuit once MinRequests have been observed.
	FailureRatio float64
	// MinRequests is the sample size required before FailureRatio applies.
	MinRequests uint32
}

// DefaultConfig provides balanced settings for most dependencies.
func DefaultConfig() Config {
	return Config{
		MaxRequests:         3,
		Interval:            2 * time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 15,
		FailureRatio:        0.5,
		MinRequests:         10,
	}
}

// AggressiveConfig trips fast and probes often, for dependencies where
// failing fast matters more than riding out blips.
func AggressiveConfig() Config {
	return Config{
		MaxRequests:         2,
		Interval:            1 * time.Minute,
		Timeout:             10 * time.Second,
		ConsecutiveFailures: 5,
		FailureRatio:        0.4,
		MinRequests:         5,
	}
}

// ConservativeConfig tolerates more failures before tripping, for
// dependencies that are expensive to declare unhealthy.
func ConservativeConfig() Config {
	return Config{
		MaxRequests:         5,
		Interval:            5 * time.Minute,
		Timeout:             60 * time.Second,
		ConsecutiveFailures: 25,
		FailureRatio:        0.6,
		MinRequests:         20,
	}
}

// normalize falls back to the default for every unset field so a zero
// Config cannot produce a breaker that trips on its first failure.
func (config Config) normalize() Config {
	defaults := DefaultConfig()

	if config.MaxRequests == 0 {
		config.MaxRequests = defaults.MaxRequests
	}

	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	if config.ConsecutiveFailures == 0 {
		config.ConsecutiveFailures = defaults.ConsecutiveFailures
	}

	if config.FailureRatio <= 0 || config.FailureRatio > 1 {
		config.FailureRatio = defaults.FailureRatio
	}

	if config.MinRequests == 0 {
		config.MinRequests = defaults.MinRequests
	}

	return config
}
