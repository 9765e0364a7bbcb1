package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/revelfire/common-lib/common/internal/nilcheck"
	"github.com/revelfire/common-lib/common/log"
	"github.com/sony/gobreaker"
)

var (
	// ErrEmptyName is returned when a breaker is constructed without a name.
	ErrEmptyName = errors.New("breaker name cannot be empty")
	// ErrNilBreaker is returned when a method is called on a nil breaker.
	ErrNilBreaker = errors.New("breaker is nil")
	// ErrNilCall is returned when Execute is given a nil function.
	ErrNilCall = errors.New("breaker call is nil")
)

// State represents the breaker lifecycle phase.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

// Counts is a snapshot of the breaker's request statistics.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// StateChangeFunc is notified when the breaker transitions between states.
type StateChangeFunc func(name string, from, to State)

// Breaker guards calls to one downstream dependency. Failures accumulate
// until the configured threshold trips the circuit; while open, calls are
// rejected immediately without reaching the dependency. Safe for concurrent
// use.
type Breaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker
}

type breakerSettings struct {
	logger        log.Logger
	onStateChange StateChangeFunc
}

// Option customizes breaker collaborators at construction.
type Option func(*breakerSettings)

// WithLogger sets the logger that records state transitions. Passing nil
// keeps the default no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(settings *breakerSettings) {
		if nilcheck.Interface(logger) {
			return
		}

		settings.logger = logger
	}
}

// WithStateChangeFunc registers a callback invoked on every state
// transition, after it is logged. The callback runs inline on the goroutine
// that tripped the transition and must not block.
func WithStateChangeFunc(fn StateChangeFunc) Option {
	return func(settings *breakerSettings) {
		if fn == nil {
			return
		}

		settings.onStateChange = fn
	}
}

// New creates a named breaker. Zero-valued Config fields fall back to the
// defaults, so Config{} behaves like DefaultConfig().
func New(name string, config Config, opts ...Option) (*Breaker, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	settings := breakerSettings{logger: &log.NopLogger{}}

	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	config = config.normalize()

	wrapped := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.ConsecutiveFailures >= config.ConsecutiveFailures ||
				(counts.Requests >= config.MinRequests && failureRatio >= config.FailureRatio)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			handleStateChange(settings, name, convertState(from), convertState(to))
		},
	})

	return &Breaker{name: name, breaker: wrapped}, nil
}

// Execute runs fn through the breaker. While the circuit is open the call
// is rejected immediately with a wrapped gobreaker.ErrOpenState; while
// half-open and saturated it is rejected with a wrapped
// gobreaker.ErrTooManyRequests. Use Rejected to distinguish breaker
// rejections from the call's own failures.
func (breaker *Breaker) Execute(fn func() (any, error)) (any, error) {
	if breaker == nil || breaker.breaker == nil {
		return nil, ErrNilBreaker
	}

	if fn == nil {
		return nil, ErrNilCall
	}

	result, err := breaker.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("breaker %q is open: %w", breaker.name, err)
		}

		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("breaker %q is recovering: %w", breaker.name, err)
		}
	}

	return result, err
}

// Name returns the breaker's name.
func (breaker *Breaker) Name() string {
	if breaker == nil {
		return ""
	}

	return breaker.name
}

// State returns the breaker's current state.
func (breaker *Breaker) State() State {
	if breaker == nil || breaker.breaker == nil {
		return StateUnknown
	}

	return convertState(breaker.breaker.State())
}

// Counts returns a snapshot of the breaker's statistics.
func (breaker *Breaker) Counts() Counts {
	if breaker == nil || breaker.breaker == nil {
		return Counts{}
	}

	counts := breaker.breaker.Counts()

	return Counts{
		Requests:             counts.Requests,
		TotalSuccesses:       counts.TotalSuccesses,
		TotalFailures:        counts.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

// Healthy reports whether the breaker is closed. Open and half-open both
// count as unhealthy: the dependency has not yet proven it recovered.
func (breaker *Breaker) Healthy() bool {
	return breaker.State() == StateClosed
}

// Rejected reports whether err originated from the breaker itself (open
// circuit or half-open saturation) rather than from the guarded call.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func handleStateChange(settings breakerSettings, name string, from, to State) {
	level := log.LevelInfo
	if to == StateOpen {
		level = log.LevelError
	}

	settings.logger.Log(context.Background(), level, "breaker state changed",
		log.String("breaker", name),
		log.String("from", string(from)),
		log.String("to", string(to)))

	if settings.onStateChange != nil {
		settings.onStateChange(name, from, to)
	}
}

func convertState(state gobreaker.State) State {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateUnknown
	}
}
