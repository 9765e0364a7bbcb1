package common

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/revelfire/common-lib/common/log"
)

// ErrNilParentContext indicates that a nil parent context was provided.
var ErrNilParentContext = errors.New("cannot create context from nil parent")

type contextKey string

// libraryContextKey is the context key used to store ContextValue.
var libraryContextKey = contextKey("common_lib_context")

// ContextValue holds the request-scoped facilities this library attaches to
// a context: a structured logger and a correlation identifier.
type ContextValue struct {
	CorrelationID string
	Logger        log.Logger
}

func contextValue(ctx context.Context) *ContextValue {
	if ctx == nil {
		return nil
	}

	value, _ := ctx.Value(libraryContextKey).(*ContextValue)

	return value
}

func cloneContextValue(ctx context.Context) *ContextValue {
	existing := contextValue(ctx)
	if existing == nil {
		return &ContextValue{}
	}

	clone := *existing

	return &clone
}

// ContextWithLogger returns a child context carrying the given logger.
func ContextWithLogger(ctx context.Context, logger log.Logger) context.Context {
	value := cloneContextValue(ctx)
	value.Logger = logger

	return context.WithValue(ctx, libraryContextKey, value)
}

// LoggerFromContext extracts the logger carried by ctx, or a no-op logger
// when none is present. It never returns nil.
//
//nolint:ireturn
func LoggerFromContext(ctx context.Context) log.Logger {
	if value := contextValue(ctx); value != nil && value.Logger != nil {
		return value.Logger
	}

	return &log.NopLogger{}
}

// ContextWithCorrelationID returns a child context carrying the given
// correlation identifier.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	value := cloneContextValue(ctx)
	value.CorrelationID = correlationID

	return context.WithValue(ctx, libraryContextKey, value)
}

// CorrelationIDFromContext returns the correlation identifier carried by
// ctx, generating a fresh UUID when none is present so every caller always
// has a usable identifier.
func CorrelationIDFromContext(ctx context.Context) string {
	if value := contextValue(ctx); value != nil {
		if trimmed := strings.TrimSpace(value.CorrelationID); trimmed != "" {
			return trimmed
		}
	}

	return uuid.New().String()
}

// WithTimeoutSafe creates a context with the specified timeout, but respects
// any existing deadline in the parent context. Returns an error if parent is
// nil.
//
// When the parent's deadline is shorter than the requested timeout, the
// returned context inherits the parent's deadline rather than acquiring a
// new, later one.
func WithTimeoutSafe(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if parent == nil {
		return nil, nil, ErrNilParentContext
	}

	if deadline, ok := parent.Deadline(); ok {
		if time.Until(deadline) < timeout {
			ctx, cancel := context.WithCancel(parent)

			return ctx, cancel, nil
		}
	}

	ctx, cancel := context.WithTimeout(parent, timeout)

	return ctx, cancel, nil
}
