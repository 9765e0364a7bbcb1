package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/revelfire/common-lib/common/internal/netfail"
	"github.com/revelfire/common-lib/common/retry"
)

// transientCodes lists status codes for conditions a later attempt can
// outlive: servers mid-restart, throttling, and contention aborts.
// DeadlineExceeded is included because per-attempt deadlines are expected to
// fire under transient load.
var transientCodes = map[codes.Code]struct{}{
	codes.Unavailable:       {},
	codes.ResourceExhausted: {},
	codes.Aborted:           {},
	codes.DeadlineExceeded:  {},
}

// Transient reports whether err represents a gRPC failure worth retrying.
// Status errors are classified by code; anything else is checked for
// deadline expiry and network-level trouble.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	if s, ok := status.FromError(err); ok {
		_, transient := transientCodes[s.Code()]

		return transient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return netfail.Transient(err)
}

// Policy returns a retry policy that allows another attempt only for
// transient gRPC failures. Causes marked with retry.NonRetryable are always
// vetoed, regardless of classification.
//
//nolint:ireturn
func Policy() retry.Policy {
	return retry.PolicyFunc(func(cause error, _, _ int) bool {
		if retry.IsNonRetryable(cause) {
			return false
		}

		return Transient(cause)
	})
}

// PolicyFor returns a retry policy that allows another attempt only when the
// cause is a status error carrying one of the given codes. Use it for
// services whose error contract marks additional codes, such as Internal,
// as safe to repeat.
//
//nolint:ireturn
func PolicyFor(retryable ...codes.Code) retry.Policy {
	allowed := make(map[codes.Code]struct{}, len(retryable))
	for _, code := range retryable {
		allowed[code] = struct{}{}
	}

	return retry.PolicyFunc(func(cause error, _, _ int) bool {
		if cause == nil || retry.IsNonRetryable(cause) {
			return false
		}

		s, ok := status.FromError(cause)
		if !ok {
			return false
		}

		_, ok = allowed[s.Code()]

		return ok
	})
}
