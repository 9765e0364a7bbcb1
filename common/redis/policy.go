package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/revelfire/common-lib/common/internal/netfail"
	"github.com/revelfire/common-lib/common/retry"
)

// transientPrefixes lists server reply prefixes that signal a temporary
// server state. LOADING covers a replica still reading its dataset, READONLY
// and MASTERDOWN cover failovers in progress, CLUSTERDOWN and TRYAGAIN cover
// cluster reconfiguration and resharding.
var transientPrefixes = []string{
	"LOADING",
	"READONLY",
	"CLUSTERDOWN",
	"TRYAGAIN",
	"MASTERDOWN",
}

// Transient reports whether err represents a Redis failure worth retrying.
//
// Cache misses (redis.Nil) and operations on a closed client are not
// retried. Transaction conflicts (redis.TxFailedErr) are, since retrying is
// how optimistic WATCH transactions resolve contention.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, redis.Nil) {
		return false
	}

	if errors.Is(err, redis.ErrClosed) {
		return false
	}

	if errors.Is(err, redis.TxFailedErr) {
		return true
	}

	if errors.Is(err, redis.ErrPoolTimeout) {
		return true
	}

	for _, prefix := range transientPrefixes {
		if redis.HasErrorPrefix(err, prefix) {
			return true
		}
	}

	return netfail.Transient(err)
}

// Policy returns a retry policy that allows another attempt only for
// transient Redis failures. Causes marked with retry.NonRetryable are always
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
