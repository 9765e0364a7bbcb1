package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revelfire/common-lib/common/internal/netfail"
	"github.com/revelfire/common-lib/common/retry"
)

// Error labels the server attaches to operations that are safe to repeat.
const (
	labelRetryableWrite          = "RetryableWriteError"
	labelTransientTransaction    = "TransientTransactionError"
	labelUnknownTransactionsFate = "UnknownTransactionCommitResult"
)

// transientCodes lists server codes raised while a replica set is electing,
// stepping down, or shutting down. They clear once the topology settles.
var transientCodes = map[int]struct{}{
	6:     {}, // HostUnreachable
	7:     {}, // HostNotFound
	89:    {}, // NetworkTimeout
	91:    {}, // ShutdownInProgress
	134:   {}, // ReadConcernMajorityNotAvailableYet
	189:   {}, // PrimarySteppedDown
	262:   {}, // ExceededTimeLimit
	9001:  {}, // SocketException
	10107: {}, // NotWritablePrimary
	11600: {}, // InterruptedAtShutdown
	11602: {}, // InterruptedDueToReplStateChange
	13435: {}, // NotPrimaryNoSecondaryOk
	13436: {}, // NotPrimaryOrSecondary
}

// Transient reports whether err represents a MongoDB failure worth
// retrying. Server errors are classified by label and code; everything else
// falls back to the driver's timeout and network checks, then to
// network-level inspection.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return false
	}

	if errors.Is(err, mongo.ErrClientDisconnected) {
		return false
	}

	if mongo.IsDuplicateKeyError(err) {
		return false
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && transientServerError(serverErr) {
		return true
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	return netfail.Transient(err)
}

func transientServerError(serverErr mongo.ServerError) bool {
	if serverErr.HasErrorLabel(labelRetryableWrite) ||
		serverErr.HasErrorLabel(labelTransientTransaction) ||
		serverErr.HasErrorLabel(labelUnknownTransactionsFate) {
		return true
	}

	for code := range transientCodes {
		if serverErr.HasErrorCode(code) {
			return true
		}
	}

	return false
}

// Policy returns a retry policy that allows another attempt only for
// transient MongoDB failures. Causes marked with retry.NonRetryable are
// always vetoed, regardless of classification.
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
