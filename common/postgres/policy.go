package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/revelfire/common-lib/common/internal/netfail"
	"github.com/revelfire/common-lib/common/retry"
)

// SQLSTATE classes whose members signal conditions that typically clear on
// their own once the server or the network recovers.
const (
	classConnectionException   = "08"
	classInsufficientResources = "53"
	classOperatorIntervention  = "57"
)

// transientCodes lists SQLSTATE codes outside the transient classes that
// still resolve on a later attempt.
var transientCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// transientFragments matches driver and pooler failures that surface as
// plain wrapped errors rather than typed ones.
var transientFragments = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"unexpected eof",
	"conn closed",
	"closed pool",
}

// Transient reports whether err represents a PostgreSQL failure worth
// retrying. Server errors are classified by SQLSTATE; everything else falls
// back to pgconn's own retry hint and network-level inspection.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientCode(pgErr.Code)
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	if netfail.Transient(err) {
		return true
	}

	return transientMessage(err.Error())
}

func transientCode(code string) bool {
	if _, ok := transientCodes[code]; ok {
		return true
	}

	if len(code) < 2 {
		return false
	}

	switch code[:2] {
	case classConnectionException, classInsufficientResources, classOperatorIntervention:
		return true
	default:
		return false
	}
}

func transientMessage(message string) bool {
	message = strings.ToLower(message)

	for _, fragment := range transientFragments {
		if strings.Contains(message, fragment) {
			return true
		}
	}

	return false
}

// Policy returns a retry policy that allows another attempt only for
// transient PostgreSQL failures. Causes marked with retry.NonRetryable are
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
