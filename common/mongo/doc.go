// Package mongo classifies MongoDB failures for retry decisions.
//
// The driver already labels retryable writes and transient transactions;
// this package honors those labels, adds the server codes seen during
// elections, stepdowns, and shutdowns, and folds in driver-level timeout and
// network checks. Missing documents and duplicate keys are results, not
// failures, and are never retried. The package only inspects errors produced
// by mongo-driver callers; it never connects anywhere itself.
package mongo
