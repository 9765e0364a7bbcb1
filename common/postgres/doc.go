// Package postgres classifies PostgreSQL failures for retry decisions.
//
// The package never dials or queries; it only inspects errors produced by
// pgx-based callers. Transient conditions (connection loss, serialization
// failures, deadlocks, resource exhaustion, operator intervention) are worth
// another attempt; constraint violations and other SQL-level failures are
// not. Use Policy with a retry.Executor, or Transient directly.
package postgres
