// Package circuitbreaker guards a downstream dependency with a
// sony/gobreaker circuit and bridges the breaker into retry decisions.
//
// Wrap the dependency call with New and Execute so failures are tracked
// consistently, or compose with the retry package: Guard runs every attempt
// of a task through the breaker, and Policy vetoes further retries while
// the breaker is rejecting calls, so an open circuit stops a retry loop
// instead of burning its remaining budget on waits.
package circuitbreaker
