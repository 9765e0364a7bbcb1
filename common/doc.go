// Package common is the root of the common-lib shared library. It carries
// small cross-cutting helpers (environment lookups, context plumbing for
// loggers and correlation IDs) used by the leaf packages.
//
// The heart of the library is the retry package, a policy-driven retryable
// task executor, together with its backoff strategies and the per-backend
// failure classification policies (postgres, redis, rabbitmq, mongo, grpc).
package common
