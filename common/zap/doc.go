// Package zap provides the production implementation of log.Logger backed by
// go.uber.org/zap, with OpenTelemetry trace correlation and an optional log
// bridge.
package zap
