// Package grpc classifies gRPC call failures for retry decisions.
//
// Status codes carry the contract: Unavailable, ResourceExhausted, Aborted,
// and DeadlineExceeded describe conditions another attempt can outlive,
// while codes like InvalidArgument or PermissionDenied will fail identically
// every time. Canceled is never retried; it reflects the caller's own
// decision. PolicyFor builds an allowlist policy for services whose error
// contract differs from the defaults.
package grpc
