// Package netfail classifies network-level errors as transient or not, for
// the per-backend retry policies. Backend packages layer their own protocol
// error tables on top of this shared check.
package netfail

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Transient reports whether err is a network-level failure that a later
// attempt could plausibly outlive: timeouts, DNS hiccups, refused or reset
// connections, unreachable hosts, and abruptly dropped streams.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}

		return transientSyscall(opErr.Err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return transientSyscall(err)
}

func transientSyscall(err error) bool {
	if err == nil {
		return false
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.ETIMEDOUT,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}
