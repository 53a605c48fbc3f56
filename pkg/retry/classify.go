package retry

import (
	"context"
	"errors"
	"net"
	"slices"
	"strings"
	"syscall"
)

// retryableMarkers are matched case-insensitively against error text.
var retryableMarkers = []string{
	"timeout",
	"econnrefused",
	"enotfound",
	"network",
	"socket",
	"rate limit",
	"too many requests",
}

var retryableStatusCodes = []int{408, 429, 500, 502, 503, 504}

// IsRetryable reports whether err describes a transient failure.
//
// An error is retryable when anything in its chain reports Retryable() true,
// carries a StatusCode() in {408, 429, 500, 502, 503, 504}, is a timeout, or
// mentions one of the retryable markers in its text. Typed network errors are
// matched by their marker: ECONNREFUSED as "econnrefused" and a DNS
// not-found as "enotfound".
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var flagged interface{ Retryable() bool }
	if errors.As(err, &flagged) && flagged.Retryable() {
		return true
	}

	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && slices.Contains(retryableStatusCodes, coded.StatusCode()) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsRetryableStatus reports whether an HTTP status code is worth retrying.
func IsRetryableStatus(code int) bool {
	return slices.Contains(retryableStatusCodes, code)
}
