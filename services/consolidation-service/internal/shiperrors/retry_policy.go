// services/consolidation-service/internal/shiperrors/retry_policy.go
package shiperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Network wraps a transport failure as ErrNetwork while keeping the cause
// reachable for IsRetryable.
func Network(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNetwork, op, err)
}

// IsRetryable reports whether the user can reasonably click again.
// Nothing in the engine retries on its own.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCalculationInProgress) {
		return true
	}
	if !errors.Is(err, ErrNetwork) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return isRetryableNetworkError(err) || isRetryableSystemError(err) || errors.Is(err, ErrUpstreamUnavailable)
}

// ErrUpstreamUnavailable marks 5xx answers from a dependency.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

func isRetryableNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func isRetryableSystemError(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
