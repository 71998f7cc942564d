package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// ErrUnauthorized marks a rejected or expired credential. It is an ordinary
// failure: callers degrade to their offline fallback.
var ErrUnauthorized = eris.New("unauthorized")

// FailureKind classifies a failed remote call for logging and metrics.
type FailureKind string

const (
	FailureAuth     FailureKind = "auth"
	FailureNetwork  FailureKind = "network"
	FailureUpstream FailureKind = "upstream"
	FailureCircuit  FailureKind = "circuit_open"
	FailureDecode   FailureKind = "decode"
	FailureCanceled FailureKind = "canceled"
)

// StatusError carries a non-200 HTTP status from an upstream.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
}

// CheckStatus maps an HTTP status to nil, ErrUnauthorized or a StatusError.
func CheckStatus(service string, statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return eris.Wrapf(ErrUnauthorized, "%s: status %d", service, statusCode)
	default:
		return &StatusError{Service: service, StatusCode: statusCode}
	}
}

// IsTransient reports whether err looks like a network-level or server-side
// hiccup rather than a permanent rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return IsTransientHTTPStatus(se.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"connection refused",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus returns true for statuses that indicate a temporary upstream problem.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// CountsAsOutage is the breaker trip policy: expired credentials and transient
// upstream failures count, caller cancellation does not.
func CountsAsOutage(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUnauthorized) || IsTransient(err)
}

// Classify returns the FailureKind for a non-nil error.
func Classify(err error) FailureKind {
	var se *StatusError
	switch {
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, ErrCircuitOpen):
		return FailureCircuit
	case errors.Is(err, ErrUnauthorized):
		return FailureAuth
	case errors.As(err, &se):
		return FailureUpstream
	case errors.Is(err, ErrDecode):
		return FailureDecode
	default:
		return FailureNetwork
	}
}

// ErrDecode marks an upstream body that could not be parsed.
var ErrDecode = eris.New("decode response")
