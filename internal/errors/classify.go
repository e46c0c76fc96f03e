package errors

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Class separates errors the worker may retry from errors that must fail fast.
type Class int

const (
	// ClassTransient marks errors worth retrying: timeouts, connection
	// resets, provider overload.
	ClassTransient Class = iota
	// ClassPermanent marks errors retrying cannot fix: validation failures,
	// contract violations, configuration problems.
	ClassPermanent
)

type classifiedError struct {
	class Class
	err   error
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{class: ClassTransient, err: err}
}

// Permanent wraps err so IsTransient reports false for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{class: ClassPermanent, err: err}
}

// IsTransient reports whether err should be retried. Explicit classification
// wins; unclassified errors fall back to network heuristics. Unknown errors
// default to permanent to avoid retry storms.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.class == ClassTransient
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ShouldRetryHTTPStatus(apiErr.HTTPStatus)
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return true
	case strings.Contains(msg, "no such host"),
		strings.Contains(msg, "name resolution"):
		return true
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "unexpected eof"),
		strings.Contains(msg, "network is unreachable"):
		return true
	case strings.Contains(msg, "tls"),
		strings.Contains(msg, "certificate"),
		strings.Contains(msg, "x509"):
		// Configuration issues; retrying cannot fix them.
		return false
	}

	return false
}

// IsPermanent reports whether err must fail fast without retries.
func IsPermanent(err error) bool {
	return err != nil && !IsTransient(err)
}

// ShouldRetryHTTPStatus reports whether an upstream HTTP status is worth retrying.
func ShouldRetryHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
