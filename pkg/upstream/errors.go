package upstream

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates a missing or unusable process credential.
// It is fatal for the affected handlers and is never retried; the process
// must be redeployed with a valid credential.
type ConfigurationError struct {
	// Upstream is the name of the upstream requiring the credential.
	Upstream string

	// Message describes what is missing.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("upstream %q configuration error: %s", e.Upstream, e.Message)
}

// HTTPError indicates a non-2xx upstream response, or a 2xx GraphQL
// response carrying a non-empty errors array.
type HTTPError struct {
	// Upstream is the name of the upstream that failed.
	Upstream string

	// StatusCode is the upstream HTTP status (200 for GraphQL-level errors).
	StatusCode int

	// Message is the upstream error message.
	Message string

	// Details carries upstream diagnostics for debug responses.
	Details any
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream %q error (status %d): %s", e.Upstream, e.StatusCode, e.Message)
}

// DataError indicates a structurally valid upstream response missing
// expected data, e.g. a GraphQL null user node. Handlers for "nice to
// have" endpoints degrade on it instead of failing the request.
type DataError struct {
	// Upstream is the name of the upstream.
	Upstream string

	// Field is the path of the absent or malformed field.
	Field string

	// Message explains the likely cause.
	Message string
}

// Error implements the error interface.
func (e *DataError) Error() string {
	return fmt.Sprintf("upstream %q returned no usable %s: %s", e.Upstream, e.Field, e.Message)
}

// NetworkError indicates a transport-level failure before any upstream
// status was received.
type NetworkError struct {
	// Upstream is the name of the upstream.
	Upstream string

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %q network error: %v", e.Upstream, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsData reports whether err is a DataError.
func IsData(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// StatusOf returns the upstream HTTP status carried by err, or 0 when the
// error carries none (configuration, data and network failures).
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
