package proxy

import (
	"context"
	"errors"
	"net/http"

	"folio-hq/relay/pkg/upstream"
)

// ErrorStatus maps an error to the HTTP status code the relay should
// return. Client input problems map to 400, missing credentials to 500
// (they are an operator fault, not the caller's), upstream HTTP failures
// propagate their status, and transport failures surface as 502.
func ErrorStatus(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}

	var cfgErr *upstream.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}

	var httpErr *upstream.HTTPError
	if errors.As(err, &httpErr) {
		// GraphQL-level failures arrive with the transport's 200; the
		// relay reports them as a bad gateway rather than success.
		if httpErr.StatusCode < 400 {
			return http.StatusBadGateway
		}
		return httpErr.StatusCode
	}

	var dataErr *upstream.DataError
	if errors.As(err, &dataErr) {
		return http.StatusBadGateway
	}

	var netErr *upstream.NetworkError
	if errors.As(err, &netErr) {
		if errors.Is(netErr.Cause, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	return http.StatusInternalServerError
}

// ErrorMessage returns the client-facing message for an error. Operator
// faults are reported generically so credentials and internal details
// never leak into responses.
func ErrorMessage(err error) (message, details string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message, reqErr.Param
	}

	var cfgErr *upstream.ConfigurationError
	if errors.As(err, &cfgErr) {
		return "upstream credential is not configured", cfgErr.Upstream
	}

	var httpErr *upstream.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message, httpErr.Upstream
	}

	var dataErr *upstream.DataError
	if errors.As(err, &dataErr) {
		return dataErr.Message, dataErr.Upstream
	}

	var netErr *upstream.NetworkError
	if errors.As(err, &netErr) {
		return "upstream is unreachable", netErr.Upstream
	}

	return "an internal error occurred", ""
}

// WriteErrorFor maps err to a status and envelope and writes it.
func WriteErrorFor(w http.ResponseWriter, err error) {
	message, details := ErrorMessage(err)
	WriteError(w, ErrorStatus(err), message, details)
}
