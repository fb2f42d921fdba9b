package proxy

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// IfNoneMatchHeader carries the client's conditional validator.
	IfNoneMatchHeader = "If-None-Match"

	// MinCalendarDays and MaxCalendarDays bound the contribution
	// calendar window. Values outside the range are clamped.
	MinCalendarDays = 1
	MaxCalendarDays = 365

	// DefaultCalendarDays is used when a request omits ?days.
	DefaultCalendarDays = 365
)

// allowedPassthroughPrefixes lists the GitHub REST paths the generic
// passthrough endpoint will forward. Anything else is rejected before an
// upstream call is made.
var allowedPassthroughPrefixes = []string{
	"/rate_limit",
	"/users/",
	"/repos/",
}

// Username extracts the ?user parameter, falling back to the configured
// default login. An empty result after fallback is a client error.
func Username(r *http.Request, fallback string) (string, error) {
	return account(r, "user", fallback)
}

// Login extracts the ?login parameter the calendar endpoint uses, with
// the same fallback and validation rules as Username.
func Login(r *http.Request, fallback string) (string, error) {
	return account(r, "login", fallback)
}

func account(r *http.Request, param, fallback string) (string, error) {
	user := strings.TrimSpace(r.URL.Query().Get(param))
	if user == "" {
		user = fallback
	}
	if user == "" {
		return "", &RequestError{
			Message: param + " is required and no default login is configured",
			Param:   param,
		}
	}
	if strings.ContainsAny(user, " /\\?#") {
		return "", &RequestError{
			Message: fmt.Sprintf("invalid %s %q", param, user),
			Param:   param,
		}
	}
	return user, nil
}

// CalendarDays extracts the ?days parameter for the contribution calendar.
// A missing parameter yields DefaultCalendarDays; a non-numeric value is a
// client error; out-of-range values are clamped into [1, 365].
func CalendarDays(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return DefaultCalendarDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &RequestError{
			Message: fmt.Sprintf("days must be an integer, got %q", raw),
			Param:   "days",
		}
	}
	if days < MinCalendarDays {
		return MinCalendarDays, nil
	}
	if days > MaxCalendarDays {
		return MaxCalendarDays, nil
	}
	return days, nil
}

// BoolFlag reports whether a query flag is set. Both "1" and "true"
// (case-insensitive) count as set; anything else, including absence,
// does not.
func BoolFlag(r *http.Request, name string) bool {
	val := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	return val == "1" || val == "true"
}

// PassthroughPath extracts and validates the ?path parameter for the
// generic passthrough endpoint. The path must be rooted, free of parent
// traversal, and within the forwarding allowlist. A missing path defaults
// to the rate limit probe.
func PassthroughPath(r *http.Request) (string, error) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		return "/rate_limit", nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.Contains(path, "..") {
		return "", &RequestError{
			Message: "path must not contain parent traversal",
			Param:   "path",
		}
	}
	for _, prefix := range allowedPassthroughPrefixes {
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return path, nil
		}
	}
	return "", &RequestError{
		Message: fmt.Sprintf("path %q is not forwardable", path),
		Param:   "path",
	}
}

// IfNoneMatch extracts the client's conditional validator, if any.
func IfNoneMatch(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(IfNoneMatchHeader))
}

// RequestError represents a request parsing or validation error.
// It maps to a 400 response.
type RequestError struct {
	Message string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s", e.Param, e.Message)
	}
	return e.Message
}
