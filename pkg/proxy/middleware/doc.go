// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all HTTP requests including request ID generation,
// logging, tracing, CORS, panic recovery, and timeout enforcement.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(RequestID(Tracing(CORS(Timeout(handler))))))
//
// Order (innermost to outermost):
//  1. Timeout: Enforce per-request timeout
//  2. CORS: Add Cross-Origin Resource Sharing headers
//  3. Tracing: Wrap the request in a server span
//  4. RequestID: Generate and propagate request ID
//  5. Logging: Log request/response details
//  6. Recovery: Recover from panics
//
// # Request ID
//
// RequestIDMiddleware generates a unique ID for each request using UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The request ID is:
//   - Added to context for handler access
//   - Included in response headers
//   - Logged with all request/response logs
//   - Attached to the request's trace span
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record request
// details including method, path, status, latency, request ID, and the
// cache disposition the handler reported through X-Relay-Cache.
//
// # CORS
//
// CORSMiddleware adds Cross-Origin Resource Sharing headers for browser
// clients. The relay is a public read-only API, so the defaults allow any
// origin with safe methods and expose the validator headers (ETag,
// X-Relay-Cache, X-Asset-Version) that browsers need for revalidation.
//
// # Recovery
//
// RecoveryMiddleware catches panics in handlers and converts them to HTTP
// 500 errors with Cache-Control: no-store. The panic stack trace is logged
// but not exposed to clients.
//
// # Timeout
//
// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the timeout is exceeded the handler receives
// context.DeadlineExceeded and the client receives 504 Gateway Timeout.
//
// # Thread Safety
//
// All middleware functions are thread-safe and can be called concurrently
// from multiple goroutines.
package middleware
