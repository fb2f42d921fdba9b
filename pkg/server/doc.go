// Package server ties the relay's HTTP surface together: routing, the
// middleware chain, per-endpoint metrics, and graceful lifecycle.
//
// # Routes
//
//   - GET /proxy    - allow-listed GitHub REST passthrough (?path=)
//   - GET /calendar - contribution calendar (?user=, ?days=, ?refresh=)
//   - GET /catalog  - repository catalog (?user=, ?topics=, ?with_readmes=, ?refresh=)
//   - GET /readme   - single repository README (?repo=, ?refresh=)
//   - GET /contest  - LeetCode contest standing (?user=, ?refresh=)
//   - GET /health   - liveness probe
//   - GET /ready    - readiness probe
//   - GET /metrics  - Prometheus exposition (when enabled)
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//  1. Recovery: turns panics into uncached 500s
//  2. Logging: one structured line per request, with cache state
//  3. RequestID: stamps X-Request-ID
//  4. Tracing: one span per request (when tracing is enabled)
//  5. CORS: headers for the browser dashboard
//  6. Timeout: bounds total request handling
//
// # Graceful Shutdown
//
// Start blocks until the context is cancelled or SIGTERM/SIGINT arrives,
// then drains in-flight requests up to the configured shutdown timeout.
package server
