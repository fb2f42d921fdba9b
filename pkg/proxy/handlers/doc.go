// Package handlers provides HTTP request handlers for the relay server.
//
// This package implements all endpoint handlers: the generic GitHub REST
// passthrough, the shaped calendar/catalog/readme endpoints, the LeetCode
// contest endpoint, and health checks.
//
// # Request Flow
//
// Each shaped handler follows a consistent pattern:
//
//  1. Parse and validate query parameters
//  2. Probe the warm memo (skipped when ?refresh=1)
//  3. Fetch from the upstream adapter on a miss
//  4. Shape the payload through the mapper package
//  5. Serialize once, memoize the exact bytes with their entity tag
//  6. Write the response with freshness headers (or a 304 on a
//     matching If-None-Match)
//
// The passthrough handler skips shaping and memoization entirely: it
// mirrors the upstream status, body, entity tag, and rate-limit headers
// verbatim, including upstream 304s.
//
// # Degraded responses
//
// A degraded payload (null user node, empty calendar, snapshot fallback)
// is still a 200, but always carries a "warning" field so the front-end
// can distinguish "nothing to show" from "upstream unavailable". Hard
// failures (bad input, missing credential, unreachable upstream with no
// fallback) map to statuses through the proxy package's error taxonomy.
package handlers
