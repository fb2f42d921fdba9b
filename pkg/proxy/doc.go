// Package proxy provides the HTTP request/response plumbing for the relay.
//
// The relay sits between a static portfolio site and the third-party APIs
// it reads from (GitHub REST/GraphQL and LeetCode GraphQL). Handlers parse
// and validate browser-facing query parameters, call the upstream adapters,
// shape the responses, and emit the freshness headers the CDN relies on.
//
// # Architecture
//
//   - Handlers: endpoint processing (passthrough, calendar, catalog,
//     readme, contest, health checks)
//   - Middleware: cross-cutting concerns (logging, CORS, request ID,
//     recovery, timeouts, tracing)
//   - request.go / response.go: parameter parsing and cached JSON writing
//   - errors.go: mapping the upstream error taxonomy to HTTP statuses
//
// # Response contract
//
// Successful shaped responses are written from a single serialization:
// the same bytes are memoized, hashed into the entity tag, and sent to
// the client, so a memo hit is byte-identical with the response that
// produced its validator. Clients presenting a matching If-None-Match
// receive a 304 with the freshness headers intact. Error responses are
// always Cache-Control: no-store.
package proxy
