// Package api implements the JSON HTTP API.
//
// The server exposes one chat endpoint plus health probes:
//
//	POST /api/v1/chat  - answer a civil engineering question
//	GET  /health       - liveness probe
//	GET  /ready        - readiness probe with knowledge store stats
//
// Requests pass through a middleware stack (outermost first):
// recovery, request ID, logging, CORS, rate limiting. Rate limits are
// sliding-window per client key: requests carrying an X-User-ID header are
// keyed and limited as authenticated clients, everything else per IP at the
// stricter anonymous limit.
//
// All error responses share one JSON shape: {"error": code, "message": text}.
package api
