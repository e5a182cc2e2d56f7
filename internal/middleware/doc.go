// Package middleware holds the fiber middleware chain of the advisor API:
// request IDs, request logging, panic recovery with optional Sentry
// reporting, CORS, Prometheus HTTP metrics and a Redis-backed rate limiter.
package middleware
