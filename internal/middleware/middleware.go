// Package middleware holds the echo middleware shared by every route:
// request ids, request-scoped logging, New Relic tracing, rate limiting,
// optional Clerk authentication and the global error handler.
package middleware
