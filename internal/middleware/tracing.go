package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/customers-api/internal/server"
)

// TracingMiddleware owns the New Relic related echo middleware.
//
// It has two layers:
//  1. NewRelicMiddleware() -> starts a transaction per request
//  2. EnhanceTracing()     -> adds request attributes and notices server errors
//
// nrApp is nil when the agent is disabled (no license key); both layers
// then pass requests through unchanged.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

// NewTracingMiddleware constructs TracingMiddleware.
func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware returns the New Relic echo middleware.
//
// With an application it installs nrecho.Middleware, which:
//   - starts a transaction for each request
//   - stores it in the request context
//   - records timing and the response status
//
// newrelic.FromContext in later middleware, handlers and the pgx tracer
// depends on this running first.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to the current transaction.
//
// Attributes added:
//   - http.real_ip and http.user_agent
//   - request.id, when RequestID ran
//   - user.id, when the auth middleware set one
//   - http.status_code, after the handler returns
//
// Only errors that render as 5xx are noticed, wrapped with nrpkgerrors for
// the stack trace; 4xx outcomes stay out of the error rate. The error is
// still returned so GlobalErrorHandler writes the response.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			// The user agent is high cardinality; it is an attribute, never a
			// transaction name.
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())

			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}
			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}

			err := next(c)
			if err != nil && toHTTPError(err).Status >= 500 {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
