package middleware

import (
	"github.com/deppfellow/customers-api/internal/logger"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	// UserIDKey and UserRoleKey are the echo context keys the auth
	// middleware stores the Clerk session subject and role under.
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"

	// LoggerKey stores the request-scoped logger on the echo context.
	LoggerKey = "logger"
)

// ContextEnhancer enriches every request with a request-scoped logger.
//
// The logger carries:
//   - request_id
//   - method, path (the route template, e.g. "/customers/:id") and ip
//   - trace.id and span.id, when a New Relic transaction exists
//   - user_id and user_role, when the auth middleware set them
//
// It is stored on the echo context (GetLogger) and on the request's
// context.Context (logger.FromContext), so the service layer logs with the
// same fields without depending on echo.
type ContextEnhancer struct {
	server *server.Server
}

// NewContextEnhancer creates a ContextEnhancer using the server's root logger.
func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns the middleware building the request logger.
//
// For every request it:
//  1. reads the request id set by RequestID
//  2. derives a child logger with the request fields
//  3. adds the trace context and user, when available
//  4. stores the logger on the echo context and the request context
//
// Middleware registered before it (or an auth check that has not run yet)
// sees a no-op logger or no user fields.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			if userID := GetUserID(c); userID != "" {
				contextLogger = contextLogger.With().Str("user_id", userID).Logger()
			}

			if userRole, ok := c.Get(UserRoleKey).(string); ok && userRole != "" {
				contextLogger = contextLogger.With().Str("user_role", userRole).Logger()
			}

			c.Set(LoggerKey, &contextLogger)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), &contextLogger)))

			return next(c)
		}
	}
}

// GetUserID reads the authenticated user id, or "" for an anonymous request.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger returns the request logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}
	logger := zerolog.Nop()
	return &logger
}
