// Package router builds the echo instance: global middleware, the error
// handler and every route group.
package router

import (
	"github.com/deppfellow/customers-api/internal/handler"
	"github.com/deppfellow/customers-api/internal/middleware"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/deppfellow/customers-api/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// The limiter runs after the request logger so rejected requests are
	// logged with their request id.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.RateLimit.Limiter(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	var auth []echo.MiddlewareFunc
	if services.Auth.Enabled() {
		auth = append(auth, middlewares.Auth.RequireAuth)
	}
	registerCustomerRoutes(router, h, auth...)

	return router
}
