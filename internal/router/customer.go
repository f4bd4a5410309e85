package router

import (
	"net/http"

	"github.com/deppfellow/customers-api/internal/handler"
	"github.com/deppfellow/customers-api/internal/model"
	"github.com/labstack/echo/v4"
)

func registerCustomerRoutes(r *echo.Echo, h *handler.Handlers, m ...echo.MiddlewareFunc) {
	ch := h.Customer
	customers := r.Group("/customers", m...)

	customers.POST("", handler.Handle(ch.Handler, ch.CreateCustomer, http.StatusOK, &model.CreateCustomerRequest{}))
	customers.GET("", handler.Handle(ch.Handler, ch.ListCustomers, http.StatusOK, &model.ListCustomersRequest{}))
	customers.GET("/:id", handler.Handle(ch.Handler, ch.GetCustomer, http.StatusOK, &model.CustomerIDRequest{}))
	customers.PATCH("/:id/preferred-name", handler.Handle(ch.Handler, ch.UpdatePreferredName, http.StatusOK, &model.UpdatePreferredNameRequest{}))
	customers.DELETE("/:id", handler.HandleNoContent(ch.Handler, ch.DeleteCustomer, http.StatusNoContent, &model.CustomerIDRequest{}))
}
