// Package handler adapts HTTP requests to service calls.
//
// Every endpoint is a typed function wrapped by Handle or HandleNoContent,
// which bind and validate the request, log and trace the call, and write
// the response.
package handler

import (
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/deppfellow/customers-api/internal/service"
)

// Handlers groups every HTTP handler.
type Handlers struct {
	Health   *HealthHandler
	Customer *CustomerHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		Customer: NewCustomerHandler(s, services.Customer),
	}
}
