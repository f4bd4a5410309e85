package handler

import (
	"github.com/deppfellow/customers-api/internal/errs"
	"github.com/deppfellow/customers-api/internal/model"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/deppfellow/customers-api/internal/service"
	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	Handler
	customers *service.CustomerService
}

func NewCustomerHandler(s *server.Server, customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		Handler:   NewHandler(s),
		customers: customers,
	}
}

func (h *CustomerHandler) CreateCustomer(c echo.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	customer, err := req.ToCustomer()
	if err != nil {
		return nil, errs.NewBadRequestError("Validation failed", true, nil, []errs.FieldError{{
			Field: "dateOfBirth",
			Error: model.DateOfBirthFormatMessage,
		}}, nil)
	}

	return h.customers.Create(c.Request().Context(), customer)
}

func (h *CustomerHandler) ListCustomers(c echo.Context, _ *model.ListCustomersRequest) ([]model.Customer, error) {
	return h.customers.List(c.Request().Context())
}

func (h *CustomerHandler) GetCustomer(c echo.Context, req *model.CustomerIDRequest) (*model.Customer, error) {
	return h.customers.GetByID(c.Request().Context(), req.ID)
}

func (h *CustomerHandler) UpdatePreferredName(c echo.Context, req *model.UpdatePreferredNameRequest) (*model.Customer, error) {
	return h.customers.UpdatePreferredName(c.Request().Context(), req.ID, req.PreferredName)
}

func (h *CustomerHandler) DeleteCustomer(c echo.Context, req *model.CustomerIDRequest) error {
	return h.customers.Delete(c.Request().Context(), req.ID)
}
