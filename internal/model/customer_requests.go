package model

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/deppfellow/customers-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// Rule messages returned to clients.
const (
	FirstNameRequiredMessage     = "First name is required"
	LastNameRequiredMessage      = "Last name is required"
	DateOfBirthRequiredMessage   = "Date of birth is required"
	DateOfBirthFormatMessage     = "Date of birth must be a valid date (YYYY-MM-DD)"
	DateOfBirthPastMessage       = "Date of birth must be in the past"
	PreferredNameRequiredMessage = "Preferred name cannot be empty if provided"
)

// maxTextBody caps the raw preferred-name body.
const maxTextBody = 64 << 10

var customerRuleMessages = validation.RuleMessages{
	"firstName.notblank":   FirstNameRequiredMessage,
	"lastName.notblank":    LastNameRequiredMessage,
	"dateOfBirth.required": DateOfBirthRequiredMessage,
	"dateOfBirth.datetime": DateOfBirthFormatMessage,
	"dateOfBirth.pastdate": DateOfBirthPastMessage,
}

// CreateCustomerRequest is the POST /customers payload. Any id in the body
// is ignored; the store assigns it. The preferred name is stored as sent.
type CreateCustomerRequest struct {
	FirstName     string  `json:"firstName" validate:"notblank"`
	LastName      string  `json:"lastName" validate:"notblank"`
	PreferredName *string `json:"preferredName"`
	DateOfBirth   string  `json:"dateOfBirth" validate:"required,datetime=2006-01-02,pastdate"`
}

// Validate returns the violated rules as validation.CustomValidationErrors.
func (r *CreateCustomerRequest) Validate() error {
	if err := validation.Validator().Struct(r); err != nil {
		return validation.Translate(err, customerRuleMessages)
	}
	return nil
}

// ToCustomer converts a validated request into an unsaved Customer.
func (r *CreateCustomerRequest) ToCustomer() (*Customer, error) {
	dob, err := ParseDate(r.DateOfBirth)
	if err != nil {
		return nil, err
	}

	return &Customer{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PreferredName: r.PreferredName,
		DateOfBirth:   dob,
	}, nil
}

// ListCustomersRequest is the (empty) GET /customers payload.
type ListCustomersRequest struct{}

func (r *ListCustomersRequest) Validate() error {
	return nil
}

// CustomerIDRequest carries the {id} path parameter. Ids that were never
// assigned are a not-found outcome, not a validation failure.
type CustomerIDRequest struct {
	ID int64 `json:"-"`
}

// BindRequest reads the id path parameter. A non-numeric id is a binding
// error.
func (r *CustomerIDRequest) BindRequest(c echo.Context) error {
	return echo.PathParamsBinder(c).Int64("id", &r.ID).BindError()
}

func (r *CustomerIDRequest) Validate() error {
	return nil
}

// UpdatePreferredNameRequest is the PATCH /customers/{id}/preferred-name
// payload. The body is the new name as raw text. With a JSON content type
// a string literal ("Johnny") or {"preferredName": "Johnny"} is unwrapped.
type UpdatePreferredNameRequest struct {
	ID            int64
	PreferredName string
}

// BindRequest reads the id path parameter and the text body.
func (r *UpdatePreferredNameRequest) BindRequest(c echo.Context) error {
	if err := echo.PathParamsBinder(c).Int64("id", &r.ID).BindError(); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTextBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read request body").SetInternal(err)
	}

	r.PreferredName = decodePreferredName(c.Request().Header.Get(echo.HeaderContentType), body)
	return nil
}

// decodePreferredName unwraps a JSON string or {"preferredName": ...}
// object when the content type is JSON. Every other body is the name as
// raw text.
func decodePreferredName(contentType string, body []byte) string {
	if !strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		return string(body)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return string(body)
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err == nil {
			return name
		}

	case '{':
		var payload struct {
			PreferredName string `json:"preferredName"`
		}
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			return payload.PreferredName
		}
	}

	return string(body)
}

// Validate rejects a blank name before any lookup happens.
func (r *UpdatePreferredNameRequest) Validate() error {
	if strings.TrimSpace(r.PreferredName) == "" {
		return validation.CustomValidationErrors{
			{Field: "preferredName", Message: PreferredNameRequiredMessage},
		}
	}
	return nil
}
