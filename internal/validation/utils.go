package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/deppfellow/customers-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
type Validatable interface {
	Validate() error
}

// RequestBinder is implemented by payloads that cannot be populated by
// echo's default binder, for example a raw text body.
type RequestBinder interface {
	BindRequest(c echo.Context) error
}

// CustomValidationError represents a single validation issue for a field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a list of violated rules that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Messages returns the rule messages in order.
func (c CustomValidationErrors) Messages() []string {
	messages := make([]string, 0, len(c))
	for _, e := range c {
		messages = append(messages, e.Message)
	}
	return messages
}

// RuleMessages maps "<field>.<tag>" to a human readable message.
type RuleMessages map[string]string

// Translate converts validator.ValidationErrors into CustomValidationErrors
// using messages. Rules without an entry fall back to the generic wording
// of extractValidationError. Any other error is returned unchanged.
func Translate(err error, messages RuleMessages) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := make(CustomValidationErrors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " " + ruleMessage(fe)
		}
		out = append(out, CustomValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

// BindAndValidate binds request data into payload and validates it.
//
// Payloads implementing RequestBinder bind themselves, everything else
// goes through c.Bind. Binding failures and validation failures are both
// returned as 400 HTTPErrors; validation failures carry field errors.
func BindAndValidate(c echo.Context, payload Validatable) error {
	var err error
	if binder, ok := payload.(RequestBinder); ok {
		err = binder.BindRequest(c)
	} else {
		err = c.Bind(payload)
	}
	if err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

func bindErrorMessage(err error) string {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		return fmt.Sprintf("invalid value for %s", bindingErr.Field)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return msg
		}
		return http.StatusText(echoErr.Code)
	}

	return "Invalid request"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: ruleMessage(fe),
		})
	}

	return "Validation failed", fieldErrors
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"

	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "datetime":
		return "must be a valid date (YYYY-MM-DD)"

	case "pastdate":
		return "must be in the past"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}
