package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "firstName", "error": "First name is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Action is an optional hint telling the client what to do next.
type Action struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// HTTPError is the error type serialized to API clients.
//
// Override tells the client the message is safe to show to end users as is.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`

	// Action is an optional client instruction.
	Action *Action `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError with the same code. A target
// without a code matches any HTTPError, so errors.Is(err, &HTTPError{})
// answers "is this an API error at all".
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
