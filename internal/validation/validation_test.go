package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/customers-api/internal/errs"
	"github.com/labstack/echo/v4"
)

type signupRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Birthday string `json:"birthday" validate:"required,datetime=2006-01-02,pastdate"`
	Nickname string `json:"nickname" validate:"omitempty,max=5"`
}

func (r *signupRequest) Validate() error {
	if err := Validator().Struct(r); err != nil {
		return Translate(err, RuleMessages{"name.notblank": "Name is required"})
	}
	return nil
}

type pathRequest struct {
	ID int64
}

func (r *pathRequest) BindRequest(c echo.Context) error {
	return echo.PathParamsBinder(c).Int64("id", &r.ID).BindError()
}

func (r *pathRequest) Validate() error { return nil }

func withNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = prev })
}

func TestIsPast(t *testing.T) {
	withNow(t, time.Date(2024, time.June, 10, 15, 0, 0, 0, time.Local))

	tests := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2024, time.June, 9, 23, 59, 0, 0, time.Local), true},
		{time.Date(2024, time.June, 10, 0, 0, 0, 0, time.Local), false},
		{time.Date(2024, time.June, 11, 0, 0, 0, 0, time.Local), false},
		{time.Date(1900, time.January, 1, 0, 0, 0, 0, time.Local), true},
	}
	for _, tt := range tests {
		if got := IsPast(tt.date); got != tt.want {
			t.Errorf("IsPast(%s) = %v, want %v", tt.date.Format(DateLayout), got, tt.want)
		}
	}
}

func TestTranslate(t *testing.T) {
	withNow(t, time.Date(2024, time.June, 10, 12, 0, 0, 0, time.Local))

	err := (&signupRequest{Name: " ", Birthday: "2024-06-10", Nickname: "toolong"}).Validate()

	var violations CustomValidationErrors
	if !errors.As(err, &violations) {
		t.Fatalf("got %T, want CustomValidationErrors", err)
	}

	got := strings.Join(violations.Messages(), "|")
	want := "Name is required|birthday must be in the past|nickname must not exceed 5 characters"
	if got != want {
		t.Errorf("messages = %q, want %q", got, want)
	}
}

func TestBindAndValidate(t *testing.T) {
	withNow(t, time.Date(2024, time.June, 10, 12, 0, 0, 0, time.Local))
	e := echo.New()

	newContext := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return e.NewContext(req, httptest.NewRecorder())
	}

	if err := BindAndValidate(newContext(`{"name":"Ann","birthday":"1990-01-01"}`), &signupRequest{}); err != nil {
		t.Fatalf("valid payload: %v", err)
	}

	err := BindAndValidate(newContext(`{"name":"","birthday":"1990-13-01"}`), &signupRequest{})
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest || !httpErr.Override {
		t.Fatalf("invalid payload: %v", err)
	}
	if len(httpErr.Errors) != 2 || httpErr.Errors[0].Field != "name" || httpErr.Errors[1].Field != "birthday" {
		t.Errorf("field errors = %+v", httpErr.Errors)
	}

	err = BindAndValidate(newContext(`{"name":`), &signupRequest{})
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest || httpErr.Override {
		t.Errorf("malformed JSON: %v", err)
	}
}

func TestBindAndValidateCustomBinder(t *testing.T) {
	var (
		bound *pathRequest
		err   error
	)

	e := echo.New()
	e.GET("/items/:id", func(c echo.Context) error {
		bound = &pathRequest{}
		err = BindAndValidate(c, bound)
		return nil
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest || httpErr.Message != "invalid value for id" {
		t.Errorf("non-numeric id: %+v", err)
	}

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if err != nil || bound.ID != 42 {
		t.Errorf("numeric id: %v, %d", err, bound.ID)
	}
}
