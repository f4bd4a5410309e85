// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules declared in struct
// tags, registers the rules the service needs beyond the built-in ones,
// and turns validation failures into errs.HTTPError values clients can read.
package validation

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the ISO calendar date layout used on the wire.
const DateLayout = "2006-01-02"

// Now returns the time pastdate compares against. Tests may replace it.
var Now = time.Now

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
//
// Field names in errors are the json tag names, and two extra tags are
// registered:
//   - notblank: a string that is not empty after trimming whitespace
//   - pastdate: a YYYY-MM-DD string strictly before today's local date
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = validate.RegisterValidation("notblank", isNotBlank)
		_ = validate.RegisterValidation("pastdate", isPastDate)
	})
	return validate
}

func isNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

func isPastDate(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	date, err := time.ParseInLocation(DateLayout, field.String(), time.Local)
	if err != nil {
		return false
	}
	return IsPast(date)
}

// IsPast reports whether date falls on a calendar day strictly before today.
func IsPast(date time.Time) bool {
	now := Now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	return day.Before(today)
}
