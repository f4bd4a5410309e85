package model

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/deppfellow/customers-api/internal/validation"
)

func TestCustomerJSON(t *testing.T) {
	c := Customer{
		ID:          7,
		FirstName:   "John",
		LastName:    "Doe",
		DateOfBirth: NewDate(1990, time.January, 1),
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"id":7,"firstName":"John","lastName":"Doe","dateOfBirth":"1990-01-01"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Customer
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.DateOfBirth.Equal(c.DateOfBirth) || back.PreferredName != nil {
		t.Errorf("unexpected round trip: %+v", back)
	}
}

func TestDateUnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"01/02/1990"`), &d); err == nil {
		t.Fatal("expected an error for a non ISO date")
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Fatalf("null should decode to the zero date, got %v / %v", d, err)
	}
}

func TestDateYearOneRoundTrips(t *testing.T) {
	d, err := ParseDate("0001-01-01")
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"0001-01-01"` {
		t.Errorf("got %s, want \"0001-01-01\"", data)
	}
}

func messagesOf(t *testing.T, err error) []string {
	t.Helper()

	var customErrs validation.CustomValidationErrors
	if !errors.As(err, &customErrs) {
		t.Fatalf("expected CustomValidationErrors, got %T (%v)", err, err)
	}
	return customErrs.Messages()
}

func TestCreateCustomerRequestValidate(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	today := time.Now().Format("2006-01-02")

	tests := []struct {
		name string
		req  CreateCustomerRequest
		want []string
	}{
		{
			name: "valid",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: "1990-01-01"},
		},
		{
			name: "blank first name",
			req:  CreateCustomerRequest{FirstName: "   ", LastName: "Doe", DateOfBirth: "1990-01-01"},
			want: []string{FirstNameRequiredMessage},
		},
		{
			name: "missing everything",
			req:  CreateCustomerRequest{},
			want: []string{FirstNameRequiredMessage, LastNameRequiredMessage, DateOfBirthRequiredMessage},
		},
		{
			name: "future date of birth",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: tomorrow},
			want: []string{DateOfBirthPastMessage},
		},
		{
			name: "today is not in the past",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: today},
			want: []string{DateOfBirthPastMessage},
		},
		{
			name: "malformed date",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: "1990-13-40"},
			want: []string{DateOfBirthFormatMessage},
		},
		{
			name: "blank preferred name is accepted on create",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: "1990-01-01", PreferredName: StringPtr(" ")},
		},
		{
			name: "year one is a past date",
			req:  CreateCustomerRequest{FirstName: "John", LastName: "Doe", DateOfBirth: "0001-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if got := messagesOf(t, err); !slices.Equal(got, tt.want) {
				t.Errorf("messages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateCustomerRequestToCustomer(t *testing.T) {
	req := CreateCustomerRequest{
		FirstName:     "John",
		LastName:      "Doe",
		DateOfBirth:   "1990-01-01",
		PreferredName: StringPtr("  Johnny "),
	}

	c, err := req.ToCustomer()
	if err != nil {
		t.Fatalf("ToCustomer: %v", err)
	}
	if c.ID != 0 {
		t.Errorf("id = %d, want unset", c.ID)
	}
	if !c.DateOfBirth.Equal(NewDate(1990, time.January, 1)) {
		t.Errorf("date of birth = %v", c.DateOfBirth)
	}
	if c.PreferredName == nil {
		t.Fatal("preferred name dropped")
	}
	if *c.PreferredName != "  Johnny " {
		t.Errorf("preferred name = %q, want it stored as sent", *c.PreferredName)
	}
}

func TestDecodePreferredName(t *testing.T) {
	tests := []struct {
		contentType string
		body        string
		want        string
	}{
		{"text/plain", "Johnny", "Johnny"},
		{"", "Johnny", "Johnny"},
		{"text/plain", `"Johnny"`, `"Johnny"`},
		{"application/json", `"Johnny"`, "Johnny"},
		{"application/json; charset=UTF-8", `{"preferredName":"Johnny"}`, "Johnny"},
		{"application/json", "", ""},
		{"application/json", "Johnny", "Johnny"},
		{"application/json", "42", "42"},
		{"application/json", `"unterminated`, `"unterminated`},
		{"application/json", `{broken`, `{broken`},
	}

	for _, tt := range tests {
		if got := decodePreferredName(tt.contentType, []byte(tt.body)); got != tt.want {
			t.Errorf("decode(%q, %q) = %q, want %q", tt.contentType, tt.body, got, tt.want)
		}
	}
}

func TestUpdatePreferredNameRequestValidate(t *testing.T) {
	for _, name := range []string{"", " ", "\t\n"} {
		req := UpdatePreferredNameRequest{ID: 1, PreferredName: name}
		if got := messagesOf(t, req.Validate()); !slices.Equal(got, []string{PreferredNameRequiredMessage}) {
			t.Errorf("Validate(%q) = %v", name, got)
		}
	}

	req := UpdatePreferredNameRequest{ID: 1, PreferredName: "Johnny"}
	if err := req.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
