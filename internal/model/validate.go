package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure attached to a single form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every failure of one validation pass. A nil or empty FieldErrors means valid.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a failure for field.
func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// For returns the messages recorded for field.
func (fe FieldErrors) For(field string) []string {
	var out []string
	for _, e := range fe {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}

// Has reports whether field has at least one failure.
func (fe FieldErrors) Has(field string) bool {
	return len(fe.For(field)) > 0
}

// Err returns nil when there are no failures so callers can use the result as an error.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// AsFieldErrors unwraps err into FieldErrors when it carries validation failures.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStruct(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "min":
		return fmt.Sprintf("This value is too short. It should have %s characters or more.", fe.Param())
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "email":
		return "This value is not a valid email address."
	default:
		return "This value is not valid."
	}
}

func ValidateCategory(c *Category) FieldErrors { return validateStruct(c) }

func ValidateTag(t *Tag) FieldErrors { return validateStruct(t) }

func ValidateContact(c *Contact) FieldErrors { return validateStruct(c) }

func ValidateUser(u *User) FieldErrors { return validateStruct(u) }

// ValidateEvent checks field constraints and the start/end ordering.
func ValidateEvent(e *Event) FieldErrors {
	errs := validateStruct(e)
	errs = append(errs, ValidateSchedule(e.DateFrom, e.TimeFrom, e.DateTo, e.TimeTo)...)
	return errs
}

// ValidateSchedule enforces that an event does not end before it starts. Dates are compared first;
// times only matter when both dates are the same day. Equal times are allowed.
func ValidateSchedule(dateFrom Date, timeFrom Clock, dateTo Date, timeTo Clock) FieldErrors {
	var errs FieldErrors
	if dateFrom.IsZero() {
		errs.Add("date_from", "This value should not be blank.")
	}
	if timeFrom.IsZero() {
		errs.Add("time_from", "This value should not be blank.")
	}
	if dateTo.IsZero() {
		errs.Add("date_to", "This value should not be blank.")
	}
	if timeTo.IsZero() {
		errs.Add("time_to", "This value should not be blank.")
	}
	if len(errs) > 0 {
		return errs
	}

	switch {
	case dateTo.Before(dateFrom):
		errs.Add("date_to", "The end date must not be earlier than the start date.")
	case dateTo.Equal(dateFrom) && timeTo.Before(timeFrom):
		errs.Add("time_to", "The end time must not be earlier than the start time on the same day.")
	}
	return errs
}
