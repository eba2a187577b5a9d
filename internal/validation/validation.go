// Package validation checks submitted forms with go-playground/validator.
// A single validator instance is shared; each form supplies its own
// user-facing messages keyed by "field.tag".
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string // form field name, e.g. "product_name"
	Tag     string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// Errors collects every failed field of a form.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// ByField returns the first message per field for template rendering.
func (ve Errors) ByField() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// First returns the first message, or "" when there are none.
func (ve Errors) First() string {
	if len(ve) == 0 {
		return ""
	}
	return ve[0].Message
}

// messenger is implemented by forms that carry their own wording.
type messenger interface {
	Messages() map[string]string
}

// Get returns the shared validator. Field names come from the form tag.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s. It returns nil or an Errors value.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var msgs map[string]string
	if m, ok := s.(messenger); ok {
		msgs = m.Messages()
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		msg, ok := msgs[key]
		if !ok {
			msg = defaultMessage(fe)
		}
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: msg})
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "email":
		return "Invalid email address."
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL.", fe.Field())
	case "eqfield":
		return fmt.Sprintf("%s does not match %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
