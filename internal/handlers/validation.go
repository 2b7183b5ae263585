package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Field rules for profile updates; registration uses the same rules as struct tags.
const (
	usernameRules = "required,min=3,max=150"
	emailRules    = "required,email,max=254"
)

// validationFields runs struct validation and returns one message per failing
// field, or nil when s is valid.
func validationFields(s any) map[string]string {
	return collect(validate.Struct(s), "")
}

// validateValue checks a single value against rules and records the failure
// under name in fields.
func validateValue(fields map[string]string, name string, value any, rules string) {
	for k, v := range collect(validate.Var(value, rules), name) {
		fields[k] = v
	}
}

func collect(err error, name string) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := name
		if field == "" {
			field = fe.Field()
		}
		if _, seen := fields[field]; !seen {
			fields[field] = fieldMessage(fe)
		}
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	}
	return "invalid value"
}
