package classdef

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New()
	// Report the names used in declaration files rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// validateFile checks the shape of decoded declarations. Cross-references
// such as parents and type expressions are checked later by Build.
func validateFile(f *File) error {
	if err := validate.Struct(f); err != nil {
		return structError(err)
	}
	for i, c := range f.Classes {
		for j, m := range c.Members {
			if kind := valueKind(m.Value); kind != "" {
				return fmt.Errorf("classes[%d].members[%d].value: constant must be a scalar, got %s", i, j, kind)
			}
		}
	}
	return nil
}

// valueKind names a constant value that is not a scalar, or returns "".
func valueKind(v any) string {
	if v == nil {
		return ""
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Struct:
		if _, ok := v.(time.Time); ok {
			return ""
		}
		return "table"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return ""
	}
}

func structError(err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		// Namespace starts with the Go type name, e.g. "File.classes[0].name".
		_, path, _ := strings.Cut(ve.Namespace(), ".")
		messages = append(messages, path+": "+formatValidationError(ve))
	}
	return errors.New(strings.Join(messages, "; "))
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s, got %q", ve.Param(), ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
