package scriptreflect

import (
	"errors"
	"fmt"

	"github.com/podhmo/scriptreflect/classdef"
)

var (
	// ErrPrecondition is the panic value (wrapped) raised when a descriptor
	// is constructed without the native entity it describes.
	ErrPrecondition = errors.New("reflection precondition violated")

	// ErrUnhandledType is wrapped by UnhandledTypeError.
	ErrUnhandledType = errors.New("unhandled type in GetFieldType")

	// ErrUnknownClass is returned when a class does not belong to the registry.
	ErrUnknownClass = errors.New("unknown class")
)

// UnhandledTypeError is the panic value of FieldDescriptor.GetFieldType
// when the field's static type has no reflected representation.
type UnhandledTypeError struct {
	Class string // declaring class, may be empty
	Field string
	Type  classdef.Type
}

func (e *UnhandledTypeError) Error() string {
	name := e.Field
	if e.Class != "" {
		name = e.Class + "." + e.Field
	}
	return fmt.Sprintf("%s: field %s has type %s (%T)", ErrUnhandledType, name, typeName(e.Type), e.Type)
}

func (e *UnhandledTypeError) Unwrap() error { return ErrUnhandledType }

func typeName(t classdef.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.TypeName()
}

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}
