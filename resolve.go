package scriptreflect

import (
	"github.com/podhmo/scriptreflect/classdef"
)

// resolveFieldType maps a field's static type to a descriptor.
// New descriptor kinds for other types get a case here.
func resolveFieldType(f *classdef.Field) (TypeDescriptor, error) {
	if classdef.IsObjectPointer(f.Type) {
		if c, ok := classdef.ClassRestriction(f.Type); ok {
			return NewClassDescriptor(c), nil
		}
	}

	e := &UnhandledTypeError{Field: f.Name, Type: f.Type}
	if f.Owner != nil {
		e.Class = f.Owner.Name
	}
	return nil, e
}
