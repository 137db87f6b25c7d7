// Package scriptreflect exposes registered class metadata to scripts through
// small descriptor values.
//
// Descriptors never own the classes and fields they wrap: those belong to a
// classdef.Registry, which is read-only once built. Every reflective call
// returns fresh descriptors; nothing is cached.
package scriptreflect

import (
	"github.com/podhmo/scriptreflect/classdef"
)

// TypeDescriptor is implemented by every descriptor variant.
type TypeDescriptor interface {
	// GetName returns the declared name of the described entity.
	GetName() string
	// Flags returns classification metadata. It is informational only.
	Flags() TypeFlags
}

var (
	_ TypeDescriptor = (*ClassDescriptor)(nil)
	_ TypeDescriptor = (*FieldDescriptor)(nil)
)

// ClassDescriptor describes a registered class.
type ClassDescriptor struct {
	class *classdef.Class
}

// NewClassDescriptor wraps c. It panics if c is nil; callers validate
// script-supplied classes before getting here.
func NewClassDescriptor(c *classdef.Class) *ClassDescriptor {
	if c == nil {
		panic(preconditionf("class descriptor requires a class"))
	}
	return &ClassDescriptor{class: c}
}

// Class returns the wrapped class definition.
func (d *ClassDescriptor) Class() *classdef.Class { return d.class }

func (d *ClassDescriptor) GetName() string { return d.class.Name }

func (d *ClassDescriptor) Flags() TypeFlags {
	f := FlagClass | FlagPublic
	if d.class.Native {
		f |= FlagNative
	}
	if d.class.Abstract {
		f |= FlagAbstract
	}
	return f
}

// GetFields appends one new FieldDescriptor to dst for every field in the
// class's symbol table, in table order, and returns the extended slice.
// Other symbols are skipped. Whether inherited fields appear depends on how
// the registry was built (see classdef.WithFlattenedInheritance).
func (d *ClassDescriptor) GetFields(dst []TypeDescriptor) []TypeDescriptor {
	for _, sym := range d.class.Symbols.All() {
		if f, ok := classdef.AsField(sym); ok {
			dst = append(dst, NewFieldDescriptor(f))
		}
	}
	return dst
}

// FieldDescriptor describes a field of a registered class.
type FieldDescriptor struct {
	field *classdef.Field
}

// NewFieldDescriptor wraps f. It panics if f is nil.
func NewFieldDescriptor(f *classdef.Field) *FieldDescriptor {
	if f == nil {
		panic(preconditionf("field descriptor requires a field"))
	}
	return &FieldDescriptor{field: f}
}

// Field returns the wrapped field definition.
func (d *FieldDescriptor) Field() *classdef.Field { return d.field }

func (d *FieldDescriptor) GetName() string { return d.field.Name }

func (d *FieldDescriptor) Flags() TypeFlags {
	f := FlagField
	switch d.field.Access {
	case classdef.Private:
		f |= FlagPrivate
	case classdef.Protected:
		f |= FlagProtected
	default:
		f |= FlagPublic
	}
	if d.field.Native {
		f |= FlagNative
	}
	return f
}

// GetFieldType describes the field's static type.
//
// Only object pointers restricted to a class are mapped; the result is then
// a new ClassDescriptor for the restriction class. Every other type panics
// with an *UnhandledTypeError. It never returns nil.
func (d *FieldDescriptor) GetFieldType() TypeDescriptor {
	t, err := resolveFieldType(d.field)
	if err != nil {
		panic(err)
	}
	return t
}
