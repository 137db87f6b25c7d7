package classdef

import "fmt"

// Type is the static type of a field as seen by the native type system.
// The set of implementations is closed; use a type switch to inspect it.
type Type interface {
	// TypeName returns the type as it would be spelled in a declaration.
	TypeName() string
	isType()
}

// BasicKind enumerates the built-in scalar types.
type BasicKind int

const (
	Int BasicKind = iota
	UInt
	Int8
	UInt8
	Int16
	UInt16
	Float
	Double
	Bool
	String
	NameKind // interned name
	Sound
	Color
	State
	Vector2
	Vector3
)

var basicNames = [...]string{
	Int:      "int",
	UInt:     "uint",
	Int8:     "int8",
	UInt8:    "uint8",
	Int16:    "int16",
	UInt16:   "uint16",
	Float:    "float",
	Double:   "double",
	Bool:     "bool",
	String:   "string",
	NameKind: "name",
	Sound:    "sound",
	Color:    "color",
	State:    "state",
	Vector2:  "vector2",
	Vector3:  "vector3",
}

func (k BasicKind) String() string {
	if k < 0 || int(k) >= len(basicNames) {
		return fmt.Sprintf("BasicKind(%d)", int(k))
	}
	return basicNames[k]
}

// Basic is a built-in scalar type such as int or string.
type Basic struct {
	Kind BasicKind
}

func (t *Basic) TypeName() string { return t.Kind.String() }
func (*Basic) isType()            {}

// Enum is a named enumeration registered alongside the classes.
type Enum struct {
	Name   string
	Values []string
}

func (t *Enum) TypeName() string { return t.Name }
func (*Enum) isType()            {}

// Array is a fixed-size array, spelled T[N].
type Array struct {
	Elem Type
	Len  int
}

func (t *Array) TypeName() string { return fmt.Sprintf("%s[%d]", t.Elem.TypeName(), t.Len) }
func (*Array) isType()            {}

// DynArray is a growable array, spelled array<T>.
type DynArray struct {
	Elem Type
}

func (t *DynArray) TypeName() string { return "array<" + t.Elem.TypeName() + ">" }
func (*DynArray) isType()            {}

// Map is an associative container, spelled map<K, V>.
type Map struct {
	Key  Type
	Elem Type
}

func (t *Map) TypeName() string {
	return "map<" + t.Key.TypeName() + ", " + t.Elem.TypeName() + ">"
}
func (*Map) isType() {}

// Pointer is an untyped pointer into native memory.
// A nil Elem is spelled voidptr.
type Pointer struct {
	Elem Type
}

func (t *Pointer) TypeName() string {
	if t.Elem == nil {
		return "voidptr"
	}
	if _, ok := t.Elem.(*ObjectPointer); ok {
		// Actor is spelled the same as Actor*, so a pointer to it is Actor**.
		return t.Elem.TypeName() + "**"
	}
	return t.Elem.TypeName() + "*"
}
func (*Pointer) isType() {}

// ObjectPointer is a reference to a managed object.
// When Restriction is set, every referenced object is an instance of
// Restriction or one of its descendants.
type ObjectPointer struct {
	Restriction *Class
}

func (t *ObjectPointer) TypeName() string {
	if t.Restriction == nil {
		return "object"
	}
	return t.Restriction.Name
}
func (*ObjectPointer) isType() {}

// ClassReference holds a class itself rather than an instance, spelled class<C>.
type ClassReference struct {
	Restriction *Class
}

func (t *ClassReference) TypeName() string {
	if t.Restriction == nil {
		return "class"
	}
	return "class<" + t.Restriction.Name + ">"
}
func (*ClassReference) isType() {}

// IsObjectPointer reports whether t refers to a managed object.
func IsObjectPointer(t Type) bool {
	_, ok := t.(*ObjectPointer)
	return ok
}

// ClassRestriction returns the class an object pointer is restricted to.
// It reports false for non-object-pointer types and for unrestricted pointers.
func ClassRestriction(t Type) (*Class, bool) {
	p, ok := t.(*ObjectPointer)
	if !ok || p.Restriction == nil {
		return nil, false
	}
	return p.Restriction, true
}
