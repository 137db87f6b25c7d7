package classdef

import (
	"slices"
)

// DefaultRootName is the name of the class every other class descends from
// when the declarations do not name one.
const DefaultRootName = "Object"

// Class is the registration-time definition of a class.
// A Class is never modified once its Registry has been built.
type Class struct {
	Name     string
	Parent   *Class // nil for the root class
	Abstract bool
	Native   bool
	Symbols  *SymbolTable
}

// IsDescendantOf reports whether c is base or inherits from it.
func (c *Class) IsDescendantOf(base *Class) bool {
	for p := c; p != nil; p = p.Parent {
		if p == base {
			return true
		}
	}
	return false
}

// Registry owns every class known to the program.
// It is read-only after Build returns, so lookups are safe from any goroutine.
type Registry struct {
	root    *Class
	classes []*Class
	byName  map[string]*Class
	enums   map[string]*Enum
	flat    bool
}

// Root returns the class all others descend from.
func (r *Registry) Root() *Class { return r.root }

// Lookup finds a class by its declared name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Contains reports whether c was registered by r.
func (r *Registry) Contains(c *Class) bool {
	if c == nil {
		return false
	}
	found, ok := r.byName[c.Name]
	return ok && found == c
}

// Enum finds an enumeration by name.
func (r *Registry) Enum(name string) (*Enum, bool) {
	e, ok := r.enums[name]
	return e, ok
}

// Classes returns all classes in registration order, parents first.
func (r *Registry) Classes() []*Class {
	return slices.Clone(r.classes)
}

// Len returns the number of registered classes, including the root.
func (r *Registry) Len() int { return len(r.classes) }

// Flattened reports whether each symbol table also holds inherited symbols.
func (r *Registry) Flattened() bool { return r.flat }
