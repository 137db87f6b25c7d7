package classdef

import (
	"fmt"
	"iter"

	"github.com/iancoleman/orderedmap"
)

// Access is the visibility of a member.
type Access int

const (
	Public Access = iota
	Private
	Protected
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Private:
		return "private"
	case Protected:
		return "protected"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// ParseAccess converts the declaration spelling of an access level.
// An empty string means public.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "", "public":
		return Public, nil
	case "private":
		return Private, nil
	case "protected":
		return Protected, nil
	default:
		return 0, fmt.Errorf("unknown access %q", s)
	}
}

// Symbol is one entry of a class's symbol table.
type Symbol interface {
	SymbolName() string
	isSymbol()
}

// Field is a data member declared on a class.
type Field struct {
	Name   string
	Type   Type
	Access Access
	Native bool
	Owner  *Class // declaring class
}

func (f *Field) SymbolName() string { return f.Name }
func (*Field) isSymbol()            {}

// Method is a callable member.
type Method struct {
	Name     string
	Access   Access
	Native   bool
	Action   bool
	Abstract bool
	Owner    *Class
}

func (m *Method) SymbolName() string { return m.Name }
func (*Method) isSymbol()            {}

// Constant is a named compile-time value scoped to a class.
type Constant struct {
	Name  string
	Value any
	Owner *Class
}

func (c *Constant) SymbolName() string { return c.Name }
func (*Constant) isSymbol()            {}

// AsField reports whether sym is a field, returning it if so.
func AsField(sym Symbol) (*Field, bool) {
	f, ok := sym.(*Field)
	return f, ok
}

// SymbolTable maps member names to symbols, scoped to one class.
// Iteration follows registration order.
type SymbolTable struct {
	m *orderedmap.OrderedMap
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{m: orderedmap.New()}
}

// Add registers sym. Names are unique within a table.
func (t *SymbolTable) Add(sym Symbol) error {
	name := sym.SymbolName()
	if name == "" {
		return fmt.Errorf("symbol has no name")
	}
	if _, ok := t.m.Get(name); ok {
		return fmt.Errorf("duplicate symbol %q", name)
	}
	t.m.Set(name, sym)
	return nil
}

// replace overwrites the entry named like sym, keeping its position.
func (t *SymbolTable) replace(sym Symbol) {
	t.m.Set(sym.SymbolName(), sym)
}

// Lookup finds a symbol by name.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	v, ok := t.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.(Symbol), true
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int {
	return len(t.m.Keys())
}

// All yields (name, symbol) pairs in registration order.
func (t *SymbolTable) All() iter.Seq2[string, Symbol] {
	return func(yield func(string, Symbol) bool) {
		for _, name := range t.m.Keys() {
			v, _ := t.m.Get(name)
			if !yield(name, v.(Symbol)) {
				return
			}
		}
	}
}

// Fields returns the field symbols in registration order.
func (t *SymbolTable) Fields() []*Field {
	var fields []*Field
	for _, sym := range t.All() {
		if f, ok := AsField(sym); ok {
			fields = append(fields, f)
		}
	}
	return fields
}
