package starbind

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"

	"github.com/podhmo/scriptreflect"
	"github.com/podhmo/scriptreflect/classdef"
)

// Class is a script-visible reference to a registered class.
// It is what scripts pass to reflection.GetClassInfo.
type Class struct {
	class *classdef.Class
}

var (
	_ starlark.Value    = (*Class)(nil)
	_ starlark.HasAttrs = (*ClassInfo)(nil)
	_ starlark.HasAttrs = (*FieldInfo)(nil)
)

func (c *Class) String() string        { return "<class " + c.class.Name + ">" }
func (c *Class) Type() string          { return "class" }
func (c *Class) Freeze()               {}
func (c *Class) Truth() starlark.Bool  { return starlark.True }
func (c *Class) Hash() (uint32, error) { return starlark.String(c.class.Name).Hash() }

// ClassInfo wraps a ClassDescriptor.
type ClassInfo struct {
	binding *Binding
	desc    *scriptreflect.ClassDescriptor
}

var classInfoMethods = map[string]*starlark.Builtin{
	"GetName":   starlark.NewBuiltin("GetName", classInfoGetName),
	"GetFlags":  starlark.NewBuiltin("GetFlags", classInfoGetFlags),
	"GetFields": starlark.NewBuiltin("GetFields", classInfoGetFields),
}

// Descriptor returns the wrapped descriptor.
func (ci *ClassInfo) Descriptor() *scriptreflect.ClassDescriptor { return ci.desc }

func (ci *ClassInfo) String() string       { return "<ClassInfo " + ci.desc.GetName() + ">" }
func (ci *ClassInfo) Type() string         { return "ClassInfo" }
func (ci *ClassInfo) Freeze()              {}
func (ci *ClassInfo) Truth() starlark.Bool { return starlark.True }
func (ci *ClassInfo) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", ci.Type())
}

func (ci *ClassInfo) Attr(name string) (starlark.Value, error) {
	if b, ok := classInfoMethods[name]; ok {
		return b.BindReceiver(ci), nil
	}
	return nil, nil
}

func (ci *ClassInfo) AttrNames() []string { return sortedKeys(classInfoMethods) }

func classInfoGetName(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.String(b.Receiver().(*ClassInfo).desc.GetName()), nil
}

func classInfoGetFlags(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeUint64(uint64(b.Receiver().(*ClassInfo).desc.Flags())), nil
}

// classInfoGetFields appends to the list given by the caller and returns None.
// Without an argument it returns a new list instead.
func classInfoGetFields(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var out starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "fields?", &out); err != nil {
		return nil, err
	}
	ci := b.Receiver().(*ClassInfo)

	var list *starlark.List
	switch out := out.(type) {
	case nil:
		list = starlark.NewList(nil)
	case *starlark.List:
		list = out
	default:
		return nil, fmt.Errorf("%s: for parameter fields: got %s, want list", b.Name(), out.Type())
	}

	fields := ci.desc.GetFields(nil)
	for _, f := range fields {
		if err := list.Append(ci.binding.wrap(f)); err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
	}
	ci.binding.logger.Debug("reflect fields", "class", ci.desc.GetName(), "count", len(fields))

	if out == nil {
		return list, nil
	}
	return starlark.None, nil
}

// FieldInfo wraps a FieldDescriptor.
type FieldInfo struct {
	binding *Binding
	desc    *scriptreflect.FieldDescriptor
}

var fieldInfoMethods = map[string]*starlark.Builtin{
	"GetName":      starlark.NewBuiltin("GetName", fieldInfoGetName),
	"GetFlags":     starlark.NewBuiltin("GetFlags", fieldInfoGetFlags),
	"GetFieldType": starlark.NewBuiltin("GetFieldType", fieldInfoGetFieldType),
}

// Descriptor returns the wrapped descriptor.
func (fi *FieldInfo) Descriptor() *scriptreflect.FieldDescriptor { return fi.desc }

func (fi *FieldInfo) String() string       { return "<FieldInfo " + fi.desc.GetName() + ">" }
func (fi *FieldInfo) Type() string         { return "FieldInfo" }
func (fi *FieldInfo) Freeze()              {}
func (fi *FieldInfo) Truth() starlark.Bool { return starlark.True }
func (fi *FieldInfo) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", fi.Type())
}

func (fi *FieldInfo) Attr(name string) (starlark.Value, error) {
	if b, ok := fieldInfoMethods[name]; ok {
		return b.BindReceiver(fi), nil
	}
	return nil, nil
}

func (fi *FieldInfo) AttrNames() []string { return sortedKeys(fieldInfoMethods) }

func fieldInfoGetName(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.String(b.Receiver().(*FieldInfo).desc.GetName()), nil
}

func fieldInfoGetFlags(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeUint64(uint64(b.Receiver().(*FieldInfo).desc.Flags())), nil
}

// fieldInfoGetFieldType does not turn an unhandled type into a script error:
// the panic is logged and re-raised so the whole execution stops.
func fieldInfoGetFieldType(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	fi := b.Receiver().(*FieldInfo)
	defer func() {
		if p := recover(); p != nil {
			fi.binding.logger.Error("field type resolution failed", "field", fi.desc.GetName(), "error", p)
			panic(p)
		}
	}()
	return fi.binding.wrap(fi.desc.GetFieldType()), nil
}

func sortedKeys(m map[string]*starlark.Builtin) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
