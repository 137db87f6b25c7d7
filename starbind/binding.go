// Package starbind makes scriptreflect available to Starlark scripts.
//
// Scripts see a module named reflection and one class reference per
// registered class, bound under the class name:
//
//	info = reflection.GetClassInfo(Actor)
//	fields = []
//	info.GetFields(fields)
//	for f in fields:
//	    print(f.GetName())
package starbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/podhmo/scriptreflect"
)

// ModuleName is the name scripts use to reach the reflection functions.
const ModuleName = "reflection"

// Binding connects a Reflector to the Starlark runtime.
// It keeps no state between calls besides its configuration.
type Binding struct {
	reflector *scriptreflect.Reflector
	logger    *slog.Logger
	stdout    io.Writer
}

// Option configures a Binding.
type Option func(*Binding)

// WithStdout sets where script print output goes.
func WithStdout(w io.Writer) Option {
	return func(b *Binding) {
		b.stdout = w
	}
}

// WithLogger overrides the logger taken from the Reflector.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binding) {
		b.logger = logger
	}
}

// New creates a binding for r.
func New(r *scriptreflect.Reflector, options ...Option) *Binding {
	b := &Binding{
		reflector: r,
		logger:    r.Logger(),
		stdout:    os.Stdout,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Module returns the reflection module.
func (b *Binding) Module() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: ModuleName,
		Members: starlark.StringDict{
			"GetClassInfo": starlark.NewBuiltin("GetClassInfo", b.getClassInfo),
		},
	}
}

// Predeclared returns the names every script starts with: the reflection
// module and a class reference for each registered class.
func (b *Binding) Predeclared() starlark.StringDict {
	reg := b.reflector.Registry()
	d := make(starlark.StringDict, reg.Len()+1)
	for _, c := range reg.Classes() {
		d[c.Name] = &Class{class: c}
	}
	d[ModuleName] = b.Module()
	return d
}

// getClassInfo accepts None (the root class), a class reference, or a class name.
func (b *Binding) getClassInfo(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var arg starlark.Value = starlark.None
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "type?", &arg); err != nil {
		return nil, err
	}

	var (
		desc *scriptreflect.ClassDescriptor
		err  error
	)
	switch arg := arg.(type) {
	case starlark.NoneType:
		desc, err = b.reflector.GetClassInfo(nil)
	case *Class:
		desc, err = b.reflector.GetClassInfo(arg.class)
	case starlark.String:
		desc, err = b.reflector.GetClassInfoByName(string(arg))
	default:
		return nil, fmt.Errorf("%s: for parameter type: got %s, want class", fn.Name(), arg.Type())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name(), err)
	}
	return &ClassInfo{binding: b, desc: desc}, nil
}

// wrap converts a descriptor to its script value.
func (b *Binding) wrap(d scriptreflect.TypeDescriptor) starlark.Value {
	switch d := d.(type) {
	case *scriptreflect.ClassDescriptor:
		return &ClassInfo{binding: b, desc: d}
	case *scriptreflect.FieldDescriptor:
		return &FieldInfo{binding: b, desc: d}
	default:
		panic(fmt.Sprintf("starbind: no script value for descriptor %T", d))
	}
}

// Options describes one script execution.
type Options struct {
	// Filename is used in error messages and stack traces.
	Filename string

	// Source is the script content.
	Source []byte

	// Globals are added to the predeclared names, overriding them on conflict.
	Globals starlark.StringDict
}

// Result holds the outcome of a script execution.
type Result struct {
	// Globals are the script's top-level bindings after execution.
	Globals starlark.StringDict
}

// Exec runs a script. Script errors are returned; an unhandled field type
// panics through Exec. Cancelling ctx cancels the script.
func (b *Binding) Exec(ctx context.Context, opts Options) (*Result, error) {
	predeclared := b.Predeclared()
	for name, v := range opts.Globals {
		predeclared[name] = v
	}

	thread := &starlark.Thread{
		Name: opts.Filename,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(b.stdout, msg)
		},
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	b.logger.Debug("exec script", "filename", opts.Filename)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, opts.Filename, opts.Source, predeclared)
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			b.logger.Debug("script failed", "filename", opts.Filename, "backtrace", evalErr.Backtrace())
		}
		return nil, fmt.Errorf("executing %s: %w", opts.Filename, err)
	}
	return &Result{Globals: globals}, nil
}
