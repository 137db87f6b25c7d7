package scriptreflect

import (
	"fmt"
	"log/slog"

	"github.com/podhmo/scriptreflect/classdef"
)

// Reflector is the host-facing entry point. It validates class arguments
// coming from scripts and constructs descriptors for them.
//
// A Reflector holds configuration only; every call builds new descriptors.
type Reflector struct {
	registry *classdef.Registry
	logger   *slog.Logger
}

// Option configures a Reflector.
type Option func(*Reflector)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reflector) {
		r.logger = logger
	}
}

// New creates a Reflector over reg.
func New(reg *classdef.Registry, options ...Option) *Reflector {
	if reg == nil {
		panic(preconditionf("reflector requires a registry"))
	}
	r := &Reflector{registry: reg, logger: slog.Default()}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Registry returns the registry being reflected.
func (r *Reflector) Registry() *classdef.Registry { return r.registry }

// Logger returns the configured logger.
func (r *Reflector) Logger() *slog.Logger { return r.logger }

// GetClassInfo describes c. A nil c means the registry's root class.
// It fails with ErrUnknownClass when c was not registered by this registry.
func (r *Reflector) GetClassInfo(c *classdef.Class) (*ClassDescriptor, error) {
	if c == nil {
		c = r.registry.Root()
		if c == nil {
			return nil, fmt.Errorf("%w: registry has no root class", ErrUnknownClass)
		}
	}
	if !r.registry.Contains(c) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, c.Name)
	}
	r.logger.Debug("reflect class", "class", c.Name)
	return NewClassDescriptor(c), nil
}

// GetClassInfoByName describes the class registered under name.
func (r *Reflector) GetClassInfoByName(name string) (*ClassDescriptor, error) {
	c, ok := r.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return r.GetClassInfo(c)
}
