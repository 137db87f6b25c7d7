package classdef

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/podhmo/scriptreflect/fs"
)

// ErrInheritanceCycle is returned by Build when classes inherit from each other.
var ErrInheritanceCycle = errors.New("inheritance cycle")

// Option configures Build and Load.
type Option func(*buildConfig)

type buildConfig struct {
	rootName string
	flatten  bool
	logger   *slog.Logger
	fsys     fs.FS
}

func newBuildConfig(options []Option) *buildConfig {
	cfg := &buildConfig{rootName: DefaultRootName, logger: slog.Default(), fsys: fs.NewOSFS()}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// WithRootName sets the root class name used when the declarations do not set one.
func WithRootName(name string) Option {
	return func(c *buildConfig) {
		c.rootName = name
	}
}

// WithFlattenedInheritance makes every class's symbol table start with the
// symbols inherited from its parent.
func WithFlattenedInheritance() Option {
	return func(c *buildConfig) {
		c.flatten = true
	}
}

// WithFS sets the file system Load reads declaration files from.
func WithFS(fsys fs.FS) Option {
	return func(c *buildConfig) {
		c.fsys = fsys
	}
}

// WithLogger sets the logger used while registering classes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// Build registers the declared classes and returns the finished registry.
// Parents are registered before their children, and the order is the same
// for the same declarations.
func Build(f *File, options ...Option) (*Registry, error) {
	cfg := newBuildConfig(options)
	rootName := cfg.rootName
	if f.Root != "" {
		rootName = f.Root
	}

	r := &Registry{
		byName: make(map[string]*Class, len(f.Classes)+1),
		enums:  make(map[string]*Enum, len(f.Enums)),
		flat:   cfg.flatten,
	}

	for _, ed := range f.Enums {
		if ed.Name == "" {
			return nil, fmt.Errorf("enum has no name")
		}
		if _, ok := basicByName[ed.Name]; ok {
			return nil, fmt.Errorf("enum %q shadows a basic type", ed.Name)
		}
		if _, dup := r.enums[ed.Name]; dup {
			return nil, fmt.Errorf("duplicate enum %q", ed.Name)
		}
		r.enums[ed.Name] = &Enum{Name: ed.Name, Values: slices.Clone(ed.Values)}
	}

	decls, err := withRoot(f.Classes, rootName)
	if err != nil {
		return nil, err
	}
	order, err := parentFirst(decls, rootName)
	if err != nil {
		return nil, err
	}

	for _, i := range order {
		d := decls[i]
		c := &Class{
			Name:     d.Name,
			Abstract: d.Abstract,
			Native:   d.Native,
			Symbols:  NewSymbolTable(),
		}
		if d.Name != rootName {
			parent := d.Parent
			if parent == "" {
				parent = rootName
			}
			c.Parent = r.byName[parent]
		} else {
			r.root = c
		}
		r.byName[c.Name] = c
		r.classes = append(r.classes, c)
	}

	// Member types may name any class, so members are resolved only once
	// every class exists.
	for _, i := range order {
		d := decls[i]
		c := r.byName[d.Name]
		if cfg.flatten && c.Parent != nil {
			for _, sym := range c.Parent.Symbols.All() {
				if err := c.Symbols.Add(sym); err != nil {
					return nil, fmt.Errorf("class %s: %w", c.Name, err)
				}
			}
		}
		for _, md := range d.Members {
			sym, err := r.newSymbol(c, md)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", c.Name, err)
			}
			if err := addMember(c, sym); err != nil {
				return nil, fmt.Errorf("class %s: %w", c.Name, err)
			}
		}
		cfg.logger.Debug("registered class", "class", c.Name, "symbols", c.Symbols.Len())
	}
	return r, nil
}

// addMember adds one of c's own members to its table. A method replaces a
// method c inherited, in place; every other name clash is an error.
func addMember(c *Class, sym Symbol) error {
	if m, ok := sym.(*Method); ok {
		if prev, ok := c.Symbols.Lookup(m.Name); ok {
			if inherited, ok := prev.(*Method); ok && inherited.Owner != c {
				c.Symbols.replace(m)
				return nil
			}
		}
	}
	return c.Symbols.Add(sym)
}

// withRoot validates class names and prepends an implicit root class when
// none was declared.
func withRoot(classes []ClassDecl, rootName string) ([]ClassDecl, error) {
	seen := make(map[string]bool, len(classes))
	hasRoot := false
	for _, d := range classes {
		if d.Name == "" {
			return nil, fmt.Errorf("class has no name")
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate class %q", d.Name)
		}
		seen[d.Name] = true
		if d.Name == rootName {
			if d.Parent != "" {
				return nil, fmt.Errorf("root class %q cannot have a parent", rootName)
			}
			hasRoot = true
		}
	}
	if hasRoot {
		return classes, nil
	}
	return append([]ClassDecl{{Name: rootName, Native: true}}, classes...), nil
}

// parentFirst returns indices into decls ordered so every class follows its parent.
func parentFirst(decls []ClassDecl, rootName string) ([]int, error) {
	index := make(map[string]int, len(decls))
	g := simple.NewDirectedGraph()
	for i, d := range decls {
		index[d.Name] = i
		g.AddNode(simple.Node(i))
	}
	for i, d := range decls {
		if d.Name == rootName {
			continue
		}
		parent := d.Parent
		if parent == "" {
			parent = rootName
		}
		p, ok := index[parent]
		if !ok {
			return nil, fmt.Errorf("class %s: unknown parent %q", d.Name, parent)
		}
		if p == i {
			return nil, fmt.Errorf("class %s: %w: inherits from itself", d.Name, ErrInheritanceCycle)
		}
		g.SetEdge(simple.Edge{F: simple.Node(p), T: simple.Node(i)})
	}

	sorted, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		slices.SortFunc(nodes, func(a, b graph.Node) int {
			return int(a.ID() - b.ID())
		})
	})
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) {
			var names []string
			for _, component := range unorderable {
				for _, n := range component {
					names = append(names, decls[n.ID()].Name)
				}
			}
			slices.Sort(names)
			return nil, fmt.Errorf("%w among %s", ErrInheritanceCycle, strings.Join(names, ", "))
		}
		return nil, fmt.Errorf("ordering classes: %w", err)
	}

	order := make([]int, 0, len(sorted))
	for _, n := range sorted {
		order = append(order, int(n.ID()))
	}
	return order, nil
}

func (r *Registry) newSymbol(owner *Class, md MemberDecl) (Symbol, error) {
	access, err := ParseAccess(md.Access)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", md.Name, err)
	}
	switch md.Kind {
	case MemberField, "":
		t, err := ParseType(md.Type, r)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", md.Name, err)
		}
		return &Field{Name: md.Name, Type: t, Access: access, Native: md.Native, Owner: owner}, nil
	case MemberMethod:
		return &Method{
			Name:     md.Name,
			Access:   access,
			Native:   md.Native,
			Action:   md.Action,
			Abstract: md.Abstract,
			Owner:    owner,
		}, nil
	case MemberConstant:
		return &Constant{Name: md.Name, Value: md.Value, Owner: owner}, nil
	default:
		return nil, fmt.Errorf("member %s: unknown kind %q", md.Name, md.Kind)
	}
}
