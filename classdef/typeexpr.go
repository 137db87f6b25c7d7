package classdef

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

var basicByName = func() map[string]BasicKind {
	m := make(map[string]BasicKind, len(basicNames))
	for k, name := range basicNames {
		m[name] = BasicKind(k)
	}
	return m
}()

// ParseType parses a declaration type expression against the classes and
// enums of r.
//
//	int, string, name, ...   basic types
//	Actor                    object pointer restricted to Actor
//	Actor*                   same as Actor
//	int*, voidptr            untyped pointers
//	int[4]                   fixed array
//	array<T>, map<K, V>      containers
//	class<Actor>, class      class references
func ParseType(expr string, r *Registry) (Type, error) {
	p := &typeParser{registry: r}
	p.s.Init(strings.NewReader(expr))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts
	p.s.Error = func(_ *scanner.Scanner, msg string) { p.err = fmt.Errorf("%s", msg) }
	p.next()

	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", expr, err)
	}
	if p.tok != scanner.EOF {
		return nil, fmt.Errorf("type %q: unexpected %q", expr, p.s.TokenText())
	}
	return t, nil
}

type typeParser struct {
	registry *Registry
	s        scanner.Scanner
	tok      rune
	err      error
}

func (p *typeParser) next() {
	p.tok = p.s.Scan()
}

func (p *typeParser) expect(tok rune) error {
	if p.err != nil {
		return p.err
	}
	if p.tok != tok {
		if p.tok == scanner.EOF {
			return fmt.Errorf("expected %q, got end of input", string(tok))
		}
		return fmt.Errorf("expected %q, got %q", string(tok), p.s.TokenText())
	}
	p.next()
	return nil
}

func (p *typeParser) parseType() (Type, error) {
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	// A class name already denotes an object pointer, so one '*' after it
	// is absorbed. Any further '*' is a real pointer.
	absorbed := false
	for {
		switch p.tok {
		case '[':
			p.next()
			if p.tok != scanner.Int {
				return nil, fmt.Errorf("expected array length")
			}
			n, err := strconv.Atoi(p.s.TokenText())
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid array length %q", p.s.TokenText())
			}
			p.next()
			if err := p.expect(']'); err != nil {
				return nil, err
			}
			t = &Array{Elem: t, Len: n}
		case '*':
			p.next()
			if _, ok := t.(*ObjectPointer); ok && !absorbed {
				absorbed = true
				continue
			}
			t = &Pointer{Elem: t}
		default:
			return t, p.err
		}
	}
}

func (p *typeParser) parseBase() (Type, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok != scanner.Ident {
		if p.tok == scanner.EOF {
			return nil, fmt.Errorf("empty type")
		}
		return nil, fmt.Errorf("unexpected %q", p.s.TokenText())
	}
	name := p.s.TokenText()
	p.next()

	switch name {
	case "voidptr":
		return &Pointer{}, nil
	case "array":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &DynArray{Elem: elem}, nil
	case "map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &Map{Key: key, Elem: elem}, nil
	case "class":
		if p.tok != '<' {
			return &ClassReference{Restriction: p.registry.root}, nil
		}
		p.next()
		if p.tok != scanner.Ident {
			return nil, fmt.Errorf("expected class name")
		}
		cname := p.s.TokenText()
		c, ok := p.registry.Lookup(cname)
		if !ok {
			return nil, fmt.Errorf("unknown class %q", cname)
		}
		p.next()
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &ClassReference{Restriction: c}, nil
	}

	if k, ok := basicByName[name]; ok {
		return &Basic{Kind: k}, nil
	}
	if e, ok := p.registry.Enum(name); ok {
		return e, nil
	}
	if c, ok := p.registry.Lookup(name); ok {
		return &ObjectPointer{Restriction: c}, nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}
