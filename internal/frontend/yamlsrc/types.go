package yamlsrc

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/config"
)

// typ decodes type syntax:
//
//	int | real | bool | any | void | ? | string    primitives
//	Name | module:Name                            named types
//	[T1, T2]                                      union
//	{list: T} {set: T} {process: T}
//	{tuple: {field: T, ...}}
//	{union: [T1, T2]}
func (d *decoder) typ(n *yaml.Node) ast.UnresolvedType {
	b := d.base(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Value {
		case config.IntTypeName:
			return &ast.IntType{Base: b}
		case config.RealTypeName:
			return &ast.RealType{Base: b}
		case config.BoolTypeName:
			return &ast.BoolType{Base: b}
		case config.AnyTypeName:
			return &ast.AnyType{Base: b}
		case config.VoidTypeName:
			return &ast.VoidType{Base: b}
		case config.ExistentialTypeName:
			return &ast.ExistentialType{Base: b}
		case config.StringTypeName:
			return &ast.ListType{Base: b, Element: &ast.IntType{Base: b}}
		case "":
			d.fail(n, "empty type")
		}
		id := ast.ParseNameID(n.Value, d.module)
		return &ast.NamedType{Base: b, Module: id.Module, Name: id.Name}

	case yaml.SequenceNode:
		return d.union(n, n)
	}

	e := d.single(n, "type")
	switch e.key.Value {
	case "list":
		return &ast.ListType{Base: b, Element: d.typ(e.value)}
	case "set":
		return &ast.SetType{Base: b, Element: d.typ(e.value)}
	case "process":
		return &ast.ProcessType{Base: b, Element: d.typ(e.value)}
	case "union":
		return d.union(n, e.value)
	case "tuple":
		t := &ast.TupleType{Base: b}
		for _, f := range d.entries(e.value) {
			t.Fields = append(t.Fields, ast.TupleField{Name: d.scalar(f.key), Type: d.typ(f.value)})
		}
		return t
	}
	d.fail(e.key, "unknown type constructor %q", e.key.Value)
	return nil
}

func (d *decoder) union(at, bounds *yaml.Node) ast.UnresolvedType {
	u := &ast.UnionType{Base: d.base(at)}
	for _, c := range d.sequence(bounds) {
		u.Bounds = append(u.Bounds, d.typ(c))
	}
	if len(u.Bounds) == 0 {
		d.fail(at, "union needs at least one bound")
	}
	return u
}

// optionalType decodes the type under key, if present.
func (d *decoder) optionalType(n *yaml.Node, key string) ast.UnresolvedType {
	if v := field(n, key); v != nil {
		return d.typ(v)
	}
	return nil
}
