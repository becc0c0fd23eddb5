package yamlsrc

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
)

var naryOps = map[string]ast.NaryKind{
	"sublist": ast.NarySubList,
	"list":    ast.NaryListGen,
	"set":     ast.NarySetGen,
}

var comprehensions = map[string]ast.ComprehensionKind{
	"setcomp":  ast.SetComprehension,
	"listcomp": ast.ListComprehension,
	"some":     ast.SomeQuantifier,
	"all":      ast.AllQuantifier,
}

// expr decodes an expression. Plain scalars are constants or, when they are
// not numbers or booleans, variable names. Everything else is a one-key
// mapping naming the operator.
func (d *decoder) expr(n *yaml.Node) ast.Expr {
	b := d.base(n)
	if n.Kind == yaml.ScalarNode {
		switch n.ShortTag() {
		case "!!int":
			var v int64
			if err := n.Decode(&v); err != nil {
				d.fail(n, "bad integer: %v", err)
			}
			return &ast.Constant{Base: b, Kind: ast.IntConst, Int: v}
		case "!!float":
			var v float64
			if err := n.Decode(&v); err != nil {
				d.fail(n, "bad real: %v", err)
			}
			return &ast.Constant{Base: b, Kind: ast.RealConst, Real: v}
		case "!!bool":
			return &ast.Constant{Base: b, Kind: ast.BoolConst, Bool: d.boolean(n)}
		case "!!str":
			if n.Value == "" {
				d.fail(n, "empty expression")
			}
			return &ast.Variable{Base: b, Name: n.Value}
		}
		d.fail(n, "unexpected scalar %q", n.Value)
	}

	e := d.single(n, "expression")
	op := e.key.Value

	if bop, ok := ast.LookupBinaryOp(op); ok {
		args := d.sequence(e.value)
		if len(args) != 2 {
			d.fail(e.value, "%s takes 2 operands, found %d", op, len(args))
		}
		return &ast.BinOp{Base: b, Op: bop, Lhs: d.expr(args[0]), Rhs: d.expr(args[1])}
	}
	if uop, ok := ast.LookupUnaryOp(op); ok {
		return &ast.UnOp{Base: b, Op: uop, Operand: d.expr(e.value)}
	}
	if kind, ok := naryOps[op]; ok {
		x := &ast.NaryOp{Base: b, Op: kind}
		for _, a := range d.sequence(e.value) {
			x.Args = append(x.Args, d.expr(a))
		}
		return x
	}
	if kind, ok := comprehensions[op]; ok {
		return d.comprehension(b, kind, e.value)
	}

	switch op {
	case "str":
		return &ast.Constant{Base: b, Kind: ast.StringConst, Str: d.scalar(e.value)}
	case "var":
		return &ast.Variable{Base: b, Name: d.scalar(e.value)}
	case "call":
		return d.invoke(n, e.value)
	case "tuple":
		t := &ast.TupleGen{Base: b}
		for _, f := range d.entries(e.value) {
			t.Fields = append(t.Fields, ast.FieldInit{Name: d.scalar(f.key), Value: d.expr(f.value)})
		}
		return t
	case "field":
		return &ast.TupleAccess{
			Base:  b,
			Lhs:   d.expr(d.required(e.value, "of")),
			Field: d.scalar(d.required(e.value, "name")),
		}
	}
	d.fail(e.key, "unknown operator %q", op)
	return nil
}

// invoke decodes {name: f, receiver: e, args: [...]}. A qualified name
// module:f calls into another module.
func (d *decoder) invoke(at, n *yaml.Node) *ast.Invoke {
	id := ast.ParseNameID(d.scalar(d.required(n, "name")), d.module)
	call := &ast.Invoke{Base: d.base(at), Module: id.Module, Name: id.Name}
	if r := field(n, "receiver"); r != nil {
		call.Receiver = d.expr(r)
	}
	if args := field(n, "args"); args != nil {
		for _, a := range d.sequence(args) {
			call.Args = append(call.Args, d.expr(a))
		}
	}
	return call
}

// comprehension decodes {for: {v: source, ...}, where: cond, value: e}.
func (d *decoder) comprehension(b ast.Base, kind ast.ComprehensionKind, n *yaml.Node) *ast.Comprehension {
	c := &ast.Comprehension{Base: b, Kind: kind}
	for _, s := range d.entries(d.required(n, "for")) {
		c.Sources = append(c.Sources, ast.Source{Base: d.base(s.key), Var: d.scalar(s.key), Src: d.expr(s.value)})
	}
	if len(c.Sources) == 0 {
		d.fail(n, "comprehension needs at least one source")
	}
	if w := field(n, "where"); w != nil {
		c.Condition = d.expr(w)
	}
	if v := field(n, "value"); v != nil {
		c.Value = d.expr(v)
	}
	return c
}
