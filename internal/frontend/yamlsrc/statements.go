package yamlsrc

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
)

func (d *decoder) block(n *yaml.Node) []ast.Stmt {
	if n == nil {
		return nil
	}
	items := d.sequence(n)
	stmts := make([]ast.Stmt, 0, len(items))
	for _, item := range items {
		stmts = append(stmts, d.stmt(item))
	}
	return stmts
}

// stmt decodes one statement. The keyword scalars skip and return stand
// for the statements without operands; every other statement is a mapping
// whose first key names it.
func (d *decoder) stmt(n *yaml.Node) ast.Stmt {
	b := d.base(n)
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "skip":
			return &ast.Skip{Base: b}
		case "return":
			return &ast.Return{Base: b}
		}
		d.fail(n, "unknown statement %q", n.Value)
	}

	es := d.entries(n)
	if len(es) == 0 {
		d.fail(n, "empty statement")
	}
	head := es[0]
	switch head.key.Value {
	case "var":
		s := &ast.VarDecl{Base: b, Name: d.scalar(head.value), Type: d.typ(d.required(n, "type"))}
		if init := field(n, "init"); init != nil {
			s.Init = d.expr(init)
		}
		return s
	case "assign":
		return &ast.Assign{Base: b, Lhs: d.expr(head.value), Rhs: d.expr(d.required(n, "value"))}
	case "assert":
		return &ast.Assert{Base: b, Expr: d.expr(head.value)}
	case "return":
		return &ast.Return{Base: b, Expr: d.expr(head.value)}
	case "debug":
		return &ast.Debug{Base: b, Expr: d.expr(head.value)}
	case "if":
		return &ast.IfElse{
			Base:      b,
			Condition: d.expr(head.value),
			True:      d.block(field(n, "then")),
			False:     d.block(field(n, "else")),
		}
	case "call":
		return &ast.InvokeStmt{Base: b, Call: d.invoke(n, head.value)}
	case "spawn":
		return &ast.SpawnStmt{Base: b, Spawn: &ast.UnOp{Base: b, Op: ast.OpProcessSpawn, Operand: d.expr(head.value)}}
	}
	d.fail(head.key, "unknown statement %q", head.key.Value)
	return nil
}
