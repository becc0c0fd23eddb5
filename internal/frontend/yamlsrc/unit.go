package yamlsrc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
)

// ParseUnit decodes a unit file:
//
//	module: geometry
//	decls:
//	  - type: Point
//	    is: {tuple: {x: real, y: real}}
//	  - const: origin
//	    value: {tuple: {x: 0.0, y: 0.0}}
//	  - fun: norm
//	    params: [{p: Point}]
//	    returns: real
//	    where: {gteq: [$, 0]}
//	    body:
//	      - return: {add: [{field: {of: p, name: x}}, {field: {of: p, name: y}}]}
//
// A file without a module key belongs to module def. The returned file
// holds every declaration that decoded cleanly.
func ParseUnit(data []byte, filename string, def ast.ModuleID) (*ast.File, []*diagnostics.DiagnosticError) {
	d := &decoder{filename: filename, module: def}
	f := &ast.File{Module: def, Filename: filename}

	root := d.document(data)
	if root == nil {
		return f, d.errs.Sorted()
	}
	d.guard(func() {
		if m := field(root, "module"); m != nil {
			d.module = ast.ModuleID(d.scalar(m))
		}
		if d.module == "" {
			d.fail(root, "missing %q", "module")
		}
	})
	f.Module = d.module

	decls := field(root, "decls")
	if decls == nil {
		return f, d.errs.Sorted()
	}
	if decls.Kind != yaml.SequenceNode {
		d.errs.Add(diagnostics.NewError(diagnostics.ErrS001, d.pos(decls), "decls must be a sequence"))
		return f, d.errs.Sorted()
	}
	for _, n := range decls.Content {
		var decl ast.Decl
		if d.guard(func() { decl = d.decl(n) }) {
			f.Decls = append(f.Decls, decl)
		}
	}
	return f, d.errs.Sorted()
}

// LoadUnit reads and decodes the unit file at path.
func LoadUnit(path string, def ast.ModuleID) (*ast.File, []*diagnostics.DiagnosticError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading unit %s: %w", path, err)
	}
	f, errs := ParseUnit(data, path, def)
	return f, errs, nil
}

func (d *decoder) decl(n *yaml.Node) ast.Decl {
	es := d.entries(n)
	if len(es) == 0 {
		d.fail(n, "empty declaration")
	}
	head := es[0]
	b := d.base(n)

	switch head.key.Value {
	case "type":
		td := &ast.TypeDecl{Base: b, Name: d.scalar(head.value), Type: d.typ(d.required(n, "is"))}
		if w := field(n, "where"); w != nil {
			td.Constraint = d.expr(w)
		}
		return td

	case "const":
		return &ast.ConstDecl{Base: b, Name: d.scalar(head.value), Value: d.expr(d.required(n, "value"))}

	case "fun":
		fd := &ast.FunDecl{
			Base:     b,
			Name:     d.scalar(head.value),
			Receiver: d.optionalType(n, "receiver"),
			Ret:      d.optionalType(n, "returns"),
		}
		if ps := field(n, "params"); ps != nil {
			for _, p := range d.sequence(ps) {
				e := d.single(p, "parameter")
				fd.Params = append(fd.Params, ast.Parameter{Base: d.base(e.key), Name: d.scalar(e.key), Type: d.typ(e.value)})
			}
		}
		if w := field(n, "where"); w != nil {
			fd.Constraint = d.expr(w)
		}
		fd.Body = d.block(field(n, "body"))
		return fd
	}
	d.fail(head.key, "unknown declaration %q", head.key.Value)
	return nil
}
