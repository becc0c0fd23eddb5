// Package yamlsrc decodes compilation units and spec files written as
// structured YAML documents into syntax trees.
//
// Every declaration, statement and expression is a YAML node; its line and
// column become the position of the syntax tree element built from it.
// Malformed input is reported as S001 diagnostics and the offending
// declaration is skipped.
package yamlsrc

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/token"
)

// malformed aborts decoding of the current declaration.
type malformed struct{ err *diagnostics.DiagnosticError }

type decoder struct {
	filename string
	module   ast.ModuleID
	errs     diagnostics.Set
}

func (d *decoder) pos(n *yaml.Node) token.Position {
	return token.Position{File: d.filename, Line: n.Line, Column: n.Column}
}

func (d *decoder) base(n *yaml.Node) ast.Base { return ast.Base{Pos: d.pos(n)} }

func (d *decoder) fail(n *yaml.Node, format string, args ...any) {
	panic(malformed{diagnostics.NewError(diagnostics.ErrS001, d.pos(n), fmt.Sprintf(format, args...))})
}

// guard decodes one declaration, recording a malformed one instead of
// propagating the failure.
func (d *decoder) guard(f func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m, isMalformed := r.(malformed)
			if !isMalformed {
				panic(r)
			}
			d.errs.Add(m.err)
			ok = false
		}
	}()
	f()
	return true
}

// document parses data and returns its top-level mapping.
func (d *decoder) document(data []byte) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		d.errs.Add(diagnostics.NewError(diagnostics.ErrS001, token.Position{File: d.filename, Line: 1, Column: 1}, err.Error()))
		return nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		d.errs.Add(diagnostics.NewError(diagnostics.ErrS001, token.Position{File: d.filename, Line: 1, Column: 1}, "empty document"))
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		d.errs.Add(diagnostics.NewError(diagnostics.ErrS001, d.pos(root), "document must be a mapping"))
		return nil
	}
	return root
}

type entry struct {
	key   *yaml.Node
	value *yaml.Node
}

// entries returns the key/value pairs of a mapping in document order.
func (d *decoder) entries(n *yaml.Node) []entry {
	if n.Kind != yaml.MappingNode {
		d.fail(n, "expected a mapping")
	}
	out := make([]entry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, entry{key: n.Content[i], value: n.Content[i+1]})
	}
	return out
}

// field returns the value under key, or nil.
func field(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// single returns the only entry of a one-key mapping.
func (d *decoder) single(n *yaml.Node, what string) entry {
	es := d.entries(n)
	if len(es) != 1 {
		d.fail(n, "%s must have exactly one key, found %d", what, len(es))
	}
	return es[0]
}

func (d *decoder) sequence(n *yaml.Node) []*yaml.Node {
	if n.Kind != yaml.SequenceNode {
		d.fail(n, "expected a sequence")
	}
	return n.Content
}

func (d *decoder) scalar(n *yaml.Node) string {
	if n == nil {
		panic(malformed{diagnostics.NewError(diagnostics.ErrS001, token.Position{File: d.filename}, "missing value")})
	}
	if n.Kind != yaml.ScalarNode {
		d.fail(n, "expected a scalar")
	}
	return n.Value
}

// required returns the scalar under key in n.
func (d *decoder) required(n *yaml.Node, key string) *yaml.Node {
	v := field(n, key)
	if v == nil {
		d.fail(n, "missing %q", key)
	}
	return v
}

func (d *decoder) boolean(n *yaml.Node) bool {
	var b bool
	if err := n.Decode(&b); err != nil {
		d.fail(n, "expected a boolean: %v", err)
	}
	return b
}
