package yamlsrc

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/automaton"
	"github.com/funvibe/rectype/internal/diagnostics"
)

var leafKinds = map[string]string{
	"void":   automaton.KindVoid,
	"any":    automaton.KindAny,
	"bool":   automaton.KindBool,
	"int":    automaton.KindInt,
	"real":   automaton.KindReal,
	"string": automaton.KindString,
}

// ParseSpec decodes a spec file:
//
//	package: geometry
//	decls:
//	  - include: common.yaml
//	  - term: Circle
//	    type: real
//	  - class: Shape
//	    open: true
//	    type: [Circle, Square]
//
// Includes are left unresolved; SpecLoader links them.
func ParseSpec(data []byte, filename string) (*ast.SpecFile, []*diagnostics.DiagnosticError) {
	d := &decoder{filename: filename}
	spec := &ast.SpecFile{
		Name:     strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Filename: filename,
	}

	root := d.document(data)
	if root == nil {
		return spec, d.errs.Sorted()
	}
	if p := field(root, "package"); p != nil {
		d.guard(func() { spec.Package = d.scalar(p) })
	}
	decls := field(root, "decls")
	if decls == nil {
		return spec, d.errs.Sorted()
	}
	if decls.Kind != yaml.SequenceNode {
		d.errs.Add(diagnostics.NewError(diagnostics.ErrS001, d.pos(decls), "decls must be a sequence"))
		return spec, d.errs.Sorted()
	}
	for _, n := range decls.Content {
		var decl ast.SpecDecl
		if d.guard(func() { decl = d.specDecl(n) }) {
			spec.Decls = append(spec.Decls, decl)
		}
	}
	return spec, d.errs.Sorted()
}

func (d *decoder) specDecl(n *yaml.Node) ast.SpecDecl {
	es := d.entries(n)
	if len(es) == 0 {
		d.fail(n, "empty declaration")
	}
	head := es[0]
	b := d.base(n)

	switch head.key.Value {
	case "include":
		return &ast.IncludeDecl{Base: b, Path: d.scalar(head.value)}

	case "term":
		name := d.scalar(head.value)
		bld := &automaton.Builder{}
		contents := automaton.NoContents
		if t := field(n, "type"); t != nil {
			contents = d.pattern(bld, t)
		}
		return &ast.TermDecl{Base: b, Name: name, Type: bld.Build(bld.Term(name, contents))}

	case "class":
		bld := &automaton.Builder{}
		root := d.pattern(bld, d.required(n, "type"))
		open := false
		if o := field(n, "open"); o != nil {
			open = d.boolean(o)
		}
		return &ast.ClassDecl{Base: b, Name: d.scalar(head.value), Body: bld.Build(root), IsOpen: open}
	}
	d.fail(head.key, "unknown declaration %q", head.key.Value)
	return nil
}

// pattern adds the states of a term pattern to b and returns its root:
//
//	int | real | bool | any | void | string    leaves
//	Name                                      reference to a term or class
//	[P1, P2]  or  {or: [P1, P2]}              alternatives
//	{and: [P1, P2]}  {not: P}
//	{list: P}  {set: P}
//	{ref: Name, args: [P1, ...]}              term with operands
func (d *decoder) pattern(b *automaton.Builder, n *yaml.Node) int {
	switch n.Kind {
	case yaml.ScalarNode:
		if kind, ok := leafKinds[n.Value]; ok {
			return b.Leaf(kind)
		}
		if n.Value == "" {
			d.fail(n, "empty pattern")
		}
		return b.Ref(n.Value)
	case yaml.SequenceNode:
		return b.Term(automaton.KindOr, b.Compound(automaton.SetKind, d.patterns(b, n)...))
	}

	if ref := field(n, "ref"); ref != nil {
		var args []int
		if a := field(n, "args"); a != nil {
			args = d.patterns(b, a)
		}
		return b.Ref(d.scalar(ref), args...)
	}

	e := d.single(n, "pattern")
	switch e.key.Value {
	case "or":
		return b.Term(automaton.KindOr, b.Compound(automaton.SetKind, d.patterns(b, e.value)...))
	case "and":
		return b.Term(automaton.KindAnd, b.Compound(automaton.SetKind, d.patterns(b, e.value)...))
	case "not":
		return b.Term(automaton.KindNot, d.pattern(b, e.value))
	case "list":
		return b.Term(automaton.KindList, b.Compound(automaton.ListKind, d.pattern(b, e.value)))
	case "set":
		return b.Term(automaton.KindSet, b.Compound(automaton.ListKind, d.pattern(b, e.value)))
	}
	d.fail(e.key, "unknown pattern %q", e.key.Value)
	return 0
}

func (d *decoder) patterns(b *automaton.Builder, n *yaml.Node) []int {
	items := d.sequence(n)
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = d.pattern(b, item)
	}
	return ids
}

// SpecLoader reads spec files and links their includes. Each file is read
// once; including it again, or through a cycle, yields the same SpecFile.
type SpecLoader struct {
	logger *slog.Logger
	files  map[string]*ast.SpecFile
	errs   diagnostics.Set
}

func NewSpecLoader(logger *slog.Logger) *SpecLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpecLoader{
		logger: logger.With("section", "yamlsrc"),
		files:  make(map[string]*ast.SpecFile),
	}
}

// Load reads the spec file at path and, transitively, everything it
// includes. Decode problems are collected in Errors; the returned error
// reports only a root file that cannot be read.
func (l *SpecLoader) Load(path string) (*ast.SpecFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if spec, ok := l.files[abs]; ok {
		return spec, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading spec %s: %w", path, err)
	}
	return l.parse(abs, data), nil
}

func (l *SpecLoader) parse(abs string, data []byte) *ast.SpecFile {
	spec, errs := ParseSpec(data, abs)
	l.files[abs] = spec
	l.errs.AddAll(errs)
	l.logger.Debug("loaded spec", "file", abs, "decls", len(spec.Decls))

	for _, decl := range spec.Decls {
		inc, ok := decl.(*ast.IncludeDecl)
		if !ok {
			continue
		}
		target := inc.Path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}
		if f, ok := l.files[target]; ok {
			inc.File = f
			continue
		}
		data, err := os.ReadFile(target)
		if err != nil {
			l.errs.Add(diagnostics.NewError(diagnostics.ErrS001, inc.Pos, fmt.Sprintf("cannot include %s: %v", inc.Path, err)))
			continue
		}
		inc.File = l.parse(target, data)
	}
	return spec
}

// Errors returns the decode problems of every file loaded so far.
func (l *SpecLoader) Errors() []*diagnostics.DiagnosticError { return l.errs.Sorted() }

// Files returns the loaded file names.
func (l *SpecLoader) Files() []string {
	names := make([]string, 0, len(l.files))
	for name := range l.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
