// Package expansion inlines class (macro) declarations into term types,
// producing finite automata for arbitrarily recursive class definitions.
package expansion

import (
	"log/slog"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/automaton"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/token"
)

// Expander expands the terms of a spec file and everything it includes.
type Expander struct {
	logger   *slog.Logger
	terms    map[string]*ast.TermDecl
	order    []string
	macros   *MacroTable
	expanded *set.Set[string]
}

func New(logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		logger:   logger.With("section", "expansion"),
		terms:    make(map[string]*ast.TermDecl),
		macros:   NewMacroTable(nil),
		expanded: set.New[string](0),
	}
}

// Expand gathers every term and class reachable from spec, then expands
// each term. The expanded automaton replaces the term's type in place.
func (e *Expander) Expand(spec *ast.SpecFile) []*diagnostics.DiagnosticError {
	var errs diagnostics.Set

	e.terms = make(map[string]*ast.TermDecl)
	e.order = nil
	e.expanded = set.New[string](0)

	g := &gatherer{e: e, errs: &errs, visited: set.New[*ast.SpecFile](0)}
	g.gather(spec)

	e.macros = NewMacroTable(e.terms)
	g = &gatherer{e: e, errs: &errs, visited: set.New[*ast.SpecFile](0), macros: true}
	g.gather(spec)

	for _, name := range e.order {
		if _, err := e.ExpandTerm(name); err != nil {
			errs.Add(err)
		}
	}
	return errs.Sorted()
}

// ExpandTerm expands the term called name. A term that is already expanded
// is returned unchanged.
func (e *Expander) ExpandTerm(name string) (*automaton.Automaton, *diagnostics.DiagnosticError) {
	decl, ok := e.terms[name]
	if !ok {
		return nil, diagnostics.NewUnresolvedReference(token.Position{}, name)
	}
	if e.expanded.Contains(name) {
		return decl.Type, nil
	}

	x := &expansion{
		b:      &automaton.Builder{},
		roots:  make(map[string]int),
		copied: make(map[inputState]int),
		macros: e.macros,
		pos:    decl.Pos,
	}
	root, err := x.node(decl.Type, decl.Type.Root(0))
	if err != nil {
		return nil, err
	}
	out := x.b.Build(root)

	e.logger.Debug("expanded term", "term", name, "states", out.Len(), "result", out.String())
	decl.Type = out
	e.expanded.Insert(name)
	return out, nil
}

// Terms returns the expanded automaton of every expanded term.
func (e *Expander) Terms() map[string]*automaton.Automaton {
	out := make(map[string]*automaton.Automaton, e.expanded.Size())
	for _, name := range e.order {
		if e.expanded.Contains(name) {
			out[name] = e.terms[name].Type
		}
	}
	return out
}

// Macros returns the class table built by the last Expand.
func (e *Expander) Macros() *MacroTable { return e.macros }

// gatherer walks the include graph once per file, collecting either the
// term or the class declarations.
type gatherer struct {
	e       *Expander
	errs    *diagnostics.Set
	visited *set.Set[*ast.SpecFile]
	macros  bool
}

func (g *gatherer) gather(spec *ast.SpecFile) {
	if spec == nil || !g.visited.Insert(spec) {
		return
	}
	for _, d := range spec.Decls {
		d.Accept(g)
	}
}

func (g *gatherer) VisitIncludeDecl(d *ast.IncludeDecl) {
	g.gather(d.File)
}

func (g *gatherer) VisitTermDecl(d *ast.TermDecl) {
	if g.macros {
		return
	}
	if _, exists := g.e.terms[d.Name]; exists {
		g.errs.Add(diagnostics.NewDuplicateDeclaration(d.Pos, d.Name))
		return
	}
	g.e.terms[d.Name] = d
	g.e.order = append(g.e.order, d.Name)
}

func (g *gatherer) VisitClassDecl(d *ast.ClassDecl) {
	if !g.macros {
		return
	}
	g.errs.Add(g.e.macros.Declare(d))
}

// expansion is the state of one top-level term expansion. roots maps each
// macro entered so far to the index of its expanded body, so every macro
// contributes at most one node identity. copied maps every input state
// already visited to its output index, so cycles in the input (an already
// expanded term) become cycles in the output.
type expansion struct {
	b      *automaton.Builder
	roots  map[string]int
	copied map[inputState]int
	macros *MacroTable
	pos    token.Position
}

type inputState struct {
	in *automaton.Automaton
	i  int
}

func (x *expansion) node(in *automaton.Automaton, i int) (int, *diagnostics.DiagnosticError) {
	key := inputState{in: in, i: i}
	if idx, ok := x.copied[key]; ok {
		return idx, nil
	}
	slot := x.b.Reserve()
	x.copied[key] = slot

	switch s := in.Get(i).(type) {
	case automaton.Constant:
		x.b.Set(slot, s)

	case automaton.Compound:
		kids := make([]int, len(s.Children))
		for k, c := range s.Children {
			idx, err := x.node(in, c)
			if err != nil {
				return 0, err
			}
			kids[k] = idx
		}
		x.b.Set(slot, automaton.Compound{Kind: s.Kind, Children: kids})

	case automaton.Term:
		if name, operands, ok := automaton.Reference(in, i); ok {
			if body, isMacro := x.macros.Lookup(name); isMacro {
				idx, err := x.macro(slot, name, operands, body)
				if err != nil {
					return 0, err
				}
				x.copied[key] = idx
				return idx, nil
			}
		}
		contents := automaton.NoContents
		if s.Contents != automaton.NoContents {
			idx, err := x.node(in, s.Contents)
			if err != nil {
				return 0, err
			}
			contents = idx
		}
		x.b.Set(slot, automaton.Term{Kind: s.Kind, Contents: contents})
	}
	return slot, nil
}

// macro replaces a reference at slot with the expanded body of the class.
// The slot is given back so indices stay dense.
func (x *expansion) macro(slot int, name string, operands int, body *automaton.Automaton) (int, *diagnostics.DiagnosticError) {
	if operands > 0 {
		return 0, diagnostics.NewMacroUsedWithOperand(x.pos, name)
	}
	x.b.Truncate(slot)

	if idx, seen := x.roots[name]; seen {
		if idx == x.b.Len() {
			// cycle without a constructor in between, e.g. class A = A
			return x.b.Leaf(automaton.KindVoid), nil
		}
		return idx, nil
	}
	x.roots[name] = slot
	idx, err := x.node(body, body.Root(0))
	if err != nil {
		return 0, err
	}
	x.roots[name] = idx
	return idx, nil
}
