package expansion

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/automaton"
	"github.com/funvibe/rectype/internal/diagnostics"
)

// MacroTable accumulates class declarations into union bodies. A closed
// class is declared once; an open class may be extended by later
// declarations of the same name.
type MacroTable struct {
	bodies map[string]*automaton.Automaton
	open   *set.Set[string]
	terms  map[string]*ast.TermDecl
}

// NewMacroTable creates a table that rejects classes named like one of
// terms.
func NewMacroTable(terms map[string]*ast.TermDecl) *MacroTable {
	return &MacroTable{
		bodies: make(map[string]*automaton.Automaton),
		open:   set.New[string](0),
		terms:  terms,
	}
}

// Declare adds d to the table.
func (m *MacroTable) Declare(d *ast.ClassDecl) *diagnostics.DiagnosticError {
	if _, isTerm := m.terms[d.Name]; isTerm {
		return diagnostics.NewDuplicateDeclaration(d.Pos, d.Name)
	}
	body, exists := m.bodies[d.Name]
	switch {
	case exists && !m.open.Contains(d.Name):
		return diagnostics.NewOpennessViolation(d.Pos, d.Name, "is not open")
	case exists && !d.IsOpen:
		return diagnostics.NewOpennessViolation(d.Pos, d.Name, "cannot be closed (it is already open)")
	}

	if exists {
		body = automaton.Or(body, d.Body)
	} else {
		body = d.Body
	}
	m.bodies[d.Name] = body
	if d.IsOpen {
		m.open.Insert(d.Name)
	}
	return nil
}

// Lookup returns the accumulated body of the class called name.
func (m *MacroTable) Lookup(name string) (*automaton.Automaton, bool) {
	body, ok := m.bodies[name]
	return body, ok
}

func (m *MacroTable) IsOpen(name string) bool { return m.open.Contains(name) }

func (m *MacroTable) Len() int { return len(m.bodies) }

// Names returns the declared class names in sorted order.
func (m *MacroTable) Names() []string {
	names := make([]string, 0, len(m.bodies))
	for n := range m.bodies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
