package modules

import (
	"sort"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/typesystem"
)

// TypeDef is a published type with its optional constraint block. The
// constraint is only available for modules compiled in-process.
type TypeDef struct {
	Type       typesystem.Type
	Constraint ast.Expr
}

// Module is the published surface of a compiled module: its types by name
// and the signatures of its functions by name.
type Module struct {
	ID      ast.ModuleID
	Version string
	BuildID string
	Types   map[string]TypeDef
	Methods map[string][]typesystem.Fun
}

func NewModule(id ast.ModuleID) *Module {
	return &Module{
		ID:      id,
		Types:   make(map[string]TypeDef),
		Methods: make(map[string][]typesystem.Fun),
	}
}

// Type looks up a published type by name.
func (m *Module) Type(name string) (TypeDef, bool) {
	def, ok := m.Types[name]
	return def, ok
}

// MethodSignatures returns every overload declared under name.
func (m *Module) MethodSignatures(name string) []typesystem.Fun {
	return m.Methods[name]
}

func (m *Module) AddType(name string, t typesystem.Type, constraint ast.Expr) {
	m.Types[name] = TypeDef{Type: t, Constraint: constraint}
}

func (m *Module) AddMethod(name string, fn typesystem.Fun) {
	m.Methods[name] = append(m.Methods[name], fn)
}

// TypeNames returns the published type names in sorted order.
func (m *Module) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for n := range m.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MethodNames returns the names of the declared functions in sorted order.
func (m *Module) MethodNames() []string {
	names := make([]string, 0, len(m.Methods))
	for n := range m.Methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
