// Package resolver turns type syntax into canonical structural types. Named
// types declared in the compilation unit are expanded in place; a name that
// refers back to itself, directly or through other names, is closed with a
// Recursive binder.
package resolver

import (
	"log/slog"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/token"
	"github.com/funvibe/rectype/internal/typesystem"
)

// Resolver owns the named types of one compilation unit.
type Resolver struct {
	logger     *slog.Logger
	loader     modules.Loader
	modules    *set.Set[ast.ModuleID]
	unresolved map[ast.NameID]*ast.TypeDecl
	order      []ast.NameID
	published  map[ast.NameID]typesystem.Type
}

func New(loader modules.Loader, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = modules.NewMemoryLoader()
	}
	return &Resolver{
		logger:     logger.With("section", "resolver"),
		loader:     loader,
		modules:    set.New[ast.ModuleID](0),
		unresolved: make(map[ast.NameID]*ast.TypeDecl),
		published:  make(map[ast.NameID]typesystem.Type),
	}
}

// AddModule marks id as compiled in this unit. Names in other modules are
// resolved through the loader.
func (r *Resolver) AddModule(id ast.ModuleID) { r.modules.Insert(id) }

// IsLocal reports whether id is compiled in this unit.
func (r *Resolver) IsLocal(id ast.ModuleID) bool { return r.modules.Contains(id) }

// Declare registers a type declaration of module.
func (r *Resolver) Declare(module ast.ModuleID, d *ast.TypeDecl) *diagnostics.DiagnosticError {
	key := ast.NameID{Module: module, Name: d.Name}
	if _, exists := r.unresolved[key]; exists {
		return diagnostics.NewDuplicateDeclaration(d.Pos, key.String())
	}
	r.modules.Insert(module)
	r.unresolved[key] = d
	r.order = append(r.order, key)
	return nil
}

// GenerateTypes declares the type declarations of files and publishes the
// expansion of each. A failing declaration is reported and skipped.
func (r *Resolver) GenerateTypes(files []*ast.File) []*diagnostics.DiagnosticError {
	var errs diagnostics.Set
	for _, f := range files {
		r.AddModule(f.Module)
	}
	for _, f := range files {
		for _, d := range f.Decls {
			if td, ok := d.(*ast.TypeDecl); ok {
				errs.Add(r.Declare(f.Module, td))
			}
		}
	}
	for _, key := range r.order {
		if _, done := r.published[key]; done {
			continue
		}
		t, err := r.ExpandType(key)
		if err != nil {
			errs.Add(err)
			continue
		}
		r.published[key] = t
		r.logger.Debug("published type", "name", key.String(), "type", typesystem.Readable(t).String())
	}
	return errs.Sorted()
}

// ExpandType expands the named type key. Types of other modules come from
// the loader.
func (r *Resolver) ExpandType(key ast.NameID) (typesystem.Type, *diagnostics.DiagnosticError) {
	return r.expandKey(key, token.Position{}, make(map[ast.NameID]typesystem.Type))
}

func (r *Resolver) expandKey(key ast.NameID, pos token.Position, cache map[ast.NameID]typesystem.Type) (typesystem.Type, *diagnostics.DiagnosticError) {
	if t, ok := cache[key]; ok {
		return t, nil
	}
	if t, ok := r.published[key]; ok {
		return t, nil
	}
	if !r.modules.Contains(key.Module) {
		return r.external(key, pos)
	}
	decl, ok := r.unresolved[key]
	if !ok {
		return nil, diagnostics.NewUnresolvedReference(pos, key.String())
	}

	cache[key] = typesystem.Placeholder(key.String())
	t, err := r.expand(decl.Type, cache)
	if err != nil {
		delete(cache, key)
		return nil, err
	}
	if typesystem.IsOpenRecursive(key.String(), t) {
		t = typesystem.Recursive{Name: key.String(), Body: t}
	}
	cache[key] = t
	return t, nil
}

func (r *Resolver) external(key ast.NameID, pos token.Position) (typesystem.Type, *diagnostics.DiagnosticError) {
	m, err := r.loader.LoadModule(key.Module)
	if err != nil {
		r.logger.Debug("module load failed", "module", key.Module, "error", err)
		return nil, diagnostics.NewUnresolvedReference(pos, key.String())
	}
	def, ok := m.Type(key.Name)
	if !ok {
		return nil, diagnostics.NewUnresolvedReference(pos, key.String())
	}
	return def.Type, nil
}

// Resolve resolves type syntax outside of a type declaration, such as a
// parameter type. Named types must already be published.
func (r *Resolver) Resolve(t ast.UnresolvedType) (typesystem.Type, error) {
	res, err := r.expand(t, nil)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) expand(t ast.UnresolvedType, cache map[ast.NameID]typesystem.Type) (typesystem.Type, *diagnostics.DiagnosticError) {
	e := &typeExpander{r: r, cache: cache}
	t.Accept(e)
	return e.result, e.err
}

// Published returns the types published so far.
func (r *Resolver) Published() map[ast.NameID]typesystem.Type {
	out := make(map[ast.NameID]typesystem.Type, len(r.published))
	for k, v := range r.published {
		out[k] = v
	}
	return out
}

// Lookup returns a published type.
func (r *Resolver) Lookup(key ast.NameID) (typesystem.Type, bool) {
	t, ok := r.published[key]
	return t, ok
}

// Decl returns the declaration of a local named type.
func (r *Resolver) Decl(key ast.NameID) (*ast.TypeDecl, bool) {
	d, ok := r.unresolved[key]
	return d, ok
}

// Names lists the declared names in declaration order.
func (r *Resolver) Names() []ast.NameID { return append([]ast.NameID(nil), r.order...) }
