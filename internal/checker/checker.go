// Package checker computes a type for every expression of a compilation
// unit. It checks each function body in one bottom-up pass, tracking the
// flow-narrowed type of every local next to its declared type.
package checker

import (
	"log/slog"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/config"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/pipeline"
	"github.com/funvibe/rectype/internal/token"
	"github.com/funvibe/rectype/internal/typesystem"
)

// Checker holds the signatures and annotations of one compilation unit.
type Checker struct {
	logger    *slog.Logger
	resolver  pipeline.TypeResolver
	loader    modules.Loader
	published map[ast.NameID]typesystem.Type
	local     *set.Set[ast.ModuleID]
	functions map[ast.NameID][]typesystem.Fun

	TypeMap   map[ast.Expr]typesystem.Type
	FunTypes  map[*ast.FunDecl]typesystem.Fun
	Constants map[ast.NameID]typesystem.Type
	Bindings  map[*ast.Invoke]typesystem.Fun
}

func New(resolver pipeline.TypeResolver, loader modules.Loader, published map[ast.NameID]typesystem.Type, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = modules.NewMemoryLoader()
	}
	return &Checker{
		logger:    logger.With("section", "checker"),
		resolver:  resolver,
		loader:    loader,
		published: published,
		local:     set.New[ast.ModuleID](0),
		functions: make(map[ast.NameID][]typesystem.Fun),
		TypeMap:   make(map[ast.Expr]typesystem.Type),
		FunTypes:  make(map[*ast.FunDecl]typesystem.Fun),
		Constants: make(map[ast.NameID]typesystem.Type),
		Bindings:  make(map[*ast.Invoke]typesystem.Fun),
	}
}

// Check resolves every function signature of files, then checks constants,
// type constraints and function bodies. A failure aborts only the
// declaration it occurs in.
func (c *Checker) Check(files []*ast.File) []*diagnostics.DiagnosticError {
	var errs diagnostics.Set
	errs.AddAll(c.DeclareSignatures(files))
	errs.AddAll(c.CheckBodies(files))
	return errs.Sorted()
}

// DeclareSignatures resolves the signature of every function in files.
func (c *Checker) DeclareSignatures(files []*ast.File) []*diagnostics.DiagnosticError {
	var errs diagnostics.Set
	for _, f := range files {
		c.local.Insert(f.Module)
	}
	for _, f := range files {
		for _, d := range f.Decls {
			if fd, ok := d.(*ast.FunDecl); ok {
				errs.Add(c.partResolve(f.Module, fd))
			}
		}
	}
	return errs.Sorted()
}

func (c *Checker) partResolve(module ast.ModuleID, fd *ast.FunDecl) *diagnostics.DiagnosticError {
	params := make([]typesystem.Type, len(fd.Params))
	for i, p := range fd.Params {
		t, err := c.resolveType(p.Type, p.Pos)
		if err != nil {
			return err
		}
		params[i] = t
	}

	var ret typesystem.Type = typesystem.Void{}
	if fd.Ret != nil {
		t, err := c.resolveType(fd.Ret, fd.Pos)
		if err != nil {
			return err
		}
		ret = t
	}

	var recv typesystem.Type
	if fd.Receiver != nil {
		t, err := c.resolveType(fd.Receiver, fd.Receiver.Position())
		if err != nil {
			return err
		}
		proc, err := checkProcess(t, fd.Receiver.Position())
		if err != nil {
			return err
		}
		recv = proc
	}

	ft := typesystem.Fun{Receiver: recv, Params: params, Ret: ret}
	key := ast.NameID{Module: module, Name: fd.Name}
	c.functions[key] = append(c.functions[key], ft)
	c.FunTypes[fd] = ft
	c.logger.Debug("declared function", "name", key.String(), "type", ft.String())
	return nil
}

// CheckBodies checks constants first, then type constraints and function
// bodies in declaration order.
func (c *Checker) CheckBodies(files []*ast.File) []*diagnostics.DiagnosticError {
	var errs diagnostics.Set
	for _, f := range files {
		for _, d := range f.Decls {
			if cd, ok := d.(*ast.ConstDecl); ok {
				errs.Add(c.checkConst(f.Module, cd))
			}
		}
	}
	for _, f := range files {
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.TypeDecl:
				errs.Add(c.checkTypeDecl(f.Module, d))
			case *ast.FunDecl:
				errs.Add(c.checkFunction(f.Module, d))
			}
		}
	}
	return errs.Sorted()
}

func (c *Checker) checkConst(module ast.ModuleID, cd *ast.ConstDecl) *diagnostics.DiagnosticError {
	fc := c.newFuncChecker(module, nil)
	t := fc.expr(cd.Value)
	if fc.err != nil {
		return fc.err
	}
	c.Constants[ast.NameID{Module: module, Name: cd.Name}] = t
	return nil
}

func (c *Checker) checkTypeDecl(module ast.ModuleID, td *ast.TypeDecl) *diagnostics.DiagnosticError {
	if td.Constraint == nil {
		return nil
	}
	t, ok := c.published[ast.NameID{Module: module, Name: td.Name}]
	if !ok {
		// the declaration itself failed to resolve
		return nil
	}
	fc := c.newFuncChecker(module, nil)
	fc.env[config.ConstraintVariable] = t
	fc.checkCondition(td.Constraint)
	return fc.err
}

func (c *Checker) checkFunction(module ast.ModuleID, fd *ast.FunDecl) *diagnostics.DiagnosticError {
	ft, ok := c.FunTypes[fd]
	if !ok {
		return nil
	}
	fc := c.newFuncChecker(module, &ft)
	for i, p := range fd.Params {
		fc.env[p.Name] = ft.Params[i]
		fc.declared[p.Name] = ft.Params[i]
	}
	if ft.Receiver != nil {
		fc.env[config.SelfVariable] = ft.Receiver
		fc.declared[config.SelfVariable] = ft.Receiver
	}
	if fd.Constraint != nil {
		fc.env[config.ConstraintVariable] = ft.Ret
		fc.checkCondition(fd.Constraint)
		delete(fc.env, config.ConstraintVariable)
	}
	fc.block(fd.Body)
	return fc.err
}

func (c *Checker) resolveType(t ast.UnresolvedType, pos token.Position) (typesystem.Type, *diagnostics.DiagnosticError) {
	res, err := c.resolver.Resolve(t)
	if err != nil {
		if de, ok := diagnostics.As(err); ok {
			return nil, de
		}
		return nil, diagnostics.NewUnresolvedReference(pos, ast.FormatType(t))
	}
	return res, nil
}

// display renders t with readable recursive binders.
func display(t typesystem.Type) string {
	if t == nil {
		return "<none>"
	}
	return typesystem.Readable(t).String()
}

func mismatch(pos token.Position, expected, found typesystem.Type) *diagnostics.DiagnosticError {
	return diagnostics.NewTypeMismatch(pos, display(expected), display(found))
}

func checkProcess(t typesystem.Type, pos token.Position) (typesystem.Process, *diagnostics.DiagnosticError) {
	if p, ok := typesystem.Effective(t).(typesystem.Process); ok {
		return p, nil
	}
	return typesystem.Process{}, diagnostics.NewTypeMismatch(pos, "process", display(t))
}

// elementOf returns the element type of a list or set.
func elementOf(t typesystem.Type) (typesystem.Type, bool) {
	switch x := typesystem.Effective(t).(type) {
	case typesystem.List:
		return x.Elem, true
	case typesystem.Set:
		return x.Elem, true
	}
	return nil, false
}
