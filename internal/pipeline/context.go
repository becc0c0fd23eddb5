package pipeline

import (
	"log/slog"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/automaton"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/typesystem"
)

// TypeResolver resolves type syntax found outside of type declarations,
// such as parameter and variable types.
type TypeResolver interface {
	Resolve(t ast.UnresolvedType) (typesystem.Type, error)
}

// PipelineContext carries one compilation unit through the stages. Every
// stage reads what the earlier ones produced and appends its diagnostics.
type PipelineContext struct {
	Files  []*ast.File
	Specs  []*ast.SpecFile
	Loader modules.Loader
	Logger *slog.Logger

	// Terms maps each term name to its expanded automaton.
	Terms map[string]*automaton.Automaton

	// Published holds every type declared in the unit.
	Published map[ast.NameID]typesystem.Type
	Resolver  TypeResolver

	// Signatures and checking results.
	FunTypes  map[*ast.FunDecl]typesystem.Fun
	Constants map[ast.NameID]typesystem.Type
	TypeMap   map[ast.Expr]typesystem.Type
	Bindings  map[*ast.Invoke]typesystem.Fun

	Errors []*diagnostics.DiagnosticError
}

// NewContext prepares a context for the given unit.
func NewContext(files []*ast.File, specs []*ast.SpecFile, loader modules.Loader, logger *slog.Logger) *PipelineContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineContext{
		Files:     files,
		Specs:     specs,
		Loader:    loader,
		Logger:    logger,
		Terms:     make(map[string]*automaton.Automaton),
		Published: make(map[ast.NameID]typesystem.Type),
		FunTypes:  make(map[*ast.FunDecl]typesystem.Fun),
		Constants: make(map[ast.NameID]typesystem.Type),
		TypeMap:   make(map[ast.Expr]typesystem.Type),
		Bindings:  make(map[*ast.Invoke]typesystem.Fun),
	}
}

// ModuleIDs lists the modules compiled in this unit, in file order.
func (ctx *PipelineContext) ModuleIDs() []ast.ModuleID {
	var ids []ast.ModuleID
	seen := make(map[ast.ModuleID]bool)
	for _, f := range ctx.Files {
		if !seen[f.Module] {
			seen[f.Module] = true
			ids = append(ids, f.Module)
		}
	}
	return ids
}

func (ctx *PipelineContext) AddErrors(errs ...*diagnostics.DiagnosticError) {
	ctx.Errors = append(ctx.Errors, errs...)
}

// HasErrors reports whether any stage produced a diagnostic.
func (ctx *PipelineContext) HasErrors() bool { return len(ctx.Errors) > 0 }
