// Package compiler drives a compilation unit through term expansion, type
// resolution and checking, and turns the result into publishable modules.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/checker"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/expansion"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/pipeline"
	"github.com/funvibe/rectype/internal/resolver"
)

// ErrUnitHasErrors is returned when publishing a unit that did not check.
var ErrUnitHasErrors = errors.New("compilation unit has errors")

type Compiler struct {
	logger   *slog.Logger
	loader   modules.Loader
	pipeline *pipeline.Pipeline
}

// New returns a compiler resolving external modules through loader.
func New(loader modules.Loader, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = modules.NewMemoryLoader()
	}
	return &Compiler{
		logger: logger,
		loader: loader,
		pipeline: pipeline.New(
			expansion.ExpansionProcessor{},
			resolver.ResolverProcessor{},
			checker.CheckerProcessor{},
		),
	}
}

// Compile runs every stage over the unit. Diagnostics of all stages are
// collected in the returned context, sorted by position.
func (c *Compiler) Compile(unit *Unit) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(unit.Files, unit.Specs, c.loader, c.logger)
	ctx.AddErrors(unit.Errors...)
	ctx = c.pipeline.Run(ctx)
	diagnostics.Sort(ctx.Errors)
	c.logger.Info("compiled unit",
		"files", len(unit.Files),
		"specs", len(unit.Specs),
		"terms", len(ctx.Terms),
		"types", len(ctx.Published),
		"errors", len(ctx.Errors))
	return ctx
}

// Modules collects the published surface of each module compiled in ctx:
// its named types with their constraints and its function signatures.
func Modules(ctx *pipeline.PipelineContext, version string) []*modules.Module {
	byID := make(map[ast.ModuleID]*modules.Module)
	var out []*modules.Module
	for _, id := range ctx.ModuleIDs() {
		m := modules.NewModule(id)
		m.Version = version
		byID[id] = m
		out = append(out, m)
	}

	for _, f := range ctx.Files {
		m := byID[f.Module]
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.TypeDecl:
				if t, ok := ctx.Published[ast.NameID{Module: f.Module, Name: d.Name}]; ok {
					if _, dup := m.Type(d.Name); !dup {
						m.AddType(d.Name, t, d.Constraint)
					}
				}
			case *ast.FunDecl:
				if ft, ok := ctx.FunTypes[d]; ok {
					m.AddMethod(d.Name, ft)
				}
			}
		}
	}
	return out
}

// Publish writes every module of a clean unit to store under version and
// returns them with their build IDs set.
func Publish(ctx context.Context, store *modules.Store, unit *pipeline.PipelineContext, version string) ([]*modules.Module, error) {
	if unit.HasErrors() {
		return nil, fmt.Errorf("%w: %d diagnostics", ErrUnitHasErrors, len(unit.Errors))
	}
	mods := Modules(unit, version)
	for _, m := range mods {
		if _, err := store.Publish(ctx, m); err != nil {
			return nil, fmt.Errorf("publishing %s: %w", m.ID, err)
		}
	}
	return mods, nil
}
