package expansion

import (
	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/pipeline"
	"github.com/funvibe/rectype/internal/token"
)

// ExpansionProcessor expands the spec files of a compilation unit.
type ExpansionProcessor struct{}

func (ExpansionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Specs) == 0 {
		return ctx
	}

	// A synthetic root including every spec of the unit, so duplicate
	// terms across specs are reported and shared includes visited once.
	root := &ast.SpecFile{Name: "<unit>"}
	for _, spec := range ctx.Specs {
		root.Decls = append(root.Decls, &ast.IncludeDecl{
			Base: ast.Base{Pos: token.Position{File: spec.Filename}},
			Path: spec.Filename,
			File: spec,
		})
	}

	e := New(ctx.Logger)
	ctx.AddErrors(e.Expand(root)...)
	for name, a := range e.Terms() {
		ctx.Terms[name] = a
	}
	return ctx
}
