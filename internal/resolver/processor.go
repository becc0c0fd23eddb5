package resolver

import (
	"github.com/funvibe/rectype/internal/pipeline"
)

// ResolverProcessor generates and publishes the named types of the unit.
type ResolverProcessor struct{}

func (ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	r := New(ctx.Loader, ctx.Logger)
	ctx.AddErrors(r.GenerateTypes(ctx.Files)...)
	for key, t := range r.Published() {
		ctx.Published[key] = t
	}
	ctx.Resolver = r
	return ctx
}
