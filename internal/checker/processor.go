package checker

import (
	"github.com/funvibe/rectype/internal/pipeline"
)

// CheckerProcessor resolves signatures and checks all declarations. It
// needs the resolver installed by the resolution stage.
type CheckerProcessor struct{}

func (CheckerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Resolver == nil {
		return ctx
	}
	c := New(ctx.Resolver, ctx.Loader, ctx.Published, ctx.Logger)
	ctx.AddErrors(c.Check(ctx.Files)...)

	for fd, ft := range c.FunTypes {
		ctx.FunTypes[fd] = ft
	}
	for key, t := range c.Constants {
		ctx.Constants[key] = t
	}
	for e, t := range c.TypeMap {
		ctx.TypeMap[e] = t
	}
	for inv, ft := range c.Bindings {
		ctx.Bindings[inv] = ft
	}
	return ctx
}
