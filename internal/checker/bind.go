package checker

import (
	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/typesystem"
)

// signatures returns every overload visible under the name called by e.
func (c *Checker) signatures(e *ast.Invoke) ([]typesystem.Fun, *diagnostics.DiagnosticError) {
	key := e.ID()
	if c.local.Contains(key.Module) {
		return c.functions[key], nil
	}
	m, err := c.loader.LoadModule(key.Module)
	if err != nil {
		c.logger.Debug("module load failed", "module", key.Module, "error", err)
		return nil, diagnostics.NewUnresolvedReference(e.Pos, key.String())
	}
	return m.MethodSignatures(key.Name), nil
}

// bindFunction picks the most specific overload applicable to a call with
// the given receiver and argument types.
func (c *Checker) bindFunction(e *ast.Invoke, recv typesystem.Type, args []typesystem.Type) (typesystem.Fun, *diagnostics.DiagnosticError) {
	sigs, err := c.signatures(e)
	if err != nil {
		return typesystem.Fun{}, err
	}

	target := typesystem.Fun{Receiver: recv, Params: args, Ret: typesystem.Any{}}
	var candidates []typesystem.Fun
	for _, ft := range sigs {
		if !receiverCompatible(recv, ft.Receiver) || len(ft.Params) != len(args) {
			continue
		}
		if typesystem.IsSubtype(ft, target) {
			candidates = append(candidates, ft)
		}
	}

	var best []typesystem.Fun
	for i, a := range candidates {
		superseded := false
		for j, b := range candidates {
			if i != j && moreSpecific(b, a) && !moreSpecific(a, b) {
				superseded = true
				break
			}
		}
		if !superseded {
			best = append(best, a)
		}
	}
	if len(best) != 1 {
		return typesystem.Fun{}, diagnostics.NewAmbiguousOverload(e.Pos, e.ID().String(), len(best))
	}
	c.logger.Debug("bound call", "name", e.ID().String(), "signature", best[0].String())
	return best[0], nil
}

// receiverCompatible holds when neither side has a receiver, or when the
// call-site receiver is a subtype of the declared one.
func receiverCompatible(site, declared typesystem.Type) bool {
	if site == nil || declared == nil {
		return site == nil && declared == nil
	}
	return typesystem.IsSubtype(site, declared)
}

// moreSpecific reports whether a's receiver and parameters are pointwise
// subtypes of b's.
func moreSpecific(a, b typesystem.Fun) bool {
	if a.Receiver != nil && b.Receiver != nil && !typesystem.IsSubtype(a.Receiver, b.Receiver) {
		return false
	}
	for i := range a.Params {
		if !typesystem.IsSubtype(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return true
}
