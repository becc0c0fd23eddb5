package resolver

import (
	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/typesystem"
)

// typeExpander converts one piece of type syntax. With a cache it expands
// named types of the unit recursively; without one it only accepts names
// that are already published or external.
type typeExpander struct {
	r      *Resolver
	cache  map[ast.NameID]typesystem.Type
	result typesystem.Type
	err    *diagnostics.DiagnosticError
}

func (e *typeExpander) sub(t ast.UnresolvedType) typesystem.Type {
	if e.err != nil {
		return nil
	}
	res, err := e.r.expand(t, e.cache)
	if err != nil {
		e.err = err
		return nil
	}
	return res
}

func (e *typeExpander) VisitAnyType(*ast.AnyType)                 { e.result = typesystem.Any{} }
func (e *typeExpander) VisitVoidType(*ast.VoidType)               { e.result = typesystem.Void{} }
func (e *typeExpander) VisitExistentialType(*ast.ExistentialType) { e.result = typesystem.Existential{} }
func (e *typeExpander) VisitBoolType(*ast.BoolType)               { e.result = typesystem.Bool{} }
func (e *typeExpander) VisitIntType(*ast.IntType)                 { e.result = typesystem.Int{} }
func (e *typeExpander) VisitRealType(*ast.RealType)               { e.result = typesystem.Real{} }

func (e *typeExpander) VisitListType(t *ast.ListType) {
	if elem := e.sub(t.Element); elem != nil {
		e.result = typesystem.List{Elem: elem}
	}
}

func (e *typeExpander) VisitSetType(t *ast.SetType) {
	if elem := e.sub(t.Element); elem != nil {
		e.result = typesystem.Set{Elem: elem}
	}
}

func (e *typeExpander) VisitProcessType(t *ast.ProcessType) {
	if elem := e.sub(t.Element); elem != nil {
		e.result = typesystem.Process{Elem: elem}
	}
}

func (e *typeExpander) VisitTupleType(t *ast.TupleType) {
	fields := make(map[string]typesystem.Type, len(t.Fields))
	for _, f := range t.Fields {
		ft := e.sub(f.Type)
		if ft == nil {
			return
		}
		fields[f.Name] = ft
	}
	e.result = typesystem.Tuple{Fields: fields}
}

func (e *typeExpander) VisitUnionType(t *ast.UnionType) {
	bounds := make([]typesystem.Type, 0, len(t.Bounds))
	for _, b := range t.Bounds {
		bt := e.sub(b)
		if bt == nil {
			return
		}
		bounds = append(bounds, bt)
	}
	e.result = typesystem.NewUnion(bounds...)
}

func (e *typeExpander) VisitNamedType(t *ast.NamedType) {
	key := t.ID()
	if e.cache == nil {
		e.result, e.err = e.r.lookup(key, t)
		return
	}
	et, err := e.r.expandKey(key, t.Pos, e.cache)
	if err != nil {
		e.err = err
		return
	}
	if typesystem.IsExistential(et) {
		// keep the name while the type is incomplete
		et = typesystem.Named{Module: string(key.Module), Name: key.Name, Type: et}
	}
	e.result = et
}

func (r *Resolver) lookup(key ast.NameID, t *ast.NamedType) (typesystem.Type, *diagnostics.DiagnosticError) {
	if r.modules.Contains(key.Module) {
		if pt, ok := r.published[key]; ok {
			return pt, nil
		}
		return nil, diagnostics.NewUnresolvedReference(t.Pos, key.String())
	}
	return r.external(key, t.Pos)
}
