package checker

import (
	"fmt"
	"maps"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/typesystem"
)

var (
	anySet     = typesystem.Set{Elem: typesystem.Any{}}
	stringType = typesystem.List{Elem: typesystem.Int{}}
)

// expr computes and records the type of e. It returns nil once an error
// has been recorded.
func (fc *funcChecker) expr(e ast.Expr) typesystem.Type {
	if fc.err != nil {
		return nil
	}
	fc.typ = nil
	e.Accept(fc)
	if fc.err != nil {
		return nil
	}
	t := fc.typ
	fc.c.TypeMap[e] = t
	return t
}

func (fc *funcChecker) VisitConstant(e *ast.Constant) {
	switch e.Kind {
	case ast.BoolConst:
		fc.typ = typesystem.Bool{}
	case ast.IntConst:
		fc.typ = typesystem.Int{}
	case ast.RealConst:
		fc.typ = typesystem.Real{}
	case ast.StringConst:
		fc.typ = stringType
	default:
		panic(fmt.Sprintf("checker: unhandled constant kind %d", e.Kind))
	}
}

func (fc *funcChecker) VisitVariable(e *ast.Variable) {
	if t, ok := fc.env[e.Name]; ok {
		fc.typ = t
		return
	}
	if t, ok := fc.c.Constants[ast.NameID{Module: fc.module, Name: e.Name}]; ok {
		fc.typ = t
		return
	}
	fc.fail(diagnostics.NewUnknownVariable(e.Pos, e.Name))
}

func (fc *funcChecker) VisitBinOp(e *ast.BinOp) {
	lhs := fc.expr(e.Lhs)
	rhs := fc.expr(e.Rhs)
	if fc.err != nil {
		return
	}

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		if fc.expect(typesystem.Bool{}, lhs, e.Lhs) && fc.expect(typesystem.Bool{}, rhs, e.Rhs) {
			fc.typ = typesystem.Bool{}
		}

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if fc.expect(typesystem.Real{}, lhs, e.Lhs) && fc.expect(typesystem.Real{}, rhs, e.Rhs) {
			fc.typ = typesystem.LUB(lhs, rhs)
		}

	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		if fc.expect(typesystem.Real{}, lhs, e.Lhs) && fc.expect(typesystem.Real{}, rhs, e.Rhs) {
			fc.typ = typesystem.Bool{}
		}

	case ast.OpUnion, ast.OpIntersection:
		if fc.expect(anySet, lhs, e.Lhs) && fc.expect(anySet, rhs, e.Rhs) {
			fc.typ = typesystem.LUB(lhs, rhs)
		}

	case ast.OpSubset, ast.OpSubsetEq:
		if fc.expect(anySet, lhs, e.Lhs) && fc.expect(anySet, rhs, e.Rhs) {
			fc.typ = typesystem.Bool{}
		}

	case ast.OpEq, ast.OpNeq:
		if !related(lhs, rhs) {
			fc.fail(mismatch(e.Pos, lhs, rhs))
			return
		}
		fc.typ = typesystem.Bool{}

	case ast.OpElementOf:
		elem, ok := elementOf(rhs)
		if !ok {
			fc.fail(mismatch(e.Rhs.Position(), anySet, rhs))
			return
		}
		if !related(lhs, elem) {
			fc.fail(mismatch(e.Lhs.Position(), elem, lhs))
			return
		}
		fc.typ = typesystem.Bool{}

	case ast.OpListAccess:
		list, ok := typesystem.Effective(lhs).(typesystem.List)
		if !ok {
			fc.fail(diagnostics.NewTypeMismatch(e.Lhs.Position(), "list", display(lhs)))
			return
		}
		if fc.expect(typesystem.Int{}, rhs, e.Rhs) {
			fc.typ = list.Elem
		}

	default:
		panic(fmt.Sprintf("checker: unhandled binary operator %s", e.Op))
	}
}

func related(a, b typesystem.Type) bool {
	return typesystem.IsSubtype(a, b) || typesystem.IsSubtype(b, a)
}

func (fc *funcChecker) VisitUnOp(e *ast.UnOp) {
	t := fc.expr(e.Operand)
	if fc.err != nil {
		return
	}

	switch e.Op {
	case ast.OpNeg:
		if fc.expect(typesystem.Real{}, t, e.Operand) {
			fc.typ = typesystem.Real{}
		}
	case ast.OpNot:
		if fc.expect(typesystem.Bool{}, t, e.Operand) {
			fc.typ = typesystem.Bool{}
		}
	case ast.OpLengthOf:
		if fc.expect(anySet, t, e.Operand) {
			fc.typ = typesystem.Int{}
		}
	case ast.OpProcessAccess:
		p, err := checkProcess(t, e.Operand.Position())
		if err != nil {
			fc.fail(err)
			return
		}
		fc.typ = p.Elem
	case ast.OpProcessSpawn:
		fc.typ = typesystem.Process{Elem: t}
	default:
		panic(fmt.Sprintf("checker: unhandled unary operator %s", e.Op))
	}
}

func (fc *funcChecker) VisitNaryOp(e *ast.NaryOp) {
	switch e.Op {
	case ast.NarySubList:
		if len(e.Args) != 3 {
			fc.fail(diagnostics.NewError(diagnostics.ErrT004, e.Pos,
				fmt.Sprintf("sublist expects 3 arguments, found %d", len(e.Args))))
			return
		}
		src := fc.expr(e.Args[0])
		start := fc.expr(e.Args[1])
		end := fc.expr(e.Args[2])
		if fc.err != nil {
			return
		}
		list, ok := typesystem.Effective(src).(typesystem.List)
		if !ok {
			fc.fail(diagnostics.NewTypeMismatch(e.Args[0].Position(), "list", display(src)))
			return
		}
		if fc.expect(typesystem.Int{}, start, e.Args[1]) && fc.expect(typesystem.Int{}, end, e.Args[2]) {
			fc.typ = list.Elem
		}

	case ast.NaryListGen, ast.NarySetGen:
		var elem typesystem.Type = typesystem.Void{}
		for _, a := range e.Args {
			t := fc.expr(a)
			if fc.err != nil {
				return
			}
			elem = typesystem.LUB(t, elem)
		}
		if e.Op == ast.NaryListGen {
			fc.typ = typesystem.List{Elem: elem}
		} else {
			fc.typ = typesystem.Set{Elem: elem}
		}

	default:
		panic(fmt.Sprintf("checker: unhandled n-ary operator %d", e.Op))
	}
}

func (fc *funcChecker) VisitInvoke(e *ast.Invoke) {
	args := make([]typesystem.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = fc.expr(a)
	}
	var recv typesystem.Type
	if e.Receiver != nil {
		t := fc.expr(e.Receiver)
		if fc.err != nil {
			return
		}
		p, err := checkProcess(t, e.Receiver.Position())
		if err != nil {
			fc.fail(err)
			return
		}
		recv = p
	}
	if fc.err != nil {
		return
	}

	fn, err := fc.c.bindFunction(e, recv, args)
	if err != nil {
		fc.fail(err)
		return
	}
	fc.c.Bindings[e] = fn
	fc.typ = fn.Ret
}

func (fc *funcChecker) VisitTupleGen(e *ast.TupleGen) {
	fields := make(map[string]typesystem.Type, len(e.Fields))
	for _, f := range e.Fields {
		t := fc.expr(f.Value)
		if fc.err != nil {
			return
		}
		fields[f.Name] = t
	}
	fc.typ = typesystem.Tuple{Fields: fields}
}

func (fc *funcChecker) VisitTupleAccess(e *ast.TupleAccess) {
	t := fc.expr(e.Lhs)
	if fc.err != nil {
		return
	}
	tup, ok := typesystem.Effective(t).(typesystem.Tuple)
	if !ok {
		fc.fail(diagnostics.NewTypeMismatch(e.Lhs.Position(), "tuple", display(t)))
		return
	}
	ft, ok := tup.Fields[e.Field]
	if !ok {
		fc.fail(diagnostics.NewError(diagnostics.ErrT004, e.Pos,
			fmt.Sprintf("type %s has no field named %s", display(t), e.Field)))
		return
	}
	fc.typ = ft
}

// VisitComprehension binds each source variable to the element type of its
// source for the condition and value only.
func (fc *funcChecker) VisitComprehension(e *ast.Comprehension) {
	env := fc.env
	fc.env = maps.Clone(env)
	defer func() { fc.env = env }()

	for _, src := range e.Sources {
		t := fc.expr(src.Src)
		if fc.err != nil {
			return
		}
		elem, ok := elementOf(t)
		if !ok {
			fc.fail(mismatch(src.Src.Position(), anySet, t))
			return
		}
		fc.env[src.Var] = elem
	}
	if e.Condition != nil {
		fc.checkCondition(e.Condition)
		if fc.err != nil {
			return
		}
	}

	switch e.Kind {
	case ast.SomeQuantifier, ast.AllQuantifier:
		fc.typ = typesystem.Bool{}
	case ast.SetComprehension, ast.ListComprehension:
		if e.Value == nil {
			fc.fail(diagnostics.NewError(diagnostics.ErrT004, e.Pos, "comprehension has no value"))
			return
		}
		v := fc.expr(e.Value)
		if fc.err != nil {
			return
		}
		if e.Kind == ast.SetComprehension {
			fc.typ = typesystem.Set{Elem: v}
		} else {
			fc.typ = typesystem.List{Elem: v}
		}
	default:
		panic(fmt.Sprintf("checker: unhandled comprehension kind %d", e.Kind))
	}
}
