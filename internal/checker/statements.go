package checker

import (
	"maps"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/typesystem"
)

// funcChecker checks one declaration. env holds the current, flow-narrowed
// type of each local and declared its declared type. The first error stops
// the walk.
type funcChecker struct {
	c        *Checker
	module   ast.ModuleID
	fn       *typesystem.Fun
	env      map[string]typesystem.Type
	declared map[string]typesystem.Type
	typ      typesystem.Type
	err      *diagnostics.DiagnosticError
}

func (c *Checker) newFuncChecker(module ast.ModuleID, fn *typesystem.Fun) *funcChecker {
	return &funcChecker{
		c:        c,
		module:   module,
		fn:       fn,
		env:      make(map[string]typesystem.Type),
		declared: make(map[string]typesystem.Type),
	}
}

func (fc *funcChecker) fail(err *diagnostics.DiagnosticError) {
	if fc.err == nil {
		fc.err = err
	}
}

// expect records a mismatch unless found ⊑ expected.
func (fc *funcChecker) expect(expected, found typesystem.Type, at ast.Node) bool {
	if fc.err != nil {
		return false
	}
	if !typesystem.IsSubtype(found, expected) {
		fc.fail(mismatch(at.Position(), expected, found))
		return false
	}
	return true
}

func (fc *funcChecker) checkCondition(e ast.Expr) {
	if t := fc.expr(e); t != nil {
		fc.expect(typesystem.Bool{}, t, e)
	}
}

func (fc *funcChecker) block(stmts []ast.Stmt) {
	for _, s := range stmts {
		if fc.err != nil {
			return
		}
		s.Accept(fc)
	}
}

func (fc *funcChecker) VisitSkip(*ast.Skip) {}

func (fc *funcChecker) VisitVarDecl(s *ast.VarDecl) {
	t, err := fc.c.resolveType(s.Type, s.Pos)
	if err != nil {
		fc.fail(err)
		return
	}
	if s.Init != nil {
		it := fc.expr(s.Init)
		if !fc.expect(t, it, s.Init) {
			return
		}
		fc.env[s.Name] = it
	}
	fc.declared[s.Name] = t
}

func (fc *funcChecker) VisitAssign(s *ast.Assign) {
	rt := fc.expr(s.Rhs)
	if fc.err != nil {
		return
	}
	if v, ok := s.Lhs.(*ast.Variable); ok {
		dt, ok := fc.declared[v.Name]
		if !ok {
			fc.fail(diagnostics.NewUnknownVariable(v.Pos, v.Name))
			return
		}
		if fc.expect(dt, rt, s.Rhs) {
			fc.env[v.Name] = rt
			fc.c.TypeMap[v] = rt
		}
		return
	}
	lt := fc.expr(s.Lhs)
	if fc.err == nil {
		fc.expect(lt, rt, s.Rhs)
	}
}

func (fc *funcChecker) VisitAssert(s *ast.Assert) {
	fc.checkCondition(s.Expr)
}

func (fc *funcChecker) VisitReturn(s *ast.Return) {
	ret := fc.fn.Ret
	if s.Expr == nil {
		if _, ok := typesystem.Effective(ret).(typesystem.Void); !ok {
			fc.fail(mismatch(s.Pos, ret, typesystem.Void{}))
		}
		return
	}
	if t := fc.expr(s.Expr); t != nil {
		fc.expect(ret, t, s.Expr)
	}
}

func (fc *funcChecker) VisitDebug(s *ast.Debug) {
	if t := fc.expr(s.Expr); t != nil {
		fc.expect(typesystem.List{Elem: typesystem.Int{}}, t, s.Expr)
	}
}

// VisitIfElse checks each branch against its own copy of the environment.
// Narrowing inside a branch does not survive the conditional.
func (fc *funcChecker) VisitIfElse(s *ast.IfElse) {
	fc.checkCondition(s.Condition)
	if fc.err != nil {
		return
	}
	fc.branch(s.True)
	if s.False != nil {
		fc.branch(s.False)
	}
}

func (fc *funcChecker) branch(stmts []ast.Stmt) {
	env, declared := fc.env, fc.declared
	fc.env, fc.declared = maps.Clone(env), maps.Clone(declared)
	fc.block(stmts)
	fc.env, fc.declared = env, declared
}

func (fc *funcChecker) VisitInvokeStmt(s *ast.InvokeStmt) {
	fc.expr(s.Call)
}

func (fc *funcChecker) VisitSpawnStmt(s *ast.SpawnStmt) {
	fc.expr(s.Spawn)
}
