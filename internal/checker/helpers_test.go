package checker

import (
	"strings"
	"testing"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/diagnostics"
	"github.com/funvibe/rectype/internal/modules"
	"github.com/funvibe/rectype/internal/resolver"
	"github.com/funvibe/rectype/internal/token"
)

const testModule ast.ModuleID = "test"

var line int

// at returns a fresh position so that every node is distinguishable.
func at() ast.Base {
	line++
	return ast.Base{Pos: token.Position{File: "test.yaml", Line: line, Column: 1}}
}

func intT() ast.UnresolvedType  { return &ast.IntType{Base: at()} }
func realT() ast.UnresolvedType { return &ast.RealType{Base: at()} }
func boolT() ast.UnresolvedType { return &ast.BoolType{Base: at()} }
func anyT() ast.UnresolvedType  { return &ast.AnyType{Base: at()} }
func voidT() ast.UnresolvedType { return &ast.VoidType{Base: at()} }

func listT(elem ast.UnresolvedType) ast.UnresolvedType { return &ast.ListType{Base: at(), Element: elem} }
func setT(elem ast.UnresolvedType) ast.UnresolvedType  { return &ast.SetType{Base: at(), Element: elem} }
func procT(elem ast.UnresolvedType) ast.UnresolvedType { return &ast.ProcessType{Base: at(), Element: elem} }

func namedT(name string) ast.UnresolvedType {
	return &ast.NamedType{Base: at(), Module: testModule, Name: name}
}

func tupleT(fields ...any) ast.UnresolvedType {
	t := &ast.TupleType{Base: at()}
	for i := 0; i < len(fields); i += 2 {
		t.Fields = append(t.Fields, ast.TupleField{Name: fields[i].(string), Type: fields[i+1].(ast.UnresolvedType)})
	}
	return t
}

func intc(v int64) *ast.Constant    { return &ast.Constant{Base: at(), Kind: ast.IntConst, Int: v} }
func realc(v float64) *ast.Constant { return &ast.Constant{Base: at(), Kind: ast.RealConst, Real: v} }
func boolc(v bool) *ast.Constant    { return &ast.Constant{Base: at(), Kind: ast.BoolConst, Bool: v} }
func strc(v string) *ast.Constant   { return &ast.Constant{Base: at(), Kind: ast.StringConst, Str: v} }
func vr(name string) *ast.Variable  { return &ast.Variable{Base: at(), Name: name} }

func bin(op ast.BinaryOp, l, r ast.Expr) *ast.BinOp { return &ast.BinOp{Base: at(), Op: op, Lhs: l, Rhs: r} }
func un(op ast.UnaryOp, e ast.Expr) *ast.UnOp      { return &ast.UnOp{Base: at(), Op: op, Operand: e} }

func nary(op ast.NaryKind, args ...ast.Expr) *ast.NaryOp {
	return &ast.NaryOp{Base: at(), Op: op, Args: args}
}

func call(name string, args ...ast.Expr) *ast.Invoke {
	return &ast.Invoke{Base: at(), Module: testModule, Name: name, Args: args}
}

func param(name string, t ast.UnresolvedType) ast.Parameter {
	return ast.Parameter{Base: at(), Name: name, Type: t}
}

func varDecl(name string, t ast.UnresolvedType, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Base: at(), Name: name, Type: t, Init: init}
}

func assign(lhs, rhs ast.Expr) *ast.Assign { return &ast.Assign{Base: at(), Lhs: lhs, Rhs: rhs} }
func ret(e ast.Expr) *ast.Return           { return &ast.Return{Base: at(), Expr: e} }

func ifElse(cond ast.Expr, t, f []ast.Stmt) *ast.IfElse {
	return &ast.IfElse{Base: at(), Condition: cond, True: t, False: f}
}

func fun(name string, params []ast.Parameter, result ast.UnresolvedType, body ...ast.Stmt) *ast.FunDecl {
	return &ast.FunDecl{Base: at(), Name: name, Params: params, Ret: result, Body: body}
}

func typeDecl(name string, t ast.UnresolvedType, constraint ast.Expr) *ast.TypeDecl {
	return &ast.TypeDecl{Base: at(), Name: name, Type: t, Constraint: constraint}
}

func file(decls ...ast.Decl) *ast.File {
	return &ast.File{Module: testModule, Filename: "test.yaml", Decls: decls}
}

// check resolves the named types of files and checks them.
func check(t *testing.T, loader modules.Loader, files ...*ast.File) (*Checker, []*diagnostics.DiagnosticError) {
	t.Helper()
	r := resolver.New(loader, nil)
	errs := r.GenerateTypes(files)
	c := New(r, loader, r.Published(), nil)
	errs = append(errs, c.Check(files)...)
	return c, errs
}

func expectError(t *testing.T, errs []*diagnostics.DiagnosticError, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	t.Fatalf("expected error %s, got:\n%s", code, render(errs))
	return nil
}

func expectNoErrors(t *testing.T, errs []*diagnostics.DiagnosticError) {
	t.Helper()
	if len(errs) > 0 {
		t.Fatalf("expected no errors, got:\n%s", render(errs))
	}
}

func render(errs []*diagnostics.DiagnosticError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}
