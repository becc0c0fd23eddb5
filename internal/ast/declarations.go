package ast

// File is one source file of a compilation unit.
type File struct {
	Module   ModuleID
	Filename string
	Decls    []Decl
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	DeclName() string
	Accept(v DeclVisitor)
}

// DeclVisitor must handle every Decl variant.
type DeclVisitor interface {
	VisitTypeDecl(*TypeDecl)
	VisitConstDecl(*ConstDecl)
	VisitFunDecl(*FunDecl)
}

// TypeDecl names a type, optionally restricted by a constraint over "$".
type TypeDecl struct {
	Base
	Name       string
	Type       UnresolvedType
	Constraint Expr
}

type ConstDecl struct {
	Base
	Name  string
	Value Expr
}

type Parameter struct {
	Base
	Name string
	Type UnresolvedType
}

// FunDecl is a function, or a method when Receiver is set. Constraint is a
// postcondition over "$", the returned value.
type FunDecl struct {
	Base
	Name       string
	Receiver   UnresolvedType
	Params     []Parameter
	Ret        UnresolvedType
	Constraint Expr
	Body       []Stmt
}

func (d *TypeDecl) DeclName() string  { return d.Name }
func (d *ConstDecl) DeclName() string { return d.Name }
func (d *FunDecl) DeclName() string   { return d.Name }

func (d *TypeDecl) Accept(v DeclVisitor)  { v.VisitTypeDecl(d) }
func (d *ConstDecl) Accept(v DeclVisitor) { v.VisitConstDecl(d) }
func (d *FunDecl) Accept(v DeclVisitor)   { v.VisitFunDecl(d) }
