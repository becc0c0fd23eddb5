package ast

// Stmt is a statement in a function body.
type Stmt interface {
	Node
	Accept(v StmtVisitor)
}

// StmtVisitor must handle every Stmt variant.
type StmtVisitor interface {
	VisitSkip(*Skip)
	VisitVarDecl(*VarDecl)
	VisitAssign(*Assign)
	VisitAssert(*Assert)
	VisitReturn(*Return)
	VisitDebug(*Debug)
	VisitIfElse(*IfElse)
	VisitInvokeStmt(*InvokeStmt)
	VisitSpawnStmt(*SpawnStmt)
}

type Skip struct{ Base }

// VarDecl declares a local. Init may be nil.
type VarDecl struct {
	Base
	Name string
	Type UnresolvedType
	Init Expr
}

// Assign stores Rhs into Lhs, which is a Variable, an index BinOp or a TupleAccess.
type Assign struct {
	Base
	Lhs Expr
	Rhs Expr
}

type Assert struct {
	Base
	Expr Expr
}

// Return optionally carries a value.
type Return struct {
	Base
	Expr Expr
}

type Debug struct {
	Base
	Expr Expr
}

// IfElse has a nil False branch when there is no else.
type IfElse struct {
	Base
	Condition Expr
	True      []Stmt
	False     []Stmt
}

type InvokeStmt struct {
	Base
	Call *Invoke
}

// SpawnStmt evaluates a spawn expression for its effect.
type SpawnStmt struct {
	Base
	Spawn *UnOp
}

func (s *Skip) Accept(v StmtVisitor)       { v.VisitSkip(s) }
func (s *VarDecl) Accept(v StmtVisitor)    { v.VisitVarDecl(s) }
func (s *Assign) Accept(v StmtVisitor)     { v.VisitAssign(s) }
func (s *Assert) Accept(v StmtVisitor)     { v.VisitAssert(s) }
func (s *Return) Accept(v StmtVisitor)     { v.VisitReturn(s) }
func (s *Debug) Accept(v StmtVisitor)      { v.VisitDebug(s) }
func (s *IfElse) Accept(v StmtVisitor)     { v.VisitIfElse(s) }
func (s *InvokeStmt) Accept(v StmtVisitor) { v.VisitInvokeStmt(s) }
func (s *SpawnStmt) Accept(v StmtVisitor)  { v.VisitSpawnStmt(s) }
