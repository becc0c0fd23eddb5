package ast

import "strconv"

// Expr is an expression tree node.
type Expr interface {
	Node
	Accept(v ExprVisitor)
}

// ExprVisitor must handle every Expr variant.
type ExprVisitor interface {
	VisitConstant(*Constant)
	VisitVariable(*Variable)
	VisitBinOp(*BinOp)
	VisitUnOp(*UnOp)
	VisitNaryOp(*NaryOp)
	VisitInvoke(*Invoke)
	VisitTupleGen(*TupleGen)
	VisitTupleAccess(*TupleAccess)
	VisitComprehension(*Comprehension)
}

type ConstKind int

const (
	BoolConst ConstKind = iota
	IntConst
	RealConst
	StringConst
)

// Constant is a literal value. Only the field matching Kind is meaningful.
type Constant struct {
	Base
	Kind ConstKind
	Bool bool
	Int  int64
	Real float64
	Str  string
}

func (c *Constant) String() string {
	switch c.Kind {
	case BoolConst:
		return strconv.FormatBool(c.Bool)
	case IntConst:
		return strconv.FormatInt(c.Int, 10)
	case RealConst:
		return strconv.FormatFloat(c.Real, 'g', -1, 64)
	}
	return strconv.Quote(c.Str)
}

type Variable struct {
	Base
	Name string
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
	OpUnion
	OpIntersection
	OpSubset
	OpSubsetEq
	OpElementOf
	OpListAccess
)

var binaryOpNames = [...]string{
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpDiv:          "div",
	OpEq:           "eq",
	OpNeq:          "neq",
	OpLt:           "lt",
	OpLtEq:         "lteq",
	OpGt:           "gt",
	OpGtEq:         "gteq",
	OpAnd:          "and",
	OpOr:           "or",
	OpUnion:        "union",
	OpIntersection: "intersect",
	OpSubset:       "subset",
	OpSubsetEq:     "subseteq",
	OpElementOf:    "in",
	OpListAccess:   "index",
}

func (op BinaryOp) String() string { return binaryOpNames[op] }

// LookupBinaryOp maps a front-end operator name to its BinaryOp.
func LookupBinaryOp(name string) (BinaryOp, bool) {
	for op, n := range binaryOpNames {
		if n == name {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

type BinOp struct {
	Base
	Op       BinaryOp
	Lhs, Rhs Expr
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
	OpLengthOf
	OpProcessAccess
	OpProcessSpawn
)

var unaryOpNames = [...]string{
	OpNeg:           "neg",
	OpNot:           "not",
	OpLengthOf:      "len",
	OpProcessAccess: "deref",
	OpProcessSpawn:  "spawn",
}

func (op UnaryOp) String() string { return unaryOpNames[op] }

func LookupUnaryOp(name string) (UnaryOp, bool) {
	for op, n := range unaryOpNames {
		if n == name {
			return UnaryOp(op), true
		}
	}
	return 0, false
}

type UnOp struct {
	Base
	Op      UnaryOp
	Operand Expr
}

type NaryKind int

const (
	NarySubList NaryKind = iota
	NaryListGen
	NarySetGen
)

type NaryOp struct {
	Base
	Op   NaryKind
	Args []Expr
}

// Invoke calls a function or, with a Receiver, a method on a process.
type Invoke struct {
	Base
	Module   ModuleID
	Name     string
	Receiver Expr
	Args     []Expr
}

func (i *Invoke) ID() NameID { return NameID{Module: i.Module, Name: i.Name} }

type FieldInit struct {
	Name  string
	Value Expr
}

type TupleGen struct {
	Base
	Fields []FieldInit
}

type TupleAccess struct {
	Base
	Lhs   Expr
	Field string
}

type ComprehensionKind int

const (
	SetComprehension ComprehensionKind = iota
	ListComprehension
	SomeQuantifier
	AllQuantifier
)

// Source binds Var to each element of Src.
type Source struct {
	Base
	Var string
	Src Expr
}

// Comprehension builds a set or list from Value over Sources filtered by
// Condition, or, for quantifiers, tests Condition over Sources.
type Comprehension struct {
	Base
	Kind      ComprehensionKind
	Sources   []Source
	Condition Expr
	Value     Expr
}

func (e *Constant) Accept(v ExprVisitor)      { v.VisitConstant(e) }
func (e *Variable) Accept(v ExprVisitor)      { v.VisitVariable(e) }
func (e *BinOp) Accept(v ExprVisitor)         { v.VisitBinOp(e) }
func (e *UnOp) Accept(v ExprVisitor)          { v.VisitUnOp(e) }
func (e *NaryOp) Accept(v ExprVisitor)        { v.VisitNaryOp(e) }
func (e *Invoke) Accept(v ExprVisitor)        { v.VisitInvoke(e) }
func (e *TupleGen) Accept(v ExprVisitor)      { v.VisitTupleGen(e) }
func (e *TupleAccess) Accept(v ExprVisitor)   { v.VisitTupleAccess(e) }
func (e *Comprehension) Accept(v ExprVisitor) { v.VisitComprehension(e) }
