package ast

import (
	"fmt"
	"strings"
)

// UnresolvedType is surface type syntax as written by the programmer, before
// named types are expanded.
type UnresolvedType interface {
	Node
	Accept(v TypeVisitor)
}

// TypeVisitor must handle every UnresolvedType variant.
type TypeVisitor interface {
	VisitAnyType(*AnyType)
	VisitVoidType(*VoidType)
	VisitExistentialType(*ExistentialType)
	VisitBoolType(*BoolType)
	VisitIntType(*IntType)
	VisitRealType(*RealType)
	VisitListType(*ListType)
	VisitSetType(*SetType)
	VisitTupleType(*TupleType)
	VisitUnionType(*UnionType)
	VisitProcessType(*ProcessType)
	VisitNamedType(*NamedType)
}

type AnyType struct{ Base }
type VoidType struct{ Base }
type ExistentialType struct{ Base }
type BoolType struct{ Base }
type IntType struct{ Base }
type RealType struct{ Base }

type ListType struct {
	Base
	Element UnresolvedType
}

type SetType struct {
	Base
	Element UnresolvedType
}

type TupleField struct {
	Name string
	Type UnresolvedType
}

// TupleType keeps fields in source order; names are unique.
type TupleType struct {
	Base
	Fields []TupleField
}

type UnionType struct {
	Base
	Bounds []UnresolvedType
}

type ProcessType struct {
	Base
	Element UnresolvedType
}

// NamedType refers to a declared type. Module is the module the name was
// resolved against by the front-end.
type NamedType struct {
	Base
	Module ModuleID
	Name   string
}

func (n *NamedType) ID() NameID { return NameID{Module: n.Module, Name: n.Name} }

func (t *AnyType) Accept(v TypeVisitor)         { v.VisitAnyType(t) }
func (t *VoidType) Accept(v TypeVisitor)        { v.VisitVoidType(t) }
func (t *ExistentialType) Accept(v TypeVisitor) { v.VisitExistentialType(t) }
func (t *BoolType) Accept(v TypeVisitor)        { v.VisitBoolType(t) }
func (t *IntType) Accept(v TypeVisitor)         { v.VisitIntType(t) }
func (t *RealType) Accept(v TypeVisitor)        { v.VisitRealType(t) }
func (t *ListType) Accept(v TypeVisitor)        { v.VisitListType(t) }
func (t *SetType) Accept(v TypeVisitor)         { v.VisitSetType(t) }
func (t *TupleType) Accept(v TypeVisitor)       { v.VisitTupleType(t) }
func (t *UnionType) Accept(v TypeVisitor)       { v.VisitUnionType(t) }
func (t *ProcessType) Accept(v TypeVisitor)     { v.VisitProcessType(t) }
func (t *NamedType) Accept(v TypeVisitor)       { v.VisitNamedType(t) }

// FormatType renders surface syntax for messages.
func FormatType(t UnresolvedType) string {
	if t == nil {
		return "<none>"
	}
	p := &typePrinter{}
	t.Accept(p)
	return p.sb.String()
}

type typePrinter struct{ sb strings.Builder }

func (p *typePrinter) VisitAnyType(*AnyType)                 { p.sb.WriteString("any") }
func (p *typePrinter) VisitVoidType(*VoidType)               { p.sb.WriteString("void") }
func (p *typePrinter) VisitExistentialType(*ExistentialType) { p.sb.WriteString("?") }
func (p *typePrinter) VisitBoolType(*BoolType)               { p.sb.WriteString("bool") }
func (p *typePrinter) VisitIntType(*IntType)                 { p.sb.WriteString("int") }
func (p *typePrinter) VisitRealType(*RealType)               { p.sb.WriteString("real") }

func (p *typePrinter) VisitListType(t *ListType) {
	p.sb.WriteByte('[')
	t.Element.Accept(p)
	p.sb.WriteByte(']')
}

func (p *typePrinter) VisitSetType(t *SetType) {
	p.sb.WriteByte('{')
	t.Element.Accept(p)
	p.sb.WriteByte('}')
}

func (p *typePrinter) VisitTupleType(t *TupleType) {
	p.sb.WriteByte('(')
	for i, f := range t.Fields {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		fmt.Fprintf(&p.sb, "%s: ", f.Name)
		f.Type.Accept(p)
	}
	p.sb.WriteByte(')')
}

func (p *typePrinter) VisitUnionType(t *UnionType) {
	for i, b := range t.Bounds {
		if i > 0 {
			p.sb.WriteByte('|')
		}
		b.Accept(p)
	}
}

func (p *typePrinter) VisitProcessType(t *ProcessType) {
	p.sb.WriteString("process ")
	t.Element.Accept(p)
}

func (p *typePrinter) VisitNamedType(t *NamedType) {
	p.sb.WriteString(t.ID().String())
}
