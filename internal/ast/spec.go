package ast

import "github.com/funvibe/rectype/internal/automaton"

// SpecFile holds term and class declarations. Includes form a graph that
// may contain the same file more than once.
type SpecFile struct {
	Package  string
	Name     string
	Filename string
	Decls    []SpecDecl
}

type SpecDecl interface {
	Node
	Accept(v SpecDeclVisitor)
}

// SpecDeclVisitor must handle every SpecDecl variant.
type SpecDeclVisitor interface {
	VisitIncludeDecl(*IncludeDecl)
	VisitTermDecl(*TermDecl)
	VisitClassDecl(*ClassDecl)
}

// IncludeDecl pulls in the declarations of another spec file.
type IncludeDecl struct {
	Base
	Path string
	File *SpecFile
}

// TermDecl declares a term whose type is encoded as an automaton.
type TermDecl struct {
	Base
	Name string
	Type *automaton.Automaton
}

// ClassDecl declares (or, when open, extends) a named union of term types.
type ClassDecl struct {
	Base
	Name   string
	Body   *automaton.Automaton
	IsOpen bool
}

func (d *IncludeDecl) Accept(v SpecDeclVisitor) { v.VisitIncludeDecl(d) }
func (d *TermDecl) Accept(v SpecDeclVisitor)    { v.VisitTermDecl(d) }
func (d *ClassDecl) Accept(v SpecDeclVisitor)   { v.VisitClassDecl(d) }
