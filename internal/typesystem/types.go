// Package typesystem defines the canonical structural types produced by
// resolution, together with the subtype order and least upper bounds.
package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all types in our system. The set of variants is
// closed; every switch over Type in this package handles all of them.
type Type interface {
	String() string
	isType()
}

type Void struct{}
type Any struct{}

// Existential stands for a type that is not known yet.
type Existential struct{}

type Bool struct{}
type Int struct{}
type Real struct{}

type List struct {
	Elem Type
}

type Set struct {
	Elem Type
}

// Tuple is a record of named fields.
type Tuple struct {
	Fields map[string]Type
}

// Union holds at least two distinct non-union bounds, sorted by their string
// form. Build it with NewUnion.
type Union struct {
	Bounds []Type
}

// Named retains the name of a declared type around its expansion.
type Named struct {
	Module string
	Name   string
	Type   Type
}

// Recursive binds Name within Body. A Recursive with a nil Body is a
// reference to the nearest enclosing Recursive of the same Name; outside of
// any such binder it is the placeholder used while a declaration is still
// being expanded.
type Recursive struct {
	Name string
	Body Type
}

type Process struct {
	Elem Type
}

// Fun is a function or, with a Receiver, a method type.
type Fun struct {
	Receiver Type
	Params   []Type
	Ret      Type
}

func (Void) isType()        {}
func (Any) isType()         {}
func (Existential) isType() {}
func (Bool) isType()        {}
func (Int) isType()         {}
func (Real) isType()        {}
func (List) isType()        {}
func (Set) isType()         {}
func (Tuple) isType()       {}
func (Union) isType()       {}
func (Named) isType()       {}
func (Recursive) isType()   {}
func (Process) isType()     {}
func (Fun) isType()         {}

func (Void) String() string        { return "void" }
func (Any) String() string         { return "any" }
func (Existential) String() string { return "?" }
func (Bool) String() string        { return "bool" }
func (Int) String() string         { return "int" }
func (Real) String() string        { return "real" }

func (t List) String() string    { return "[" + t.Elem.String() + "]" }
func (t Set) String() string     { return "{" + t.Elem.String() + "}" }
func (t Process) String() string { return "process<" + t.Elem.String() + ">" }

func (t Tuple) String() string {
	keys := t.FieldNames()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k])
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FieldNames returns the field names in sorted order.
func (t Tuple) FieldNames() []string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t Union) String() string {
	parts := make([]string, len(t.Bounds))
	for i, b := range t.Bounds {
		if _, ok := b.(Fun); ok {
			parts[i] = "(" + b.String() + ")"
		} else {
			parts[i] = b.String()
		}
	}
	return strings.Join(parts, "|")
}

func (t Named) String() string {
	if t.Module == "" {
		return t.Name
	}
	return t.Module + ":" + t.Name
}

func (t Recursive) String() string {
	if t.Body == nil {
		return t.Name
	}
	return t.Name + "<" + t.Body.String() + ">"
}

func (t Fun) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	s := fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), t.Ret)
	if t.Receiver != nil {
		s = t.Receiver.String() + "::" + s
	}
	return s
}

// Equal is structural equality. Union bounds compare as sets and tuple
// fields by name.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Void, Any, Existential, Bool, Int, Real:
		return a == b
	case List:
		y, ok := b.(List)
		return ok && Equal(x.Elem, y.Elem)
	case Set:
		y, ok := b.(Set)
		return ok && Equal(x.Elem, y.Elem)
	case Process:
		y, ok := b.(Process)
		return ok && Equal(x.Elem, y.Elem)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, ft := range x.Fields {
			yt, ok := y.Fields[k]
			if !ok || !Equal(ft, yt) {
				return false
			}
		}
		return true
	case Union:
		y, ok := b.(Union)
		if !ok || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		return containsAll(x.Bounds, y.Bounds) && containsAll(y.Bounds, x.Bounds)
	case Named:
		y, ok := b.(Named)
		return ok && x.Module == y.Module && x.Name == y.Name && Equal(x.Type, y.Type)
	case Recursive:
		y, ok := b.(Recursive)
		return ok && x.Name == y.Name && Equal(x.Body, y.Body)
	case Fun:
		y, ok := b.(Fun)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		if !Equal(x.Receiver, y.Receiver) || !Equal(x.Ret, y.Ret) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("typesystem: unhandled type %T", a))
}

func containsAll(in, want []Type) bool {
	for _, w := range want {
		found := false
		for _, t := range in {
			if Equal(t, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
