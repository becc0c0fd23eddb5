// Package automaton encodes possibly cyclic structural types as an
// append-only list of states. A state refers to its children by index, and a
// cycle is an index pointing back at an already allocated state.
package automaton

import (
	"fmt"
	"strconv"
	"strings"
)

// NoContents marks a Term without contents.
const NoContents = -1

// Term kinds understood by the expander and the front-end.
const (
	KindTerm   = "Term" // named term: contents is List[name, operands...]
	KindOr     = "Or"   // contents is Set of alternatives
	KindAnd    = "And"  // contents is Set of conjuncts
	KindNot    = "Not"
	KindVoid   = "Void"
	KindAny    = "Any"
	KindBool   = "Bool"
	KindInt    = "Int"
	KindReal   = "Real"
	KindString = "String"
	KindSet    = "Set"  // contents is List[element]
	KindList   = "List" // contents is List[element]
)

// State is one node of an automaton.
type State interface {
	state()
}

// Constant holds a comparable scalar (string, int64, float64 or bool).
type Constant struct {
	Value any
}

type CompoundKind int

const (
	SetKind CompoundKind = iota
	BagKind
	ListKind
)

func (k CompoundKind) String() string {
	switch k {
	case SetKind:
		return "Set"
	case BagKind:
		return "Bag"
	}
	return "List"
}

// Compound groups children. Order is significant for lists and is preserved
// (but not significant) for sets and bags.
type Compound struct {
	Kind     CompoundKind
	Children []int
}

// Term is a labelled state with optional contents.
type Term struct {
	Kind     string
	Contents int
}

func (Constant) state() {}
func (Compound) state() {}
func (Term) state()     {}

// Automaton is a rooted, indexed list of states.
type Automaton struct {
	states []State
	roots  []int
}

// New wraps states; the slice is owned by the automaton afterwards.
func New(states []State, roots ...int) *Automaton {
	return &Automaton{states: states, roots: append([]int(nil), roots...)}
}

func (a *Automaton) Len() int { return len(a.states) }

func (a *Automaton) Get(i int) State { return a.states[i] }

// Add appends a state and returns its index.
func (a *Automaton) Add(s State) int {
	a.states = append(a.states, s)
	return len(a.states) - 1
}

// Mark registers i as an additional root.
func (a *Automaton) Mark(i int) { a.roots = append(a.roots, i) }

// Root returns the n-th root. Most automata have exactly one.
func (a *Automaton) Root(n int) int { return a.roots[n] }

func (a *Automaton) Roots() []int { return append([]int(nil), a.roots...) }

// States returns a copy of the state list.
func (a *Automaton) States() []State { return append([]State(nil), a.states...) }

// Validate checks that every index refers to an allocated state.
func (a *Automaton) Validate() error {
	inRange := func(i int) bool { return i >= 0 && i < len(a.states) }
	for _, r := range a.roots {
		if !inRange(r) {
			return fmt.Errorf("root %d out of range (%d states)", r, len(a.states))
		}
	}
	for i, s := range a.states {
		switch s := s.(type) {
		case nil:
			return fmt.Errorf("state %d is unset", i)
		case Compound:
			for _, c := range s.Children {
				if !inRange(c) {
					return fmt.Errorf("state %d: child %d out of range", i, c)
				}
			}
		case Term:
			if s.Contents != NoContents && !inRange(s.Contents) {
				return fmt.Errorf("state %d: contents %d out of range", i, s.Contents)
			}
		}
	}
	return nil
}

// Reachable counts the states reachable from the roots.
func (a *Automaton) Reachable() int {
	seen := make(map[int]bool)
	var walk func(int)
	walk = func(i int) {
		if seen[i] {
			return
		}
		seen[i] = true
		switch s := a.states[i].(type) {
		case Compound:
			for _, c := range s.Children {
				walk(c)
			}
		case Term:
			if s.Contents != NoContents {
				walk(s.Contents)
			}
		}
	}
	for _, r := range a.roots {
		walk(r)
	}
	return len(seen)
}

// Equal reports whether a and b accept the same structure from their first
// roots. States reached again along a comparison are assumed equal, which
// makes the check terminate on cycles.
func Equal(a, b *Automaton) bool {
	if len(a.roots) == 0 || len(b.roots) == 0 {
		return len(a.roots) == len(b.roots)
	}
	assumed := make(map[[2]int]bool)
	var eq func(i, j int) bool
	eq = func(i, j int) bool {
		key := [2]int{i, j}
		if assumed[key] {
			return true
		}
		assumed[key] = true
		switch s := a.states[i].(type) {
		case Constant:
			t, ok := b.states[j].(Constant)
			return ok && s.Value == t.Value
		case Compound:
			t, ok := b.states[j].(Compound)
			if !ok || s.Kind != t.Kind || len(s.Children) != len(t.Children) {
				return false
			}
			for k := range s.Children {
				if !eq(s.Children[k], t.Children[k]) {
					return false
				}
			}
			return true
		case Term:
			t, ok := b.states[j].(Term)
			if !ok || s.Kind != t.Kind {
				return false
			}
			if s.Contents == NoContents || t.Contents == NoContents {
				return s.Contents == t.Contents
			}
			return eq(s.Contents, t.Contents)
		}
		return false
	}
	return eq(a.roots[0], b.roots[0])
}

// String renders the automaton from its first root. A state that is the
// target of a back edge is labelled "#i=" and back edges print as "#i".
func (a *Automaton) String() string {
	if len(a.roots) == 0 {
		return "<empty>"
	}
	targets := make(map[int]bool)
	onPath := make(map[int]bool)
	done := make(map[int]bool)
	var scan func(int)
	scan = func(i int) {
		if onPath[i] {
			targets[i] = true
			return
		}
		if done[i] {
			return
		}
		onPath[i] = true
		for _, c := range children(a.states[i]) {
			scan(c)
		}
		onPath[i] = false
		done[i] = true
	}
	scan(a.roots[0])

	var sb strings.Builder
	path := make(map[int]bool)
	var render func(int)
	render = func(i int) {
		if path[i] {
			fmt.Fprintf(&sb, "#%d", i)
			return
		}
		if targets[i] {
			fmt.Fprintf(&sb, "#%d=", i)
		}
		path[i] = true
		defer delete(path, i)
		switch s := a.states[i].(type) {
		case Constant:
			if str, ok := s.Value.(string); ok {
				sb.WriteString(strconv.Quote(str))
			} else {
				fmt.Fprintf(&sb, "%v", s.Value)
			}
		case Compound:
			open, close := "[", "]"
			switch s.Kind {
			case SetKind:
				open, close = "{", "}"
			case BagKind:
				open, close = "{|", "|}"
			}
			sb.WriteString(open)
			for k, c := range s.Children {
				if k > 0 {
					sb.WriteByte(',')
				}
				render(c)
			}
			sb.WriteString(close)
		case Term:
			sb.WriteString(s.Kind)
			if s.Contents != NoContents {
				sb.WriteByte('(')
				render(s.Contents)
				sb.WriteByte(')')
			}
		default:
			sb.WriteString("<nil>")
		}
	}
	render(a.roots[0])
	return sb.String()
}

func children(s State) []int {
	switch s := s.(type) {
	case Compound:
		return s.Children
	case Term:
		if s.Contents != NoContents {
			return []int{s.Contents}
		}
	}
	return nil
}
