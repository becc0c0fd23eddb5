package automaton

// Builder assembles an automaton state by state.
type Builder struct {
	states []State
}

func (b *Builder) Len() int { return len(b.states) }

func (b *Builder) Add(s State) int {
	b.states = append(b.states, s)
	return len(b.states) - 1
}

// Reserve allocates a slot to be filled later with Set.
func (b *Builder) Reserve() int { return b.Add(nil) }

func (b *Builder) Set(i int, s State) { b.states[i] = s }

// Truncate drops every state from index n on.
func (b *Builder) Truncate(n int) { b.states = b.states[:n] }

func (b *Builder) Constant(v any) int { return b.Add(Constant{Value: v}) }

func (b *Builder) Leaf(kind string) int { return b.Add(Term{Kind: kind, Contents: NoContents}) }

func (b *Builder) Term(kind string, contents int) int {
	return b.Add(Term{Kind: kind, Contents: contents})
}

func (b *Builder) Compound(kind CompoundKind, children ...int) int {
	return b.Add(Compound{Kind: kind, Children: append([]int(nil), children...)})
}

// Ref builds a named term Term(List[name, operands...]). Without operands it
// is a plain reference to a term or class called name.
func (b *Builder) Ref(name string, operands ...int) int {
	elems := append([]int{b.Constant(name)}, operands...)
	return b.Term(KindTerm, b.Compound(ListKind, elems...))
}

// Import copies the subgraph of a reachable from node and returns the index
// of its copy. Cycles are preserved.
func (b *Builder) Import(a *Automaton, node int) int {
	return b.importState(a, node, make(map[int]int))
}

func (b *Builder) importState(a *Automaton, node int, copied map[int]int) int {
	if idx, ok := copied[node]; ok {
		return idx
	}
	idx := b.Reserve()
	copied[node] = idx
	switch s := a.states[node].(type) {
	case Constant:
		b.states[idx] = s
	case Compound:
		kids := make([]int, len(s.Children))
		for i, c := range s.Children {
			kids[i] = b.importState(a, c, copied)
		}
		b.states[idx] = Compound{Kind: s.Kind, Children: kids}
	case Term:
		contents := NoContents
		if s.Contents != NoContents {
			contents = b.importState(a, s.Contents, copied)
		}
		b.states[idx] = Term{Kind: s.Kind, Contents: contents}
	}
	return idx
}

// Build finishes the automaton with the given root.
func (b *Builder) Build(root int) *Automaton {
	return New(b.states, root)
}

// Or returns an automaton whose root is the union of the roots of x and y.
// Alternatives that are themselves unions are flattened.
func Or(x, y *Automaton) *Automaton {
	b := &Builder{}
	var alts []int
	for _, in := range []*Automaton{x, y} {
		root := in.Root(0)
		if t, ok := in.states[root].(Term); ok && t.Kind == KindOr && t.Contents != NoContents {
			if set, ok := in.states[t.Contents].(Compound); ok {
				for _, c := range set.Children {
					alts = append(alts, b.Import(in, c))
				}
				continue
			}
		}
		alts = append(alts, b.Import(in, root))
	}
	return b.Build(b.Term(KindOr, b.Compound(SetKind, alts...)))
}

// Reference inspects node as a named term. It returns the name and the
// number of operands following it.
func Reference(a *Automaton, node int) (name string, operands int, ok bool) {
	t, isTerm := a.states[node].(Term)
	if !isTerm || t.Kind != KindTerm || t.Contents == NoContents {
		return "", 0, false
	}
	list, isList := a.states[t.Contents].(Compound)
	if !isList || list.Kind != ListKind || len(list.Children) == 0 {
		return "", 0, false
	}
	c, isConst := a.states[list.Children[0]].(Constant)
	if !isConst {
		return "", 0, false
	}
	name, ok = c.Value.(string)
	return name, len(list.Children) - 1, ok
}
