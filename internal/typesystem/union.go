package typesystem

import "sort"

// NewUnion creates a normalized union type.
// It flattens nested unions, removes structural duplicates, drops bounds
// subsumed by another bound, and sorts bounds. A union of a single distinct
// bound is that bound; an empty union is Void.
func NewUnion(types ...Type) Type {
	flat := make([]Type, 0, len(types))
	for _, t := range types {
		if u, ok := t.(Union); ok {
			flat = append(flat, u.Bounds...)
		} else {
			flat = append(flat, t)
		}
	}

	unique := make([]Type, 0, len(flat))
	for _, t := range flat {
		dup := false
		for _, u := range unique {
			if Equal(t, u) {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, t)
		}
	}

	unique = prune(unique, subsumes)

	switch len(unique) {
	case 0:
		return Void{}
	case 1:
		return unique[0]
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})
	return Union{Bounds: unique}
}

// Bounds returns the bounds of a union, or t itself as the only bound.
func Bounds(t Type) []Type {
	if u, ok := t.(Union); ok {
		return u.Bounds
	}
	return []Type{t}
}

// subsumes is the subtype check used to canonicalize unions. Recursive types
// are compared without unfolding, since unfolding builds unions itself.
func subsumes(sub, sup Type) bool {
	s := &subtyper{assumed: make(map[string]bool), opaque: true}
	return s.check(sub, sup)
}
