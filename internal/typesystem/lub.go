package typesystem

// LUB returns the least upper bound of a and b under the subtype order.
// Lists, sets, processes and tuples of matching shape are joined
// element-wise; anything else becomes a union from which bounds subsumed
// by another bound are dropped.
func LUB(a, b Type) Type {
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}

	switch x := Effective(a).(type) {
	case List:
		switch y := Effective(b).(type) {
		case List:
			return List{Elem: LUB(x.Elem, y.Elem)}
		case Set:
			return Set{Elem: LUB(x.Elem, y.Elem)}
		}
	case Set:
		switch y := Effective(b).(type) {
		case Set:
			return Set{Elem: LUB(x.Elem, y.Elem)}
		case List:
			return Set{Elem: LUB(x.Elem, y.Elem)}
		}
	case Process:
		if y, ok := Effective(b).(Process); ok {
			return Process{Elem: LUB(x.Elem, y.Elem)}
		}
	case Tuple:
		if y, ok := Effective(b).(Tuple); ok && sameFields(x, y) {
			fields := make(map[string]Type, len(x.Fields))
			for k, ft := range x.Fields {
				fields[k] = LUB(ft, y.Fields[k])
			}
			return Tuple{Fields: fields}
		}
	}

	return NewUnion(prune(append(append([]Type{}, Bounds(a)...), Bounds(b)...), IsSubtype)...)
}

// prune drops every bound that is a subtype of another kept bound. Of two
// mutually related bounds the first one wins.
func prune(bounds []Type, isSubtype func(sub, sup Type) bool) []Type {
	kept := make([]Type, 0, len(bounds))
	for i, t := range bounds {
		subsumed := false
		for j, u := range bounds {
			if i == j || !isSubtype(t, u) {
				continue
			}
			if !isSubtype(u, t) || j < i {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, t)
		}
	}
	return kept
}

func sameFields(x, y Tuple) bool {
	if len(x.Fields) != len(y.Fields) {
		return false
	}
	for k := range x.Fields {
		if _, ok := y.Fields[k]; !ok {
			return false
		}
	}
	return true
}
