package typesystem

// IsSubtype reports whether sub ⊑ sup.
//
// Recursive types are unfolded on demand. A pair of types met again while it
// is still being compared is assumed to be related (co-induction), so the
// check terminates on cyclic types.
func IsSubtype(sub, sup Type) bool {
	s := &subtyper{assumed: make(map[string]bool)}
	return s.check(sub, sup)
}

type subtyper struct {
	assumed map[string]bool
	// opaque disables unfolding; recursive types then only relate to
	// themselves, Void and Any.
	opaque bool
}

func (s *subtyper) check(sub, sup Type) bool {
	if Equal(sub, sup) {
		return true
	}
	if _, ok := sup.(Any); ok {
		return true
	}
	if _, ok := sub.(Void); ok {
		return true
	}

	key := sub.String() + " <: " + sup.String()
	if s.assumed[key] {
		return true
	}
	s.assumed[key] = true
	defer delete(s.assumed, key)

	if n, ok := sub.(Named); ok {
		return s.check(n.Type, sup)
	}
	if n, ok := sup.(Named); ok {
		return s.check(sub, n.Type)
	}
	if r, ok := sub.(Recursive); ok && r.Body != nil && !s.opaque {
		return s.check(Unfold(r), sup)
	}
	if r, ok := sup.(Recursive); ok && r.Body != nil && !s.opaque {
		return s.check(sub, Unfold(r))
	}

	if u, ok := sub.(Union); ok {
		for _, b := range u.Bounds {
			if !s.check(b, sup) {
				return false
			}
		}
		return true
	}
	if u, ok := sup.(Union); ok {
		for _, b := range u.Bounds {
			if s.check(sub, b) {
				return true
			}
		}
		return false
	}

	switch a := sub.(type) {
	case Int:
		_, ok := sup.(Real)
		return ok
	case List:
		switch b := sup.(type) {
		case List:
			return s.check(a.Elem, b.Elem)
		case Set:
			return s.check(a.Elem, b.Elem)
		}
	case Set:
		if b, ok := sup.(Set); ok {
			return s.check(a.Elem, b.Elem)
		}
	case Process:
		if b, ok := sup.(Process); ok {
			return s.check(a.Elem, b.Elem)
		}
	case Tuple:
		b, ok := sup.(Tuple)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for k, ft := range a.Fields {
			bt, ok := b.Fields[k]
			if !ok || !s.check(ft, bt) {
				return false
			}
		}
		return true
	case Fun:
		b, ok := sup.(Fun)
		if !ok || len(a.Params) != len(b.Params) {
			return false
		}
		switch {
		case a.Receiver == nil && b.Receiver == nil:
		case a.Receiver != nil && b.Receiver != nil:
			if !s.check(b.Receiver, a.Receiver) {
				return false
			}
		default:
			return false
		}
		for i := range a.Params {
			if !s.check(b.Params[i], a.Params[i]) {
				return false
			}
		}
		return s.check(a.Ret, b.Ret)
	}
	return false
}
