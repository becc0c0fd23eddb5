package typesystem

import (
	"fmt"
	"strconv"
)

// Placeholder returns the unset Recursive used to break a cycle on name
// while its declaration is being expanded.
func Placeholder(name string) Recursive { return Recursive{Name: name} }

// IsOpenRecursive reports whether t refers to the placeholder for name
// outside of any Recursive binder for name, i.e. whether t must be closed
// with Recursive{name, t} to be complete.
func IsOpenRecursive(name string, t Type) bool {
	return freeIn(t, func(n string) bool { return n == name })
}

// IsExistential reports whether t contains an Existential or any placeholder
// that is not bound by an enclosing Recursive.
func IsExistential(t Type) bool {
	found := false
	walk(t, nil, func(t Type, bound map[string]int) bool {
		switch x := t.(type) {
		case Existential:
			found = true
		case Recursive:
			if x.Body == nil && bound[x.Name] == 0 {
				found = true
			}
		}
		return !found
	})
	return found
}

func freeIn(t Type, match func(string) bool) bool {
	found := false
	walk(t, nil, func(t Type, bound map[string]int) bool {
		if r, ok := t.(Recursive); ok && r.Body == nil && bound[r.Name] == 0 && match(r.Name) {
			found = true
		}
		return !found
	})
	return found
}

// walk visits t depth first, tracking the Recursive binders in scope.
// Returning false from visit stops the descent below that node.
func walk(t Type, bound map[string]int, visit func(Type, map[string]int) bool) {
	if t == nil {
		return
	}
	if bound == nil {
		bound = make(map[string]int)
	}
	if !visit(t, bound) {
		return
	}
	switch x := t.(type) {
	case Void, Any, Existential, Bool, Int, Real:
	case List:
		walk(x.Elem, bound, visit)
	case Set:
		walk(x.Elem, bound, visit)
	case Process:
		walk(x.Elem, bound, visit)
	case Tuple:
		for _, k := range x.FieldNames() {
			walk(x.Fields[k], bound, visit)
		}
	case Union:
		for _, b := range x.Bounds {
			walk(b, bound, visit)
		}
	case Named:
		walk(x.Type, bound, visit)
	case Recursive:
		if x.Body != nil {
			bound[x.Name]++
			walk(x.Body, bound, visit)
			bound[x.Name]--
		}
	case Fun:
		walk(x.Receiver, bound, visit)
		for _, p := range x.Params {
			walk(p, bound, visit)
		}
		walk(x.Ret, bound, visit)
	default:
		panic(fmt.Sprintf("typesystem: unhandled type %T", t))
	}
}

// Unfold replaces the back references in r's body with r itself. The result
// is a finite type equivalent to r.
func Unfold(r Recursive) Type {
	if r.Body == nil {
		return r
	}
	return Substitute(r.Body, r.Name, r)
}

// Substitute replaces every free reference to name in t with repl.
func Substitute(t Type, name string, repl Type) Type {
	switch x := t.(type) {
	case Void, Any, Existential, Bool, Int, Real:
		return t
	case List:
		return List{Elem: Substitute(x.Elem, name, repl)}
	case Set:
		return Set{Elem: Substitute(x.Elem, name, repl)}
	case Process:
		return Process{Elem: Substitute(x.Elem, name, repl)}
	case Tuple:
		fields := make(map[string]Type, len(x.Fields))
		for k, f := range x.Fields {
			fields[k] = Substitute(f, name, repl)
		}
		return Tuple{Fields: fields}
	case Union:
		bounds := make([]Type, len(x.Bounds))
		for i, b := range x.Bounds {
			bounds[i] = Substitute(b, name, repl)
		}
		return NewUnion(bounds...)
	case Named:
		return Named{Module: x.Module, Name: x.Name, Type: Substitute(x.Type, name, repl)}
	case Recursive:
		if x.Body == nil {
			if x.Name == name {
				return repl
			}
			return x
		}
		if x.Name == name {
			return x // shadowed
		}
		return Recursive{Name: x.Name, Body: Substitute(x.Body, name, repl)}
	case Fun:
		var recv Type
		if x.Receiver != nil {
			recv = Substitute(x.Receiver, name, repl)
		}
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = Substitute(p, name, repl)
		}
		return Fun{Receiver: recv, Params: params, Ret: Substitute(x.Ret, name, repl)}
	}
	panic(fmt.Sprintf("typesystem: unhandled type %T", t))
}

// Effective strips Named wrappers and unfolds Recursive binders until the
// outermost constructor is structural. A binder that unfolds to itself
// without passing through a constructor denotes no values and yields Void.
func Effective(t Type) Type {
	seen := make(map[string]bool)
	for {
		switch x := t.(type) {
		case Named:
			t = x.Type
		case Recursive:
			if x.Body == nil {
				return t
			}
			if seen[x.Name] {
				return Void{}
			}
			seen[x.Name] = true
			t = Unfold(x)
		default:
			return t
		}
	}
}

// RecursiveNames lists the names bound by Recursive nodes in t, in the order
// they are first met.
func RecursiveNames(t Type) []string {
	var names []string
	seen := make(map[string]bool)
	walk(t, nil, func(t Type, _ map[string]int) bool {
		if r, ok := t.(Recursive); ok && r.Body != nil && !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
		return true
	})
	return names
}

// RenameRecursive renames Recursive binders and their references.
func RenameRecursive(t Type, binding map[string]string) Type {
	rename := func(n string) string {
		if m, ok := binding[n]; ok {
			return m
		}
		return n
	}
	var rec func(Type) Type
	rec = func(t Type) Type {
		switch x := t.(type) {
		case Void, Any, Existential, Bool, Int, Real:
			return t
		case List:
			return List{Elem: rec(x.Elem)}
		case Set:
			return Set{Elem: rec(x.Elem)}
		case Process:
			return Process{Elem: rec(x.Elem)}
		case Tuple:
			fields := make(map[string]Type, len(x.Fields))
			for k, f := range x.Fields {
				fields[k] = rec(f)
			}
			return Tuple{Fields: fields}
		case Union:
			bounds := make([]Type, len(x.Bounds))
			for i, b := range x.Bounds {
				bounds[i] = rec(b)
			}
			return NewUnion(bounds...)
		case Named:
			return Named{Module: x.Module, Name: x.Name, Type: rec(x.Type)}
		case Recursive:
			if x.Body == nil {
				return Recursive{Name: rename(x.Name)}
			}
			return Recursive{Name: rename(x.Name), Body: rec(x.Body)}
		case Fun:
			var recv Type
			if x.Receiver != nil {
				recv = rec(x.Receiver)
			}
			params := make([]Type, len(x.Params))
			for i, p := range x.Params {
				params[i] = rec(p)
			}
			return Fun{Receiver: recv, Params: params, Ret: rec(x.Ret)}
		}
		panic(fmt.Sprintf("typesystem: unhandled type %T", t))
	}
	return rec(t)
}

// Readable renames recursive binders to short letters (U, V, W, ... then
// U1, V1, ...) for display.
func Readable(t Type) Type {
	names := RecursiveNames(t)
	binding := make(map[string]string, len(names))
	for i, n := range names {
		letter := string(rune('A' + (i+20)%26))
		if num := i / 26; num > 0 {
			letter += strconv.Itoa(num)
		}
		binding[n] = letter
	}
	return RenameRecursive(t, binding)
}
