package typesystem

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestLUB(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want string
	}{
		{"void identity", Void{}, Int{}, "int"},
		{"subtype", Int{}, Real{}, "real"},
		{"unrelated", Int{}, Bool{}, "bool|int"},
		{"lists joined", List{Elem: Int{}}, List{Elem: Bool{}}, "[bool|int]"},
		{"list and set", List{Elem: Int{}}, Set{Elem: Bool{}}, "{bool|int}"},
		{"tuples joined", Tuple{Fields: map[string]Type{"a": Int{}}}, Tuple{Fields: map[string]Type{"a": Bool{}}}, "(a: bool|int)"},
		{"subsumed bound pruned", NewUnion(Int{}, Bool{}), Real{}, "bool|real"},
		{"equal", tree, tree, tree.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LUB(tt.a, tt.b)
			if got.String() != tt.want {
				t.Errorf("LUB(%s, %s) = %s, want %s\n%s", tt.a, tt.b, got, tt.want, spew.Sdump(got))
			}
		})
	}
}

func TestLUBIsUpperBound(t *testing.T) {
	types := []Type{
		Void{}, Bool{}, Int{}, Real{},
		List{Elem: Int{}}, Set{Elem: Real{}}, Process{Elem: Bool{}},
		Tuple{Fields: map[string]Type{"x": Int{}}},
		NewUnion(Int{}, Bool{}),
		tree,
	}
	for _, a := range types {
		for _, b := range types {
			l := LUB(a, b)
			if !IsSubtype(a, l) || !IsSubtype(b, l) {
				t.Errorf("LUB(%s, %s) = %s is not an upper bound", a, b, l)
			}
		}
	}
}

func TestLUBOfMutualSubtypes(t *testing.T) {
	pairs := []struct {
		name string
		a, b Type
	}{
		{"int and real bounds", NewUnion(Int{}, Real{}), Real{}},
		{"void bound", NewUnion(Void{}, Bool{}), Bool{}},
		{"list under set", NewUnion(List{Elem: Int{}}, Set{Elem: Real{}}), Set{Elem: Real{}}},
		{"nested", List{Elem: NewUnion(Int{}, Real{}, Bool{})}, List{Elem: NewUnion(Bool{}, Real{})}},
		{"recursive", tree, tree},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			if !IsSubtype(tt.a, tt.b) || !IsSubtype(tt.b, tt.a) {
				t.Fatalf("%s and %s are not mutual subtypes", tt.a, tt.b)
			}
			got := LUB(tt.a, tt.b)
			if !Equal(got, tt.a) || !Equal(got, tt.b) {
				t.Errorf("LUB(%s, %s) = %s, want it equal to both\n%s", tt.a, tt.b, got, spew.Sdump(got))
			}
		})
	}
}
