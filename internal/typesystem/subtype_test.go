package typesystem

import "testing"

func TestIsSubtype(t *testing.T) {
	intBool := NewUnion(Int{}, Bool{})
	fn := func(ret Type, params ...Type) Fun { return Fun{Params: params, Ret: ret} }
	tuple := func(kv ...any) Tuple {
		fields := make(map[string]Type)
		for i := 0; i < len(kv); i += 2 {
			fields[kv[i].(string)] = kv[i+1].(Type)
		}
		return Tuple{Fields: fields}
	}

	tests := []struct {
		name     string
		sub, sup Type
		want     bool
	}{
		{"reflexive", Bool{}, Bool{}, true},
		{"int below real", Int{}, Real{}, true},
		{"real not below int", Real{}, Int{}, false},
		{"void is bottom", Void{}, List{Elem: Int{}}, true},
		{"any is top", tree, Any{}, true},
		{"any below nothing else", Any{}, Int{}, false},
		{"existential only below itself", Existential{}, Int{}, false},
		{"existential reflexive", Existential{}, Existential{}, true},
		{"list covariant", List{Elem: Int{}}, List{Elem: Real{}}, true},
		{"list below set", List{Elem: Int{}}, Set{Elem: Real{}}, true},
		{"set not below list", Set{Elem: Int{}}, List{Elem: Int{}}, false},
		{"process covariant", Process{Elem: Int{}}, Process{Elem: Real{}}, true},
		{"bound below union", Int{}, intBool, true},
		{"union below union", intBool, NewUnion(Real{}, Bool{}), true},
		{"union not below bound", intBool, Int{}, false},
		{"tuple depth", tuple("a", Int{}), tuple("a", Real{}), true},
		{"tuple field names", tuple("a", Int{}), tuple("b", Int{}), false},
		{"tuple no width", tuple("a", Int{}), tuple("a", Int{}, "b", Int{}), false},
		{"function contravariant params", fn(Int{}, Real{}), fn(Real{}, Int{}), true},
		{"function covariant result", fn(Real{}, Int{}), fn(Int{}, Real{}), false},
		{"function arity", fn(Int{}), fn(Int{}, Int{}), false},
		{"method vs function", Fun{Receiver: Process{Elem: Int{}}, Ret: Void{}}, fn(Void{}), false},
		{"named transparent left", Named{Module: "m", Name: "I", Type: Int{}}, Real{}, true},
		{"named transparent right", Int{}, Named{Module: "m", Name: "R", Type: Real{}}, true},
		{"recursive reflexive", tree, tree, true},
		{"recursive alpha equivalent", tree, otherTree, true},
		{"recursive unfold right", List{Elem: List{Elem: Int{}}}, tree, true},
		{"recursive unfold left", tree, NewUnion(Int{}, List{Elem: Any{}}), true},
		{"recursive not below element", tree, Int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubtype(tt.sub, tt.sup); got != tt.want {
				t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub, tt.sup, got, tt.want)
			}
		})
	}
}

func TestIsSubtypeTransitive(t *testing.T) {
	chain := []Type{
		Void{},
		List{Elem: Int{}},
		List{Elem: Real{}},
		Set{Elem: Real{}},
		NewUnion(Set{Elem: Real{}}, Bool{}),
		Any{},
	}
	for i := range chain {
		for j := i; j < len(chain); j++ {
			if !IsSubtype(chain[i], chain[j]) {
				t.Errorf("IsSubtype(%s, %s) = false", chain[i], chain[j])
			}
		}
	}
}
