package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/rectype/internal/token"
)

func pos(file string, line, col int) token.Position {
	return token.Position{File: file, Line: line, Column: col}
}

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		err  *DiagnosticError
		want string
	}{
		{NewTypeMismatch(pos("a.yaml", 3, 7), "int", "bool"), "a.yaml:3:7: [T004] expected type int, found bool"},
		{NewUnknownVariable(pos("", 2, 1), "x"), "2:1: [T005] unknown variable x"},
		{NewUnresolvedReference(pos("b.yaml", 0, 0), "m:T"), "b.yaml: [T003] unable to resolve m:T"},
		{NewDuplicateDeclaration(token.Position{}, "T"), "[T001] T is already defined"},
		{NewAmbiguousOverload(pos("a.yaml", 1, 1), "f", 0), "a.yaml:1:1: [T006] no applicable signature for f"},
		{NewAmbiguousOverload(pos("a.yaml", 1, 1), "f", 2), "a.yaml:1:1: [T006] ambiguous call to f (2 equally specific signatures)"},
		{NewMacroUsedWithOperand(pos("s.yaml", 4, 2), "Empty"), "s.yaml:4:2: [T007] cannot use Empty with an operand"},
		{NewOpennessViolation(pos("s.yaml", 9, 2), "Shape", "is closed"), "s.yaml:9:2: [T002] class Shape is closed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCodeNames(t *testing.T) {
	if got := ErrT004.Name(); got != "TypeMismatch" {
		t.Errorf("ErrT004.Name() = %q", got)
	}
	if got := ErrorCode("X999").Name(); got != "X999" {
		t.Errorf("unknown code name = %q", got)
	}
}

func TestAs(t *testing.T) {
	de := NewUnknownVariable(pos("a.yaml", 1, 1), "x")
	wrapped := fmt.Errorf("checking: %w", de)
	got, ok := As(wrapped)
	if !ok || got != de {
		t.Fatalf("As(wrapped) = %v, %v", got, ok)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As found a diagnostic in a plain error")
	}
}

func TestSetDeduplicatesAndSorts(t *testing.T) {
	var s Set
	s.Add(nil)
	s.Add(NewTypeMismatch(pos("b.yaml", 1, 1), "int", "bool"))
	s.Add(NewUnknownVariable(pos("a.yaml", 5, 3), "y"))
	s.Add(NewUnknownVariable(pos("a.yaml", 5, 3), "y"))
	s.AddAll([]*DiagnosticError{
		NewUnknownVariable(pos("a.yaml", 2, 9), "x"),
		NewAmbiguousOverload(pos("a.yaml", 5, 3), "f", 0),
	})

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	sorted := s.Sorted()
	want := []string{
		"a.yaml:2:9: [T005] unknown variable x",
		"a.yaml:5:3: [T005] unknown variable y",
		"a.yaml:5:3: [T006] no applicable signature for f",
		"b.yaml:1:1: [T004] expected type int, found bool",
	}
	for i, e := range sorted {
		if e.Error() != want[i] {
			t.Errorf("sorted[%d] = %q, want %q\n%s", i, e.Error(), want[i], spew.Sdump(sorted))
		}
	}
}

func TestSortBreaksTiesOnMessage(t *testing.T) {
	at := pos("a.yaml", 3, 1)
	for i := 0; i < 10; i++ {
		var s Set
		s.Add(NewTypeMismatch(at, "int", "bool"))
		s.Add(NewTypeMismatch(at, "bool", "real"))
		s.Add(NewTypeMismatch(at, "[int]", "int"))
		sorted := s.Sorted()
		want := []string{
			"expected type [int], found int",
			"expected type bool, found real",
			"expected type int, found bool",
		}
		for k, e := range sorted {
			if e.Msg != want[k] {
				t.Fatalf("sorted[%d] = %q, want %q\n%s", k, e.Msg, want[k], spew.Sdump(sorted))
			}
		}
	}
}
