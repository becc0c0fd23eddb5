package yamlsrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/rectype/internal/ast"
	"github.com/funvibe/rectype/internal/expansion"
)

func TestParseSpec(t *testing.T) {
	src := `
package: geometry
decls:
  - term: Circle
    type: real
  - term: Empty
  - class: Shape
    open: true
    type: [Circle, {list: Shape}]
  - term: Pair
    type: {ref: Shape, args: [int]}
  - class: Odd
    type: {and: [int, {not: {set: string}}]}
`
	spec, errs := ParseSpec([]byte(src), "/tmp/shapes.yaml")
	expectNoErrors(t, errs)
	if spec.Package != "geometry" || spec.Name != "shapes" {
		t.Errorf("package %q name %q", spec.Package, spec.Name)
	}

	want := []string{
		"Circle(Real)",
		"Empty",
		`Or({Term(["Circle"]),List([Term(["Shape"])])})`,
		`Pair(Term(["Shape",Int]))`,
		"And({Int,Not(Set([String]))})",
	}
	if len(spec.Decls) != len(want) {
		t.Fatalf("expected %d declarations, got %s", len(want), spew.Sdump(spec.Decls))
	}
	for i, d := range spec.Decls {
		var got string
		switch d := d.(type) {
		case *ast.TermDecl:
			got = d.Type.String()
		case *ast.ClassDecl:
			got = d.Body.String()
		}
		if got != want[i] {
			t.Errorf("declaration %d = %s, want %s", i, got, want[i])
		}
	}
	if shape := spec.Decls[2].(*ast.ClassDecl); !shape.IsOpen {
		t.Errorf("Shape should be open")
	}
}

func TestParseSpecErrors(t *testing.T) {
	src := `decls:
  - term: A
    type: {tree: int}
  - class: B
  - term: C
`
	spec, errs := ParseSpec([]byte(src), "bad.yaml")
	expectError(t, errs, 3, "unknown pattern")
	expectError(t, errs, 4, "missing")
	if len(spec.Decls) != 1 {
		t.Errorf("expected only C to survive, got %s", spew.Sdump(spec.Decls))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpecLoaderIncludes(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.yaml", `
decls:
  - include: shapes.yaml
  - include: common.yaml
  - term: T
    type: Tree
`)
	writeFile(t, dir, "shapes.yaml", `
decls:
  - include: common.yaml
  - include: root.yaml
  - class: Tree
    type: [int, {list: Tree}]
`)
	writeFile(t, dir, "common.yaml", `
decls:
  - term: Unit
`)

	l := NewSpecLoader(nil)
	spec, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	expectNoErrors(t, l.Errors())
	if len(l.Files()) != 3 {
		t.Errorf("expected 3 files, got %v", l.Files())
	}

	shapes := spec.Decls[0].(*ast.IncludeDecl).File
	common := spec.Decls[1].(*ast.IncludeDecl).File
	if shapes == nil || common == nil {
		t.Fatalf("includes not linked: %s", spew.Sdump(spec.Decls[:2]))
	}
	if shapes.Decls[0].(*ast.IncludeDecl).File != common {
		t.Errorf("common.yaml loaded twice")
	}
	if shapes.Decls[1].(*ast.IncludeDecl).File != spec {
		t.Errorf("include cycle not closed")
	}

	again, err := l.Load(root)
	if err != nil || again != spec {
		t.Errorf("reloading should return the cached file")
	}

	x := expansion.New(nil)
	expectNoErrors(t, x.Expand(spec))
	terms := x.Terms()
	if got := terms["T"].String(); !strings.HasPrefix(got, "T(#") {
		t.Errorf("T = %s, want a cyclic expansion", got)
	}
	if got := terms["Unit"].String(); got != "Unit" {
		t.Errorf("Unit = %s", got)
	}
}

func TestSpecLoaderMissingInclude(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "root.yaml", "decls:\n  - include: nowhere.yaml\n  - term: A\n")

	l := NewSpecLoader(nil)
	spec, err := l.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	expectError(t, l.Errors(), 2, "cannot include nowhere.yaml")
	if spec.Decls[0].(*ast.IncludeDecl).File != nil {
		t.Errorf("missing include should stay unlinked")
	}

	if _, err := l.Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Errorf("expected an error for a missing root file")
	}
}
