package modules

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/rectype/internal/typesystem"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "store", "modules.db"), nil)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func publishVersion(t *testing.T, s *Store, version string, elem typesystem.Type) *Module {
	t.Helper()
	m := NewModule("geo")
	m.Version = version
	m.AddType("list", typesystem.List{Elem: elem}, nil)
	if _, err := s.Publish(context.Background(), m); err != nil {
		t.Fatalf("Publish(%s): %v", version, err)
	}
	return m
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	tree := typesystem.Recursive{
		Name: "geo:Tree",
		Body: typesystem.NewUnion(typesystem.Int{}, typesystem.List{Elem: typesystem.Recursive{Name: "geo:Tree"}}),
	}
	m := NewModule("geo")
	m.Version = "1.0.0"
	m.AddType("Tree", tree, nil)
	m.AddMethod("size", typesystem.Fun{Params: []typesystem.Type{tree}, Ret: typesystem.Int{}})
	m.AddMethod("size", typesystem.Fun{
		Receiver: typesystem.Process{Elem: tree},
		Params:   []typesystem.Type{},
		Ret:      typesystem.Int{},
	})
	buildID, err := s.Publish(context.Background(), m)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, err := s.LoadModule("geo")
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if got.BuildID != buildID || got.Version != "1.0.0" {
		t.Errorf("loaded build %s version %s, want %s 1.0.0", got.BuildID, got.Version, buildID)
	}
	if def, ok := got.Type("Tree"); !ok || !typesystem.Equal(def.Type, tree) {
		t.Errorf("Tree = %s", spew.Sdump(def))
	}
	sigs := got.MethodSignatures("size")
	if len(sigs) != 2 {
		t.Fatalf("got %d signatures, want 2", len(sigs))
	}
	for i, want := range m.MethodSignatures("size") {
		if !typesystem.Equal(sigs[i], want) {
			t.Errorf("signature %d = %s, want %s", i, sigs[i], want)
		}
	}
}

func TestStoreVersionSelection(t *testing.T) {
	s := openTestStore(t)
	publishVersion(t, s, "1.0.0", typesystem.Int{})
	publishVersion(t, s, "1.2.0", typesystem.Real{})
	publishVersion(t, s, "2.0.0", typesystem.Bool{})

	versions, err := s.Versions(context.Background(), "geo")
	if err != nil || len(versions) != 3 || versions[0].String() != "1.0.0" {
		t.Fatalf("Versions() = %v, %v", versions, err)
	}

	got, err := s.LoadModule("geo")
	if err != nil || got.Version != "2.0.0" {
		t.Fatalf("unconstrained load = %v, %v", got, err)
	}

	if err := s.Require("geo", ">=1.0.0, <2.0.0"); err != nil {
		t.Fatal(err)
	}
	got, err = s.LoadModule("geo")
	if err != nil || got.Version != "1.2.0" {
		t.Fatalf("constrained load = %v, %v", got, err)
	}
	if def, _ := got.Type("list"); !typesystem.Equal(def.Type, typesystem.List{Elem: typesystem.Real{}}) {
		t.Errorf("list = %s", def.Type)
	}

	if err := s.Require("geo", ">=3.0.0"); err != nil {
		t.Fatal(err)
	}
	var re *ResolveError
	if _, err := s.LoadModule("geo"); !errors.As(err, &re) {
		t.Errorf("expected ResolveError, got %v", err)
	}
}

func TestStoreRepublishReplaces(t *testing.T) {
	s := openTestStore(t)
	first := publishVersion(t, s, "1.0.0", typesystem.Int{})
	second := publishVersion(t, s, "1.0.0", typesystem.Bool{})
	if first.BuildID == second.BuildID {
		t.Errorf("republishing should produce a new build ID")
	}
	got, err := s.LoadModule("geo")
	if err != nil {
		t.Fatal(err)
	}
	if got.BuildID != second.BuildID {
		t.Errorf("BuildID = %s, want %s", got.BuildID, second.BuildID)
	}
	if def, _ := got.Type("list"); !typesystem.Equal(def.Type, typesystem.List{Elem: typesystem.Bool{}}) {
		t.Errorf("list = %s", def.Type)
	}
}

func TestStoreErrors(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadModule("nothing"); err == nil {
		t.Errorf("expected error for unpublished module")
	}
	m := NewModule("bad")
	m.Version = "not-a-version"
	if _, err := s.Publish(context.Background(), m); err == nil {
		t.Errorf("expected error for invalid version")
	}
	if err := s.Require("geo", "not-a-constraint"); err == nil {
		t.Errorf("expected error for invalid constraint")
	}
}
