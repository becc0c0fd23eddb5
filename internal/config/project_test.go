package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProject_ValidMinimal(t *testing.T) {
	yaml := `
name: geometry
sources:
  - src/*.yaml
`
	p, err := ParseProject([]byte(yaml), "rectype.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "geometry" {
		t.Errorf("name = %q, want %q", p.Name, "geometry")
	}
	if p.Version != DefaultVersion {
		t.Errorf("version = %q, want %q", p.Version, DefaultVersion)
	}
	if p.Store != DefaultStorePath {
		t.Errorf("store = %q, want %q", p.Store, DefaultStorePath)
	}
	if p.LogLevel != DefaultLogLevel {
		t.Errorf("log_level = %q, want %q", p.LogLevel, DefaultLogLevel)
	}
	if len(p.Sources) != 1 || p.Sources[0] != "src/*.yaml" {
		t.Errorf("sources = %v", p.Sources)
	}
}

func TestParseProject_ValidFull(t *testing.T) {
	yaml := `
name: app
version: 1.4.2
specs: [terms.yaml]
store: /tmp/mods.db
requires:
  geometry: ">=1.0.0, <2.0.0"
log_level: debug
`
	p, err := ParseProject([]byte(yaml), "rectype.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Version != "1.4.2" {
		t.Errorf("version = %q, want %q", p.Version, "1.4.2")
	}
	if p.Store != "/tmp/mods.db" {
		t.Errorf("store = %q", p.Store)
	}
	if got := p.Requires["geometry"]; got != ">=1.0.0, <2.0.0" {
		t.Errorf("requires[geometry] = %q", got)
	}
	if p.LogLevel != "debug" {
		t.Errorf("log_level = %q", p.LogLevel)
	}
}

func TestParseProject_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "sources: [a.yaml]", "name is required"},
		{"whitespace", "name: my unit\nsources: [a.yaml]", "must not contain whitespace"},
		{"no sources", "name: x", "no sources or specs"},
		{"bad version", "name: x\nsources: [a.yaml]\nversion: one", `version "one"`},
		{"self require", "name: x\nsources: [a.yaml]\nrequires:\n  x: '>=1.0.0'", "cannot require itself"},
		{"bad constraint", "name: x\nsources: [a.yaml]\nrequires:\n  y: 'about one'", "requires[y]"},
		{"bad level", "name: x\nsources: [a.yaml]\nlog_level: loud", "unknown log level"},
		{"bad yaml", "name: [x", "parsing rectype.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.yaml), "rectype.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfgPath := filepath.Join(tmpDir, "rectype.yaml")
	if err := os.WriteFile(cfgPath, []byte("name: x\nsources: [a.yaml]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(subDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != cfgPath {
		t.Errorf("found = %q, want %q", found, cfgPath)
	}

	otherDir := t.TempDir()
	found, err = FindConfig(otherDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != "" {
		t.Errorf("expected empty, got %q", found)
	}
}

func TestLoadProjectSetsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rectype.yml")
	if err := os.WriteFile(path, []byte("name: x\nsources: [a.yaml]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if p.Dir != want {
		t.Errorf("dir = %q, want %q", p.Dir, want)
	}
	if got := p.Path("src/a.yaml"); got != filepath.Join(want, "src", "a.yaml") {
		t.Errorf("Path = %q", got)
	}
	if got := p.Path("/abs/a.yaml"); got != "/abs/a.yaml" {
		t.Errorf("Path of absolute = %q", got)
	}

	if _, err := LoadProject(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml", "c.yml", "terms.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	p := &Project{
		Name:    "x",
		Sources: []string{"*.yaml", "a.yaml", "c.yml"},
		Specs:   []string{"terms.yaml"},
		Dir:     dir,
	}

	files, err := p.SourceFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a.yaml", "b.yaml", "terms.yaml", "c.yml"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, filepath.Base(f), want[i])
		}
	}

	specs, err := p.SpecFiles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 1 || filepath.Base(specs[0]) != "terms.yaml" {
		t.Errorf("specs = %v", specs)
	}

	p.Sources = []string{"nothing/*.yaml"}
	if _, err := p.SourceFiles(); err == nil || !strings.Contains(err.Error(), "matches no files") {
		t.Errorf("expected no-match error, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
