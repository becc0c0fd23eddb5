package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const project = `
name: shapes
version: 1.0.0
sources: [src/*.yaml]
specs: [terms.yaml]
store: db/modules.db
`

const terms = `
decls:
  - class: Tree
    type: [int, {list: Tree}]
  - term: Node
    type: Tree
`

const clean = `
decls:
  - type: Tree
    is: [int, {list: Tree}]
  - fun: size
    params: [{t: Tree}]
    returns: int
    body:
      - return: 1
`

const broken = `
decls:
  - fun: size
    returns: int
    body:
      - return: true
`

func TestCheck(t *testing.T) {
	dir := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": clean})
	code, out, errOut := run(t, "check", dir)
	if code != 0 {
		t.Fatalf("exit %d\nstdout:\n%s\nstderr:\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "ok: 1 project checked") {
		t.Errorf("stdout:\n%s", out)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": broken})
	code, out, _ := run(t, "check", filepath.Join(dir, "rectype.yaml"))
	if code != 1 {
		t.Fatalf("exit %d, want 1\n%s", code, out)
	}
	if !strings.Contains(out, "[T004] expected type int, found bool") {
		t.Errorf("stdout:\n%s", out)
	}
}

func TestCheckSeveralProjects(t *testing.T) {
	good := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": clean})
	bad := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": broken})
	code, out, _ := run(t, "check", good, bad)
	if code != 1 || strings.Count(out, "[T004]") != 1 {
		t.Errorf("exit %d\n%s", code, out)
	}
}

func TestDump(t *testing.T) {
	dir := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": clean})
	code, out, errOut := run(t, "dump", "-log-level", "error", dir)
	if code != 0 {
		t.Fatalf("exit %d\n%s%s", code, out, errOut)
	}
	for _, want := range []string{"# shapes", "terms:", "  Node = Node(", "types:", "  shapes:Tree = U<", "functions:", "  shapes:size (U<"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPublish(t *testing.T) {
	dir := writeProject(t, map[string]string{"rectype.yaml": project, "terms.yaml": terms, "src/a.yaml": clean})
	code, out, errOut := run(t, "publish", dir)
	if code != 0 {
		t.Fatalf("exit %d\n%s%s", code, out, errOut)
	}
	if !strings.Contains(out, "published shapes@1.0.0 (build ") {
		t.Errorf("stdout:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "db", "modules.db")); err != nil {
		t.Errorf("store not created: %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		args []string
		code int
		want string
	}{
		{nil, 2, "usage: rectype"},
		{[]string{"frobnicate"}, 2, `unknown command "frobnicate"`},
		{[]string{"check", "-nope"}, 2, "flag provided but not defined"},
		{[]string{"check", filepath.Join(t.TempDir(), "missing.yaml")}, 2, "reading config"},
		{[]string{"check", "-log-level", "loud", "."}, 2, ""},
	}
	for _, tt := range tests {
		code, _, errOut := run(t, tt.args...)
		if code != tt.code || !strings.Contains(errOut, tt.want) {
			t.Errorf("%v: exit %d, stderr:\n%s", tt.args, code, errOut)
		}
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	if code != 0 || !strings.HasPrefix(out, "rectype ") {
		t.Errorf("exit %d: %s", code, out)
	}
}
