package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherBatchesSourceChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir, dir}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	batches := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(changed []string) { batches <- changed }) }()

	src := filepath.Join(dir, "unit.yaml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(src, []byte("decls: []\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-batches:
		if len(changed) != 1 || changed[0] != src {
			t.Errorf("changed = %v, want [%s]", changed, src)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case changed := <-batches:
		t.Errorf("unexpected second batch %v", changed)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestIsSource(t *testing.T) {
	tests := map[string]bool{
		"a.yaml":     true,
		"dir/b.yml":  true,
		"c.txt":      false,
		"yaml":       false,
		"d.yaml.swp": false,
	}
	for path, want := range tests {
		if got := isSource(path); got != want {
			t.Errorf("isSource(%q) = %v, want %v", path, got, want)
		}
	}
}
