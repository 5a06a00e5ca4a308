package watch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmitRerunDirectivesListsEveryFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.html", "sub/b.html"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := EmitRerunDirectives(&buf, []string{dir}); err != nil {
		t.Fatalf("EmitRerunDirectives: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "//go:generate_rerun "+filepath.Join(dir, "a.html")) {
		t.Errorf("expected a directive for a.html, got:\n%s", out)
	}
	if !strings.Contains(out, "//go:generate_rerun "+filepath.Join(dir, "sub", "b.html")) {
		t.Errorf("expected a directive for sub/b.html, got:\n%s", out)
	}
}

func TestWatcherFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{dir}, []string{".html"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	changed := make(chan string, 4)
	w.OnChange = func(path string) { changed <- path }
	w.Start()

	ignored := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(ignored, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	watched := filepath.Join(dir, "page.html")
	if err := os.WriteFile(watched, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != watched {
			t.Fatalf("expected notification for %s, got %s", watched, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watched file notification")
	}
}
