package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileUsesDefaultDir(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "gotpl.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Main.Dir, DefaultDir) {
		t.Fatalf("expected default dir %v, got %v", DefaultDir, cfg.Main.Dir)
	}
}

func TestLoadParsesMainDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotpl.toml")
	body := "[main]\ndir = [\"path/one\", \"path/two\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"path/one", "path/two"}
	if !reflect.DeepEqual(cfg.Main.Dir, want) {
		t.Fatalf("expected dir %v, got %v", want, cfg.Main.Dir)
	}
}

func TestLoadToleratesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotpl.toml")
	body := "[main]\ndir = [\"templates\"]\n\n[unrelated]\nfoo = \"bar\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err != nil {
		t.Fatalf("expected unrecognized keys to be tolerated, got: %v", err)
	}
}

func TestLoadEmptyDirFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotpl.toml")
	body := "[main]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Main.Dir, DefaultDir) {
		t.Fatalf("expected default dir %v, got %v", DefaultDir, cfg.Main.Dir)
	}
}

func TestLoadMalformedTOMLIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotpl.toml")
	body := "[main\ndir = broken"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected malformed TOML to surface as an error")
	}
}
