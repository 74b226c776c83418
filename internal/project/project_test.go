package project

import (
	"os"
	"path/filepath"
	"testing"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

func TestRoot_FileResolvesToParentDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.py")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := Root(file)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != dir {
		t.Errorf("Root(file) = %q, want %q", root, dir)
	}
}

func TestFind_WalksUpToProjectDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, DirName), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != root {
		t.Errorf("Find(nested) = %q, want %q", found, root)
	}
}

func TestFind_ReturnsEmptyWhenNotFound(t *testing.T) {
	dir := t.TempDir()
	found, err := Find(dir)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != "" {
		t.Errorf("Find(unintialized) = %q, want \"\"", found)
	}
}

func TestRequire_ErrorsWithNoProjectFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Require(dir)
	if err == nil {
		t.Fatal("expected an error for an uninitialized directory")
	}
	if kind, ok := pcerrors.KindOf(err); !ok || kind != pcerrors.NoProjectFound {
		t.Errorf("expected NoProjectFound, got %v", err)
	}
}

func TestIsInitialized(t *testing.T) {
	dir := t.TempDir()
	if IsInitialized(dir) {
		t.Error("expected uninitialized dir to report false")
	}
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		t.Fatal(err)
	}
	if !IsInitialized(dir) {
		t.Error("expected initialized dir to report true")
	}
}

func TestInit_IsIdempotent(t *testing.T) {
	dir := t.TempDir()

	created, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !created {
		t.Error("expected first Init to report created=true")
	}

	created, err = Init(dir)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if created {
		t.Error("expected second Init on the same root to report created=false")
	}
}

func TestPathHelpers(t *testing.T) {
	root := "/proj"
	if got := DBPath(root); got != filepath.Join(root, DirName, SummariesDB) {
		t.Errorf("DBPath = %q", got)
	}
	if got := ConfigPath(root); got != filepath.Join(root, DirName, ConfigFilename) {
		t.Errorf("ConfigPath = %q", got)
	}
	if got := PromptsPath(root); got != filepath.Join(root, DirName, PromptsFilename) {
		t.Errorf("PromptsPath = %q", got)
	}
}
