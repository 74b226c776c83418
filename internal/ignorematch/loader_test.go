package ignorematch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadIgnoreFile_MissingFileReturnsNil(t *testing.T) {
	lines, err := ReadIgnoreFile(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if lines != nil {
		t.Errorf("expected nil lines for a missing file, got %v", lines)
	}
}

func TestReadIgnoreFile_ParsesLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".paranoidignore")
	if err := os.WriteFile(path, []byte("*.pyc\n# comment\n\nbuild/\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadIgnoreFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "*.pyc" || lines[1] != "build/" {
		t.Errorf("ReadIgnoreFile = %v", lines)
	}
}

func TestLoad_OrdersBuiltinsFileThenAdditional(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ParanoidIgnoreFile), []byte("*.log\n"), 0644); err != nil {
		t.Fatal(err)
	}

	patterns, err := Load(dir, LoadOptions{
		BuiltinPatterns:    []string{".git"},
		AdditionalPatterns: []string{"extra/"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 3 {
		t.Fatalf("Load = %v, want 3 patterns", patterns)
	}
	if patterns[0].Source != SourceBuiltin || patterns[1].Source != SourceFile || patterns[2].Source != SourceAdditional {
		t.Errorf("unexpected pattern sources: %+v", patterns)
	}
}

func TestLoad_UseGitignoreIncludesGitignoreFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, GitignoreFile), []byte("node_modules/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	patterns, err := Load(dir, LoadOptions{UseGitignore: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 1 || patterns[0].Raw != "node_modules/" {
		t.Errorf("Load with UseGitignore = %v", patterns)
	}

	without, err := Load(dir, LoadOptions{UseGitignore: false})
	if err != nil {
		t.Fatal(err)
	}
	if len(without) != 0 {
		t.Errorf("Load without UseGitignore should skip .gitignore, got %v", without)
	}
}

func TestIsIgnored_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ParanoidIgnoreFile), []byte("*.pyc\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ignored, err := IsIgnored(dir, filepath.Join(dir, "foo.pyc"), false, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !ignored {
		t.Error("expected foo.pyc to be ignored")
	}

	notIgnored, err := IsIgnored(dir, filepath.Join(dir, "foo.py"), false, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if notIgnored {
		t.Error("did not expect foo.py to be ignored")
	}
}

func TestRelativeTo_RejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "elsewhere", "file.py")
	if _, ok := RelativeTo(root, outside); ok {
		t.Error("expected a path outside root to be rejected")
	}
}

func TestRelativeTo_ReturnsForwardSlashRelativePath(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b.py")
	rel, ok := RelativeTo(root, nested)
	if !ok {
		t.Fatal("expected path under root to resolve")
	}
	if rel != "a/b.py" {
		t.Errorf("RelativeTo = %q, want a/b.py", rel)
	}
}
