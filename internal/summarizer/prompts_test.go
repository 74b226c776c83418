package summarizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

func TestDescriptionLengthForContent(t *testing.T) {
	cases := map[string]string{
		strings.Repeat("x", 100):   "a few lines",
		strings.Repeat("x", 10000): "1-3 paragraphs",
		strings.Repeat("x", 20000): "3-5 paragraphs",
	}
	for content, want := range cases {
		if got := descriptionLengthForContent(content); got != want {
			t.Errorf("descriptionLengthForContent(len=%d) = %q, want %q", len(content), got, want)
		}
	}
}

func TestFileSummaryPrompt_IncludesGraphContextWhenPresent(t *testing.T) {
	ts := DefaultTemplateSet()
	prompt := ts.FileSummaryPrompt("a.py", "python", "print(1)", "", "Code graph context:\n  Imports: os")
	if !strings.Contains(prompt, "Code graph context:") {
		t.Error("expected graph context block to be embedded in the prompt")
	}
	if !strings.Contains(prompt, "Existing summary (improve if present, or write from scratch if None):\nNone") {
		t.Error("expected empty existing summary to render as None")
	}
}

func TestFileSummaryPrompt_OmitsGraphContextWhenAbsent(t *testing.T) {
	ts := DefaultTemplateSet()
	prompt := ts.FileSummaryPrompt("a.py", "python", "print(1)", "", "")
	if strings.Contains(prompt, "Code graph context:") {
		t.Error("expected no graph context block for an isolated summary")
	}
}

func TestFileSummaryPrompt_FallsBackToDefaultForUnknownLanguage(t *testing.T) {
	ts := DefaultTemplateSet()
	prompt := ts.FileSummaryPrompt("a.rs", "rust", "fn main() {}", "", "")
	if !strings.Contains(prompt, "a.rs") {
		t.Errorf("expected default template to still render, got: %s", prompt)
	}
}

func TestDirectorySummaryPrompt_RootGetsMoreParagraphs(t *testing.T) {
	ts := DefaultTemplateSet()
	root := ts.DirectorySummaryPrompt("/proj", nil, "", true)
	nonRoot := ts.DirectorySummaryPrompt("/proj/pkg", nil, "", false)
	if !strings.Contains(root, "5-10 paragraphs") {
		t.Errorf("expected root directory prompt to request 5-10 paragraphs, got: %s", root)
	}
	if !strings.Contains(nonRoot, "1-5 paragraphs") {
		t.Errorf("expected non-root directory prompt to request 1-5 paragraphs, got: %s", nonRoot)
	}
}

func TestDirectorySummaryPrompt_ListsChildren(t *testing.T) {
	ts := DefaultTemplateSet()
	prompt := ts.DirectorySummaryPrompt("/proj", []ChildSummary{
		{Name: "a.py", Kind: "file", Description: "does a thing"},
		{Name: "sub", Kind: "directory", Description: "a subpackage"},
	}, "", false)
	if !strings.Contains(prompt, "a.py: does a thing") || !strings.Contains(prompt, "sub: a subpackage") {
		t.Errorf("expected children to be listed in the prompt: %s", prompt)
	}
}

func TestDirectorySummaryPrompt_EmptyChildrenPlaceholder(t *testing.T) {
	ts := DefaultTemplateSet()
	prompt := ts.DirectorySummaryPrompt("/proj/empty", nil, "", false)
	if !strings.Contains(prompt, "(empty)") {
		t.Error("expected (empty) placeholder for a directory with no children")
	}
}

func TestLoadTemplateSet_NoOverrideReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".paranoid-coder"), 0755); err != nil {
		t.Fatal(err)
	}
	ts, err := LoadTemplateSet(root)
	if err != nil {
		t.Fatalf("LoadTemplateSet: %v", err)
	}
	if ts.File[defaultTemplateKey] != defaultFileTemplate {
		t.Error("expected default file template with no override present")
	}
}

func TestLoadTemplateSet_JSONOverridePerLanguage(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".paranoid-coder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	override := `{"python:file": "PY {filename} {content} {existing} {length} {extension}"}`
	if err := os.WriteFile(filepath.Join(dir, "prompts.json"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}
	ts, err := LoadTemplateSet(root)
	if err != nil {
		t.Fatalf("LoadTemplateSet: %v", err)
	}
	if ts.File["python"] == "" || !strings.HasPrefix(ts.File["python"], "PY ") {
		t.Errorf("expected python override to be applied, got %q", ts.File["python"])
	}
	if ts.File[defaultTemplateKey] != defaultFileTemplate {
		t.Error("expected default template to remain for other languages")
	}
}

func TestLoadTemplateSet_YAMLPreferredOverJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".paranoid-coder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	yamlOverride := "default:file: |\n  YAML {filename} {content} {existing} {length} {extension}\n"
	if err := os.WriteFile(filepath.Join(dir, "prompts.yaml"), []byte(yamlOverride), 0644); err != nil {
		t.Fatal(err)
	}
	jsonOverride := `{"default:file": "JSON {filename} {content} {existing} {length} {extension}"}`
	if err := os.WriteFile(filepath.Join(dir, "prompts.json"), []byte(jsonOverride), 0644); err != nil {
		t.Fatal(err)
	}
	ts, err := LoadTemplateSet(root)
	if err != nil {
		t.Fatalf("LoadTemplateSet: %v", err)
	}
	if !strings.Contains(ts.File[defaultTemplateKey], "YAML") {
		t.Errorf("expected prompts.yaml to take precedence over prompts.json, got %q", ts.File[defaultTemplateKey])
	}
}

func TestLoadTemplateSet_MissingPlaceholderRejected(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".paranoid-coder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	override := `{"default:file": "missing all placeholders"}`
	if err := os.WriteFile(filepath.Join(dir, "prompts.json"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTemplateSet(root)
	if err == nil {
		t.Fatal("expected an error for a template missing required placeholders")
	}
	if kind, ok := pcerrors.KindOf(err); !ok || kind != pcerrors.InvalidTemplate {
		t.Errorf("expected InvalidTemplate, got %v", err)
	}
}

func TestLoadTemplateSet_InvalidKeyRejected(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".paranoid-coder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	override := `{"not-a-valid-key": "irrelevant"}`
	if err := os.WriteFile(filepath.Join(dir, "prompts.json"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTemplateSet(root)
	if err == nil {
		t.Fatal("expected an error for a malformed override key")
	}
}
