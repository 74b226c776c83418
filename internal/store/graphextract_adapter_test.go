package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bradylowe/paranoid-coder/internal/graphextract"
)

const sampleProjectSource = `
def helper():
    return 1


def build():
    return helper()
`

func TestAnalyzeProject_ExtractsAndPersistsViaAdapter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte(sampleProjectSource), 0o644); err != nil {
		t.Fatal(err)
	}

	db := newTestDB(t)
	adapter := NewGraphExtractAdapter(db)
	extractor := graphextract.NewExtractor()

	stats, err := graphextract.AnalyzeProject(context.Background(), extractor, adapter, []string{path}, false)
	if err != nil {
		t.Fatalf("AnalyzeProject: %v", err)
	}
	if stats.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", stats.FilesAnalyzed)
	}
	if stats.EntitiesExtracted != 2 {
		t.Errorf("EntitiesExtracted = %d, want 2", stats.EntitiesExtracted)
	}
	if stats.RelationshipsExtracted == 0 {
		t.Error("expected at least one relationship extracted (the helper() call)")
	}

	entities, err := db.EntitiesForFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 2 {
		t.Fatalf("EntitiesForFile = %v, want 2 rows", entities)
	}
}

func TestAnalyzeProject_SkipsUnchangedFileUnlessForced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	if err := os.WriteFile(path, []byte(sampleProjectSource), 0o644); err != nil {
		t.Fatal(err)
	}

	db := newTestDB(t)
	adapter := NewGraphExtractAdapter(db)
	extractor := graphextract.NewExtractor()

	if _, err := graphextract.AnalyzeProject(context.Background(), extractor, adapter, []string{path}, false); err != nil {
		t.Fatal(err)
	}

	stats, err := graphextract.AnalyzeProject(context.Background(), extractor, adapter, []string{path}, false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesSkipped != 1 || stats.FilesAnalyzed != 0 {
		t.Errorf("expected second run to skip the unchanged file, got %+v", stats)
	}

	forced, err := graphextract.AnalyzeProject(context.Background(), extractor, adapter, []string{path}, true)
	if err != nil {
		t.Fatal(err)
	}
	if forced.FilesAnalyzed != 1 {
		t.Errorf("expected force=true to re-analyze, got %+v", forced)
	}
}
