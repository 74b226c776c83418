package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestContentHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ContentHash(path)
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	sum := sha256.Sum256([]byte("hello world"))
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("ContentHash = %s, want %s", got, want)
	}
}

func TestContentHash_BinarySafe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.dat")
	data := []byte{0x00, 0xff, 0x10, 0x00, 0x42}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ContentHash(path)
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	sum := sha256.Sum256(data)
	if got != hex.EncodeToString(sum[:]) {
		t.Errorf("binary content hashed incorrectly")
	}
}

func TestContentHash_NotAFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := ContentHash(dir); err == nil {
		t.Error("expected error hashing a directory")
	}
}

func TestContentHash_Missing(t *testing.T) {
	if _, err := ContentHash("/nonexistent/path/does/not/exist"); err == nil {
		t.Error("expected error hashing a missing file")
	}
}

func TestHashSorted_OrderIndependent(t *testing.T) {
	a := HashSorted([]string{"b", "a", "c"})
	b := HashSorted([]string{"c", "b", "a"})
	if a != b {
		t.Errorf("HashSorted should be order-independent: %s != %s", a, b)
	}
}

func TestHashSorted_Empty(t *testing.T) {
	empty := HashSorted(nil)
	sum := sha256.Sum256([]byte{})
	want := hex.EncodeToString(sum[:])
	if empty != want {
		t.Errorf("HashSorted(nil) = %s, want digest of empty string %s", empty, want)
	}
}

func TestHashSorted_ChangesWithAnyChild(t *testing.T) {
	base := HashSorted([]string{"h1", "h2", "h3"})
	perturbed := HashSorted([]string{"h1", "h2", "h3x"})
	if base == perturbed {
		t.Error("perturbing one child hash must change the tree hash")
	}
}

type fakeChildLister struct {
	hashes []string
	err    error
}

func (f fakeChildLister) ListChildHashes(string) ([]string, error) { return f.hashes, f.err }

func TestTreeHash(t *testing.T) {
	lister := fakeChildLister{hashes: []string{"bbb", "aaa"}}
	got, err := TreeHash("/proj/src", lister)
	if err != nil {
		t.Fatal(err)
	}
	want := HashSorted([]string{"aaa", "bbb"})
	if got != want {
		t.Errorf("TreeHash = %s, want %s", got, want)
	}
}

type fakeSummaryLookup struct {
	hash        string
	needsUpdate bool
	found       bool
}

func (f fakeSummaryLookup) SummaryState(string) (string, bool, bool, error) {
	return f.hash, f.needsUpdate, f.found, nil
}

type fakeInvalidator struct{ changed bool }

func (f fakeInvalidator) ContextChanged(string) (bool, error) { return f.changed, nil }

func TestNeedsSummarization_NoExistingSummary(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h1", fakeSummaryLookup{found: false}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("expected true when no summary exists")
	}
}

func TestNeedsSummarization_HashUnchanged(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h1", fakeSummaryLookup{hash: "h1", found: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if needs {
		t.Error("expected false when hash unchanged and no invalidation triggers")
	}
}

func TestNeedsSummarization_HashChanged(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h2", fakeSummaryLookup{hash: "h1", found: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("expected true when stored hash differs from current hash")
	}
}

func TestNeedsSummarization_NeedsUpdateFlag(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h1", fakeSummaryLookup{hash: "h1", found: true, needsUpdate: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("expected true when needs_update flag is set")
	}
}

func TestNeedsSummarization_SmartInvalidationTriggers(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h1", fakeSummaryLookup{hash: "h1", found: true}, fakeInvalidator{changed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("expected true when smart invalidation reports context drift")
	}
}

func TestNeedsSummarization_SmartInvalidationNoChange(t *testing.T) {
	needs, err := NeedsSummarization("/p/a.py", "h1", fakeSummaryLookup{hash: "h1", found: true}, fakeInvalidator{changed: false})
	if err != nil {
		t.Fatal(err)
	}
	if needs {
		t.Error("expected false when smart invalidation reports no drift")
	}
}
