// Package hashutil implements the two-level content/tree hashing scheme
// (§4.A) that drives incremental, idempotent summarization.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// ContentHash returns the hex-encoded SHA-256 digest of path's raw bytes.
// It is binary-safe and fails with IoError if path is unreadable or is not
// a regular file.
func ContentHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", pcerrors.Wrap(pcerrors.IoError, "stat file for hashing", err)
	}
	if !info.Mode().IsRegular() {
		return "", pcerrors.New(pcerrors.IoError, "not a regular file: "+path)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", pcerrors.Wrap(pcerrors.IoError, "open file for hashing", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", pcerrors.Wrap(pcerrors.IoError, "read file for hashing", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashSorted returns the hex-encoded SHA-256 digest of the sorted,
// concatenated child hashes. It is the pure function underlying TreeHash:
// hash(d) = H(sort(hash(c) for c in children)). An empty slice hashes to the
// digest of the empty string.
func HashSorted(childHashes []string) string {
	sorted := make([]string, len(childHashes))
	copy(sorted, childHashes)
	sort.Strings(sorted)

	h := sha256.New()
	for _, c := range sorted {
		h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ChildHashLister exposes the store operation TreeHash needs: the hashes of
// a directory's direct children as currently recorded in the store. Only
// children that actually exist in the store participate, so any change to a
// descendant that has not yet propagated up is naturally excluded until its
// own summary is written.
type ChildHashLister interface {
	ListChildHashes(dirPath string) ([]string, error)
}

// TreeHash computes a directory's tree hash from its direct children's
// hashes as recorded in the store (not from disk). Any change to any
// descendant changes at least one child hash, which changes every ancestor's
// tree hash in turn.
func TreeHash(dirPath string, store ChildHashLister) (string, error) {
	hashes, err := store.ListChildHashes(dirPath)
	if err != nil {
		return "", err
	}
	return HashSorted(hashes), nil
}

// SummaryLookup exposes the store state NeedsSummarization consults.
type SummaryLookup interface {
	// SummaryState returns the stored hash and needs_update flag for path.
	// found is false if no summary exists yet.
	SummaryState(path string) (hash string, needsUpdate bool, found bool, err error)
}

// SmartInvalidator reports whether a context-level-1 summary's graph
// context (imports/callers/callees) has drifted enough to require
// re-summarization even though the content hash is unchanged (§4.E).
type SmartInvalidator interface {
	ContextChanged(path string) (bool, error)
}

// NeedsSummarization implements spec invariant 4: true iff no summary
// exists, the stored hash differs from currentHash, needs_update is set, or
// (for context-level-1 summaries) smart invalidation reports drift.
func NeedsSummarization(path, currentHash string, store SummaryLookup, invalidator SmartInvalidator) (bool, error) {
	hash, needsUpdate, found, err := store.SummaryState(path)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if needsUpdate {
		return true, nil
	}
	if hash != currentHash {
		return true, nil
	}
	if invalidator != nil {
		changed, err := invalidator.ContextChanged(path)
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}
	return false, nil
}
