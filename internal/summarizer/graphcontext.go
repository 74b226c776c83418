package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/bradylowe/paranoid-coder/internal/store"
)

// SummaryContextVersion is stamped onto every SummaryContext snapshot;
// bumped only if the snapshot's fields or invalidation semantics change.
const SummaryContextVersion = "1"

// maxNamesPerList caps the callers=[...]/callees=[...] lists in the
// rendered graph context block before collapsing the remainder into a
// "+N more" suffix.
const maxNamesPerList = 5

// GraphStore is the subset of the store's graph API the summarizer needs to
// build context-level-1 prompts and smart-invalidation snapshots.
type GraphStore interface {
	ImportsOf(filePath string) ([]string, error)
	EntitiesForFile(path string) ([]store.Entity, error)
	CallersOf(entityID int64) ([]store.Entity, error)
	CalleesOf(entityID int64) ([]store.Entity, error)
}

// ImportsHash hashes the sorted, deduplicated import list the way
// ComputeFileContextSnapshot and BuildGraphContextForFile both do, so
// callers building a SummaryContext row can reuse the same digest the
// prompt was built from.
func ImportsHash(imports []string) string {
	sorted := dedupSorted(imports)
	h := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(h[:])
}

// FileContextSnapshot is the graph-drift fingerprint recorded alongside a
// context-level-1 Summary for smart invalidation.
type FileContextSnapshot struct {
	ImportsHash  string
	CallersCount int
	CalleesCount int
	HasGraphData bool
}

// ComputeFileContextSnapshot computes the current graph snapshot for
// filePath. HasGraphData is false if the file has neither imports nor
// entities recorded (analysis hasn't run for it yet).
func ComputeFileContextSnapshot(gs GraphStore, filePath string) (FileContextSnapshot, error) {
	imports, err := gs.ImportsOf(filePath)
	if err != nil {
		return FileContextSnapshot{}, err
	}
	entities, err := gs.EntitiesForFile(filePath)
	if err != nil {
		return FileContextSnapshot{}, err
	}
	if len(imports) == 0 && len(entities) == 0 {
		return FileContextSnapshot{}, nil
	}

	var callersCount, calleesCount int
	for _, ent := range entities {
		callers, err := gs.CallersOf(ent.ID)
		if err != nil {
			return FileContextSnapshot{}, err
		}
		callees, err := gs.CalleesOf(ent.ID)
		if err != nil {
			return FileContextSnapshot{}, err
		}
		callersCount += len(callers)
		calleesCount += len(callees)
	}

	return FileContextSnapshot{
		ImportsHash:  ImportsHash(imports),
		CallersCount: callersCount,
		CalleesCount: calleesCount,
		HasGraphData: true,
	}, nil
}

// BuildGraphContextForFile renders the compact "Code graph context:" block
// inserted into a context-level-1 prompt: imports, exported (qualified)
// entity names, and per-entity callers=[...]/callees=[...] lists capped at
// maxNamesPerList names with a "+N more" suffix. Returns "" if the file has
// no graph data (analysis hasn't run for it).
func BuildGraphContextForFile(gs GraphStore, filePath string) (string, error) {
	imports, err := gs.ImportsOf(filePath)
	if err != nil {
		return "", err
	}
	entities, err := gs.EntitiesForFile(filePath)
	if err != nil {
		return "", err
	}
	if len(imports) == 0 && len(entities) == 0 {
		return "", nil
	}

	var lines []string
	lines = append(lines, "Code graph context:")

	if len(imports) > 0 {
		lines = append(lines, "  Imports: "+strings.Join(dedupSorted(imports), ", "))
	}

	if len(entities) > 0 {
		exports := make([]string, len(entities))
		for i, ent := range entities {
			exports[i] = ent.QualifiedName
		}
		lines = append(lines, "  Exports: "+strings.Join(exports, ", "))

		for _, ent := range entities {
			callers, err := gs.CallersOf(ent.ID)
			if err != nil {
				return "", err
			}
			callees, err := gs.CalleesOf(ent.ID)
			if err != nil {
				return "", err
			}
			if len(callers) == 0 && len(callees) == 0 {
				continue
			}
			var parts []string
			if len(callers) > 0 {
				parts = append(parts, "callers=["+namesWithOverflow(callers)+"]")
			}
			if len(callees) > 0 {
				parts = append(parts, "callees=["+namesWithOverflow(callees)+"]")
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", ent.QualifiedName, strings.Join(parts, ", ")))
		}
	}

	if len(lines) <= 1 {
		return "", nil
	}
	return strings.Join(lines, "\n"), nil
}

func namesWithOverflow(entities []store.Entity) string {
	limit := maxNamesPerList
	if limit > len(entities) {
		limit = len(entities)
	}
	names := make([]string, 0, limit+1)
	for _, e := range entities[:limit] {
		names = append(names, e.QualifiedName)
	}
	if len(entities) > maxNamesPerList {
		names = append(names, fmt.Sprintf("...+%d more", len(entities)-maxNamesPerList))
	}
	return strings.Join(names, ", ")
}

func dedupSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}
