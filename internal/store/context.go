package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// SummaryContext tracks the snapshot of import/caller/callee counts a
// summary was generated against, so smart invalidation (§4.E) can detect
// drift without a content change.
type SummaryContext struct {
	Path           string
	ImportsHash    string
	CallersCount   int
	CalleesCount   int
	ContextVersion string
}

// GetSummaryContext fetches the stored context snapshot for path.
func (db *DB) GetSummaryContext(path string) (SummaryContext, bool, error) {
	row := db.conn.QueryRow(`
		SELECT path, imports_hash, callers_count, callees_count, context_version
		FROM summary_context WHERE path = ?`, path)
	var c SummaryContext
	var importsHash, contextVersion sql.NullString
	err := row.Scan(&c.Path, &importsHash, &c.CallersCount, &c.CalleesCount, &contextVersion)
	if err == sql.ErrNoRows {
		return SummaryContext{}, false, nil
	}
	if err != nil {
		return SummaryContext{}, false, pcerrors.Wrap(pcerrors.IoError, "get summary context", err)
	}
	c.ImportsHash = importsHash.String
	c.ContextVersion = contextVersion.String
	return c, true, nil
}

// SetSummaryContext upserts the context snapshot for path.
func (db *DB) SetSummaryContext(c SummaryContext) error {
	_, err := db.conn.Exec(`
		INSERT INTO summary_context (path, imports_hash, callers_count, callees_count, context_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			imports_hash=excluded.imports_hash, callers_count=excluded.callers_count,
			callees_count=excluded.callees_count, context_version=excluded.context_version`,
		c.Path, c.ImportsHash, c.CallersCount, c.CalleesCount, c.ContextVersion)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set summary context", err)
	}
	return nil
}

// ContextChanged implements hashutil.SmartInvalidator: it recomputes the
// current caller/callee counts for every entity in the file at path and
// compares their sum against the last-recorded snapshot, crossing either
// configured threshold, or an imports hash change, counts as drift.
func (db *DB) ContextChanged(path string, callersThreshold, calleesThreshold int, currentImportsHash string) (bool, error) {
	prev, found, err := db.GetSummaryContext(path)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if prev.ImportsHash != "" && currentImportsHash != "" && prev.ImportsHash != currentImportsHash {
		return true, nil
	}

	entities, err := db.EntitiesForFile(path)
	if err != nil {
		return false, err
	}
	var callers, callees int
	for _, e := range entities {
		c, err := db.CallerCount(e.ID)
		if err != nil {
			return false, err
		}
		d, err := db.CalleeCount(e.ID)
		if err != nil {
			return false, err
		}
		callers += c
		callees += d
	}

	if abs(callers-prev.CallersCount) > callersThreshold {
		return true, nil
	}
	if abs(callees-prev.CalleesCount) > calleesThreshold {
		return true, nil
	}
	return false, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
