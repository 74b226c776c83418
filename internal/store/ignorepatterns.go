package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/ignorematch"
)

// IgnorePatternRecord is an audit-trail row recording which patterns were
// in effect, and where they came from, the last time the project was
// walked (§3's IgnorePattern model).
type IgnorePatternRecord struct {
	ID      int64
	Pattern string
	Source  ignorematch.Source
	AddedAt string
}

// RecordIgnorePatterns replaces the ignore-pattern audit log with the
// patterns currently in effect, called once per walk.
func (db *DB) RecordIgnorePatterns(patterns []ignorematch.Pattern) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM ignore_patterns`); err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "clear ignore patterns", err)
		}
		for _, p := range patterns {
			if _, err := tx.Exec(`
				INSERT INTO ignore_patterns (pattern, source, added_at) VALUES (?, ?, datetime('now'))`,
				p.Raw, string(p.Source)); err != nil {
				return pcerrors.Wrap(pcerrors.IoError, "insert ignore pattern", err)
			}
		}
		return nil
	})
}

// ListIgnorePatterns returns the audit-trail of patterns currently recorded.
func (db *DB) ListIgnorePatterns() ([]IgnorePatternRecord, error) {
	rows, err := db.conn.Query(`SELECT id, pattern, source, added_at FROM ignore_patterns ORDER BY id`)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "list ignore patterns", err)
	}
	defer rows.Close()

	var out []IgnorePatternRecord
	for rows.Next() {
		var r IgnorePatternRecord
		var source string
		if err := rows.Scan(&r.ID, &r.Pattern, &source, &r.AddedAt); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan ignore pattern", err)
		}
		r.Source = ignorematch.Source(source)
		out = append(out, r)
	}
	return out, nil
}
