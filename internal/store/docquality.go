package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// DocQuality holds the documentation-quality heuristics computed for an
// entity during summarization (§3, §4.E).
type DocQuality struct {
	EntityID      int64
	HasDocstring  bool
	HasExamples   bool
	HasTypeHints  bool
	PriorityScore float64
	LastReviewed  string
}

// SetDocQuality upserts the doc-quality row for an entity.
func (db *DB) SetDocQuality(q DocQuality) error {
	_, err := db.conn.Exec(`
		INSERT INTO doc_quality (entity_id, has_docstring, has_examples, has_type_hints, priority_score, last_reviewed)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(entity_id) DO UPDATE SET
			has_docstring=excluded.has_docstring, has_examples=excluded.has_examples,
			has_type_hints=excluded.has_type_hints, priority_score=excluded.priority_score,
			last_reviewed=excluded.last_reviewed`,
		q.EntityID, boolToInt(q.HasDocstring), boolToInt(q.HasExamples), boolToInt(q.HasTypeHints), q.PriorityScore)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set doc quality", err)
	}
	return nil
}

// TopDocQualityPriorities returns the entities most in need of
// documentation attention, ordered by descending priority_score.
func (db *DB) TopDocQualityPriorities(limit int) ([]DocQuality, error) {
	rows, err := db.conn.Query(`
		SELECT entity_id, has_docstring, has_examples, has_type_hints, priority_score, last_reviewed
		FROM doc_quality ORDER BY priority_score DESC LIMIT ?`, limit)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "list doc quality priorities", err)
	}
	defer rows.Close()

	var out []DocQuality
	for rows.Next() {
		var q DocQuality
		var hasDoc, hasEx, hasTypes int
		var lastReviewed sql.NullString
		if err := rows.Scan(&q.EntityID, &hasDoc, &hasEx, &hasTypes, &q.PriorityScore, &lastReviewed); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan doc quality", err)
		}
		q.HasDocstring = hasDoc != 0
		q.HasExamples = hasEx != 0
		q.HasTypeHints = hasTypes != 0
		q.LastReviewed = lastReviewed.String
		out = append(out, q)
	}
	return out, nil
}
