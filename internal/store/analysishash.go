package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// GetAnalysisFileHash returns the content hash recorded the last time
// path was analyzed by the graph extractor (§4.D incremental skip check).
func (db *DB) GetAnalysisFileHash(path string) (hash string, found bool, err error) {
	row := db.conn.QueryRow(`SELECT content_hash FROM analysis_file_hashes WHERE path = ?`, path)
	err = row.Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, pcerrors.Wrap(pcerrors.IoError, "get analysis file hash", err)
	}
	return hash, true, nil
}

// SetAnalysisFileHash records the content hash a file was analyzed at.
func (db *DB) SetAnalysisFileHash(path, hash string) error {
	_, err := db.conn.Exec(`
		INSERT INTO analysis_file_hashes (path, content_hash, analyzed_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET content_hash=excluded.content_hash, analyzed_at=excluded.analyzed_at`,
		path, hash)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set analysis file hash", err)
	}
	return nil
}
