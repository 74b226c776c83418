package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// GetMetadata returns a single metadata value (e.g. last index run, model
// fingerprint used for the vector store).
func (db *DB) GetMetadata(key string) (value string, found bool, err error) {
	row := db.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	err = row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, pcerrors.Wrap(pcerrors.IoError, "get metadata", err)
	}
	return value, true, nil
}

// SetMetadata upserts a metadata key/value pair.
func (db *DB) SetMetadata(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set metadata", err)
	}
	return nil
}
