package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// EntityKind distinguishes class/function/method entities (§3).
type EntityKind string

const (
	EntityClass    EntityKind = "class"
	EntityFunction EntityKind = "function"
	EntityMethod   EntityKind = "method"
)

// Entity is a single extracted class, function, or method (§4.D).
type Entity struct {
	ID              int64
	FilePath        string
	Kind            EntityKind
	Name            string
	QualifiedName   string
	ParentEntityID  sql.NullInt64
	StartLine       int
	EndLine         int
	Signature       string
	Docstring       string
	Language        string
}

// InsertEntity inserts a new entity row and returns its assigned id.
func (db *DB) InsertEntity(e Entity) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO entities (file_path, kind, name, qualified_name, parent_entity_id,
			start_line, end_line, signature, docstring, language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.FilePath, e.Kind, e.Name, e.QualifiedName, e.ParentEntityID,
		e.StartLine, e.EndLine, e.Signature, e.Docstring, e.Language)
	if err != nil {
		return 0, pcerrors.Wrap(pcerrors.IoError, "insert entity", err)
	}
	return res.LastInsertId()
}

// DeleteEntitiesForFile removes all entities (and, via FK cascade, the
// relationships and doc_quality rows referencing them) for a file path.
// Used before re-extracting a changed file (§4.D incremental re-analysis).
func (db *DB) DeleteEntitiesForFile(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM entities WHERE file_path = ?`, path); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "delete entities for file", err)
	}
	return nil
}

// GetEntity fetches a single entity by id.
func (db *DB) GetEntity(id int64) (Entity, bool, error) {
	row := db.conn.QueryRow(`
		SELECT id, file_path, kind, name, qualified_name, parent_entity_id,
		       start_line, end_line, signature, docstring, language
		FROM entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return Entity{}, false, nil
	}
	if err != nil {
		return Entity{}, false, pcerrors.Wrap(pcerrors.IoError, "get entity", err)
	}
	return e, true, nil
}

// EntitiesByQualifiedName returns all entities matching an exact qualified
// name (first resolution pass of §4.D step 4).
func (db *DB) EntitiesByQualifiedName(qualifiedName string) ([]Entity, error) {
	return db.queryEntities(`
		SELECT id, file_path, kind, name, qualified_name, parent_entity_id,
		       start_line, end_line, signature, docstring, language
		FROM entities WHERE qualified_name = ?`, qualifiedName)
}

// EntitiesByName returns all entities matching a bare (unqualified) name,
// the fallback resolution pass of §4.D step 4.
func (db *DB) EntitiesByName(name string) ([]Entity, error) {
	return db.queryEntities(`
		SELECT id, file_path, kind, name, qualified_name, parent_entity_id,
		       start_line, end_line, signature, docstring, language
		FROM entities WHERE name = ?`, name)
}

// EntitiesForFile returns all entities extracted from a single file path.
func (db *DB) EntitiesForFile(path string) ([]Entity, error) {
	return db.queryEntities(`
		SELECT id, file_path, kind, name, qualified_name, parent_entity_id,
		       start_line, end_line, signature, docstring, language
		FROM entities WHERE file_path = ?`, path)
}

// ListAllEntities returns every entity row, ordered by id, for the indexer
// (§4.F) to enumerate as embedding candidates.
func (db *DB) ListAllEntities() ([]Entity, error) {
	return db.queryEntities(`
		SELECT id, file_path, kind, name, qualified_name, parent_entity_id,
		       start_line, end_line, signature, docstring, language
		FROM entities ORDER BY id`)
}

func (db *DB) queryEntities(query string, args ...interface{}) ([]Entity, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "query entities", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan entity", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func scanEntity(row rowScanner) (Entity, error) {
	var e Entity
	var signature, docstring, language sql.NullString
	err := row.Scan(&e.ID, &e.FilePath, &e.Kind, &e.Name, &e.QualifiedName, &e.ParentEntityID,
		&e.StartLine, &e.EndLine, &signature, &docstring, &language)
	if err != nil {
		return Entity{}, err
	}
	e.Signature = signature.String
	e.Docstring = docstring.String
	e.Language = language.String
	return e, nil
}
