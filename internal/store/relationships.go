package store

import (
	"database/sql"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// RelationshipKind enumerates the edge types the graph extractor emits
// (§4.D step 3).
type RelationshipKind string

const (
	RelCalls        RelationshipKind = "calls"
	RelImports      RelationshipKind = "imports"
	RelInherits     RelationshipKind = "inherits"
	RelInstantiates RelationshipKind = "instantiates"
)

// Relationship is a directed edge in the code graph. FromEntityID/ToEntityID
// are set once resolution succeeds; ToNameHint carries the unresolved
// textual reference (qualified or simple name) so a later pass can retry
// resolution once more of the graph has been extracted.
type Relationship struct {
	ID           int64
	FromEntityID sql.NullInt64
	ToEntityID   sql.NullInt64
	FromFile     string
	ToFile       string
	Kind         RelationshipKind
	ToNameHint   string
	Location     string
}

// InsertRelationship inserts a single relationship edge.
func (db *DB) InsertRelationship(r Relationship) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO relationships (from_entity_id, to_entity_id, from_file, to_file, kind, to_name_hint, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.FromEntityID, r.ToEntityID, r.FromFile, r.ToFile, r.Kind, r.ToNameHint, r.Location)
	if err != nil {
		return 0, pcerrors.Wrap(pcerrors.IoError, "insert relationship", err)
	}
	return res.LastInsertId()
}

// ResolveRelationshipTarget sets to_entity_id on a relationship once its
// to_name_hint has been matched to a concrete entity (§4.D step 4).
func (db *DB) ResolveRelationshipTarget(relationshipID, entityID int64) error {
	_, err := db.conn.Exec(`UPDATE relationships SET to_entity_id = ? WHERE id = ?`, entityID, relationshipID)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "resolve relationship target", err)
	}
	return nil
}

// CallersOf returns all entities with a "calls" edge pointing at entityID
// (graphapi get_callers).
func (db *DB) CallersOf(entityID int64) ([]Entity, error) {
	return db.entitiesViaRelationship(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language
		FROM relationships r JOIN entities e ON e.id = r.from_entity_id
		WHERE r.kind = 'calls' AND r.to_entity_id = ?`, entityID)
}

// CalleesOf returns all entities a "calls" edge from entityID points at
// (graphapi get_callees).
func (db *DB) CalleesOf(entityID int64) ([]Entity, error) {
	return db.entitiesViaRelationship(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language
		FROM relationships r JOIN entities e ON e.id = r.to_entity_id
		WHERE r.kind = 'calls' AND r.from_entity_id = ?`, entityID)
}

// ImportersOf returns file paths that import filePath (graphapi get_importers).
func (db *DB) ImportersOf(filePath string) ([]string, error) {
	return db.filesViaRelationship(`
		SELECT DISTINCT from_file FROM relationships WHERE kind = 'imports' AND to_file = ?`, filePath)
}

// ImportsOf returns file paths that filePath imports (graphapi get_imports).
func (db *DB) ImportsOf(filePath string) ([]string, error) {
	return db.filesViaRelationship(`
		SELECT DISTINCT to_file FROM relationships WHERE kind = 'imports' AND from_file = ?`, filePath)
}

// ChildrenOf returns subclasses/implementors of entityID via "inherits"
// edges (graphapi get_inheritance_tree, downward direction).
func (db *DB) ChildrenOf(entityID int64) ([]Entity, error) {
	return db.entitiesViaRelationship(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language
		FROM relationships r JOIN entities e ON e.id = r.from_entity_id
		WHERE r.kind = 'inherits' AND r.to_entity_id = ?`, entityID)
}

// ParentsOf returns superclasses of entityID via "inherits" edges
// (graphapi get_inheritance_tree, upward direction).
func (db *DB) ParentsOf(entityID int64) ([]Entity, error) {
	return db.entitiesViaRelationship(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language
		FROM relationships r JOIN entities e ON e.id = r.to_entity_id
		WHERE r.kind = 'inherits' AND r.from_entity_id = ?`, entityID)
}

// RelatedEntity pairs an entity with the location of the specific edge that
// connects it, for graphapi's caller/callee listings.
type RelatedEntity struct {
	Entity   Entity
	Location string
}

// CallersWithLocation returns, for each "calls" edge pointing at entityID,
// the calling entity and that edge's location (graphapi get_callers).
func (db *DB) CallersWithLocation(entityID int64) ([]RelatedEntity, error) {
	return db.relatedEntitiesWithLocation(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language, r.location
		FROM relationships r JOIN entities e ON e.id = r.from_entity_id
		WHERE r.kind = 'calls' AND r.to_entity_id = ?`, entityID)
}

// CalleesWithLocation returns, for each "calls" edge from entityID, the
// called entity and that edge's location (graphapi get_callees).
func (db *DB) CalleesWithLocation(entityID int64) ([]RelatedEntity, error) {
	return db.relatedEntitiesWithLocation(`
		SELECT e.id, e.file_path, e.kind, e.name, e.qualified_name, e.parent_entity_id,
		       e.start_line, e.end_line, e.signature, e.docstring, e.language, r.location
		FROM relationships r JOIN entities e ON e.id = r.to_entity_id
		WHERE r.kind = 'calls' AND r.from_entity_id = ?`, entityID)
}

func (db *DB) relatedEntitiesWithLocation(query string, args ...interface{}) ([]RelatedEntity, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "query related entities with location", err)
	}
	defer rows.Close()

	var out []RelatedEntity
	for rows.Next() {
		var e Entity
		var signature, docstring, language, location sql.NullString
		err := rows.Scan(&e.ID, &e.FilePath, &e.Kind, &e.Name, &e.QualifiedName, &e.ParentEntityID,
			&e.StartLine, &e.EndLine, &signature, &docstring, &language, &location)
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan related entity with location", err)
		}
		e.Signature = signature.String
		e.Docstring = docstring.String
		e.Language = language.String
		out = append(out, RelatedEntity{Entity: e, Location: location.String})
	}
	return out, nil
}

// CallerCount and CalleeCount back the smart-invalidation thresholds of
// §4.E (summary_context.callers_count / callees_count drift detection).
func (db *DB) CallerCount(entityID int64) (int, error) {
	return db.countRelationships(`SELECT COUNT(*) FROM relationships WHERE kind = 'calls' AND to_entity_id = ?`, entityID)
}

func (db *DB) CalleeCount(entityID int64) (int, error) {
	return db.countRelationships(`SELECT COUNT(*) FROM relationships WHERE kind = 'calls' AND from_entity_id = ?`, entityID)
}

func (db *DB) countRelationships(query string, args ...interface{}) (int, error) {
	var n int
	if err := db.conn.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, pcerrors.Wrap(pcerrors.IoError, "count relationships", err)
	}
	return n, nil
}

func (db *DB) entitiesViaRelationship(query string, args ...interface{}) ([]Entity, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "query related entities", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan related entity", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (db *DB) filesViaRelationship(query string, args ...interface{}) ([]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "query related files", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f sql.NullString
		if err := rows.Scan(&f); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan related file", err)
		}
		if f.Valid && f.String != "" {
			out = append(out, f.String)
		}
	}
	return out, nil
}
