package store

import (
	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// CurrentSchemaVersion is the schema version this build of paranoid-coder
// understands. A database at a newer version cannot be opened safely.
const CurrentSchemaVersion = 1

var migrations = []string{
	// v1: initial schema.
	`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		path TEXT PRIMARY KEY,
		kind TEXT NOT NULL CHECK(kind IN ('file', 'directory')),
		hash TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		extension TEXT,
		language TEXT,
		error TEXT,
		needs_update INTEGER NOT NULL DEFAULT 0,
		model TEXT,
		model_version TEXT,
		prompt_version TEXT,
		context_level INTEGER NOT NULL DEFAULT 0,
		tokens_used INTEGER,
		generation_time_ms INTEGER,
		generated_at TEXT,
		updated_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_kind ON summaries(kind);

	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL REFERENCES summaries(path) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK(kind IN ('class', 'function', 'method')),
		name TEXT NOT NULL,
		qualified_name TEXT NOT NULL,
		parent_entity_id INTEGER REFERENCES entities(id) ON DELETE SET NULL,
		start_line INTEGER,
		end_line INTEGER,
		signature TEXT,
		docstring TEXT,
		language TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entities_file_path ON entities(file_path);
	CREATE INDEX IF NOT EXISTS idx_entities_qualified_name ON entities(qualified_name);
	CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);

	CREATE TABLE IF NOT EXISTS relationships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_entity_id INTEGER REFERENCES entities(id) ON DELETE CASCADE,
		to_entity_id INTEGER REFERENCES entities(id) ON DELETE CASCADE,
		from_file TEXT,
		to_file TEXT,
		kind TEXT NOT NULL CHECK(kind IN ('calls', 'imports', 'inherits', 'instantiates')),
		to_name_hint TEXT,
		location TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_from_entity ON relationships(from_entity_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_to_entity ON relationships(to_entity_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_from_file ON relationships(from_file);
	CREATE INDEX IF NOT EXISTS idx_relationships_to_file ON relationships(to_file);
	CREATE INDEX IF NOT EXISTS idx_relationships_kind ON relationships(kind);

	CREATE TABLE IF NOT EXISTS summary_context (
		path TEXT PRIMARY KEY REFERENCES summaries(path) ON DELETE CASCADE,
		imports_hash TEXT,
		callers_count INTEGER NOT NULL DEFAULT 0,
		callees_count INTEGER NOT NULL DEFAULT 0,
		context_version TEXT
	);

	CREATE TABLE IF NOT EXISTS analysis_file_hashes (
		path TEXT PRIMARY KEY REFERENCES summaries(path) ON DELETE CASCADE,
		content_hash TEXT NOT NULL,
		analyzed_at TEXT
	);

	CREATE TABLE IF NOT EXISTS doc_quality (
		entity_id INTEGER PRIMARY KEY REFERENCES entities(id) ON DELETE CASCADE,
		has_docstring INTEGER NOT NULL DEFAULT 0,
		has_examples INTEGER NOT NULL DEFAULT 0,
		has_type_hints INTEGER NOT NULL DEFAULT 0,
		priority_score REAL NOT NULL DEFAULT 0,
		last_reviewed TEXT
	);

	CREATE TABLE IF NOT EXISTS ignore_patterns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pattern TEXT NOT NULL,
		source TEXT NOT NULL,
		added_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vectors (
		kind TEXT NOT NULL,
		object_id TEXT NOT NULL,
		model TEXT NOT NULL,
		dim INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		content_hash TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (kind, object_id)
	);
	CREATE INDEX IF NOT EXISTS idx_vectors_kind ON vectors(kind);
	`,
}

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "create schema_version table", err)
	}

	current, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if current > CurrentSchemaVersion {
		return pcerrors.New(pcerrors.SchemaIncompatible,
			"database schema version is newer than this build supports").
			WithRemedy(pcerrors.Remedies[pcerrors.SchemaIncompatible])
	}

	for v := current; v < len(migrations); v++ {
		if _, err := db.conn.Exec(migrations[v]); err != nil {
			return pcerrors.Wrap(pcerrors.SchemaIncompatible, "apply schema migration", err)
		}
		if err := db.setSchemaVersion(v + 1); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	row := db.conn.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return 0, nil // no row yet: version 0
	}
	return v, nil
}

func (db *DB) setSchemaVersion(v int) error {
	if _, err := db.conn.Exec(`DELETE FROM schema_version`); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "clear schema_version", err)
	}
	if _, err := db.conn.Exec(`INSERT INTO schema_version (version) VALUES (?)`, v); err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set schema_version", err)
	}
	return nil
}
