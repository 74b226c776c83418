package store

import (
	"database/sql"
	"sort"
	"strconv"
	"time"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// Kind distinguishes file- from directory-level summaries.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Summary is a single row of the summaries table (§3).
type Summary struct {
	Path             string
	Kind             Kind
	Hash             string
	Description      string
	Extension        string
	Language         string
	Error            string
	NeedsUpdate      bool
	Model            string
	ModelVersion     string
	PromptVersion    string
	ContextLevel     int
	TokensUsed       int
	GenerationTimeMs int
	GeneratedAt      time.Time
	UpdatedAt        time.Time
}

// GetSummary fetches a summary by path. found is false if no row exists.
func (db *DB) GetSummary(path string) (s Summary, found bool, err error) {
	row := db.conn.QueryRow(`
		SELECT path, kind, hash, description, extension, language, error,
		       needs_update, model, model_version, prompt_version, context_level,
		       tokens_used, generation_time_ms, generated_at, updated_at
		FROM summaries WHERE path = ?`, path)
	s, err = scanSummary(row)
	if err == sql.ErrNoRows {
		return Summary{}, false, nil
	}
	if err != nil {
		return Summary{}, false, pcerrors.Wrap(pcerrors.IoError, "get summary", err)
	}
	return s, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (Summary, error) {
	var s Summary
	var needsUpdate int
	var generatedAt, updatedAt sql.NullString
	var extension, language, errStr, model, modelVersion, promptVersion sql.NullString
	var tokensUsed, generationTimeMs sql.NullInt64

	err := row.Scan(&s.Path, &s.Kind, &s.Hash, &s.Description, &extension, &language, &errStr,
		&needsUpdate, &model, &modelVersion, &promptVersion, &s.ContextLevel,
		&tokensUsed, &generationTimeMs, &generatedAt, &updatedAt)
	if err != nil {
		return Summary{}, err
	}
	s.Extension = extension.String
	s.Language = language.String
	s.Error = errStr.String
	s.Model = model.String
	s.ModelVersion = modelVersion.String
	s.PromptVersion = promptVersion.String
	s.NeedsUpdate = needsUpdate != 0
	s.TokensUsed = int(tokensUsed.Int64)
	s.GenerationTimeMs = int(generationTimeMs.Int64)
	if generatedAt.Valid {
		s.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt.String)
	}
	if updatedAt.Valid {
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
	}
	return s, nil
}

// UpsertSummary inserts or replaces a summary row.
func (db *DB) UpsertSummary(s Summary) error {
	_, err := db.conn.Exec(`
		INSERT INTO summaries (path, kind, hash, description, extension, language, error,
			needs_update, model, model_version, prompt_version, context_level,
			tokens_used, generation_time_ms, generated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind=excluded.kind, hash=excluded.hash, description=excluded.description,
			extension=excluded.extension, language=excluded.language, error=excluded.error,
			needs_update=excluded.needs_update, model=excluded.model,
			model_version=excluded.model_version, prompt_version=excluded.prompt_version,
			context_level=excluded.context_level, tokens_used=excluded.tokens_used,
			generation_time_ms=excluded.generation_time_ms, generated_at=excluded.generated_at,
			updated_at=excluded.updated_at`,
		s.Path, s.Kind, s.Hash, s.Description, s.Extension, s.Language, s.Error,
		boolToInt(s.NeedsUpdate), s.Model, s.ModelVersion, s.PromptVersion, s.ContextLevel,
		s.TokensUsed, s.GenerationTimeMs, formatTime(s.GeneratedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "upsert summary", err)
	}
	return nil
}

// SetNeedsUpdate flips the needs_update flag for a summary, used by the
// smart-invalidation pass (§4.E) to mark a summary stale without touching
// its content hash.
func (db *DB) SetNeedsUpdate(path string, needsUpdate bool) error {
	_, err := db.conn.Exec(`UPDATE summaries SET needs_update = ? WHERE path = ?`, boolToInt(needsUpdate), path)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "set needs_update", err)
	}
	return nil
}

// DeleteSummary removes a summary and everything that weakly or strongly
// references it: entities (FK cascade takes relationships with them),
// import-only relationships keyed by file path, context, analysis hash, and
// any vectors keyed on the path or its entities (§3's cascading-delete rule).
func (db *DB) DeleteSummary(path string) error {
	return db.WithTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id FROM entities WHERE file_path = ?`, path)
		if err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "list entities for delete", err)
		}
		var entityIDs []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return pcerrors.Wrap(pcerrors.IoError, "scan entity id", err)
			}
			entityIDs = append(entityIDs, id)
		}
		rows.Close()

		if _, err := tx.Exec(`DELETE FROM relationships WHERE from_file = ? OR to_file = ?`, path, path); err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "delete file-level relationships", err)
		}
		for _, id := range entityIDs {
			if _, err := tx.Exec(`DELETE FROM vectors WHERE kind = 'entity' AND object_id = ?`, entityIDFor(id)); err != nil {
				return pcerrors.Wrap(pcerrors.IoError, "delete entity vector", err)
			}
		}
		if _, err := tx.Exec(`DELETE FROM vectors WHERE kind = 'summary' AND object_id = ?`, path); err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "delete summary vector", err)
		}
		if _, err := tx.Exec(`DELETE FROM summaries WHERE path = ?`, path); err != nil {
			return pcerrors.Wrap(pcerrors.IoError, "delete summary", err)
		}
		return nil
	})
}

// ListChildHashes returns the lexicographically sorted child hashes beneath
// a directory path, used by hashutil.TreeHash via the ChildHashLister
// interface. It inspects summaries whose path is an immediate child of
// dirPath.
func (db *DB) ListChildHashes(dirPath string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT hash, path FROM summaries`)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "list child hashes", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash, path string
		if err := rows.Scan(&hash, &path); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan child hash", err)
		}
		if isImmediateChild(dirPath, path) {
			hashes = append(hashes, hash)
		}
	}
	sort.Strings(hashes)
	return hashes, nil
}

// ListSummaries returns every summary row, ordered by path, for the indexer
// (§4.F) to enumerate as embedding candidates.
func (db *DB) ListSummaries() ([]Summary, error) {
	rows, err := db.conn.Query(`
		SELECT path, kind, hash, description, extension, language, error,
		       needs_update, model, model_version, prompt_version, context_level,
		       tokens_used, generation_time_ms, generated_at, updated_at
		FROM summaries ORDER BY path`)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "list summaries", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan summary", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// SummaryState implements hashutil.SummaryLookup.
func (db *DB) SummaryState(path string) (hash string, needsUpdate bool, found bool, err error) {
	s, found, err := db.GetSummary(path)
	if err != nil || !found {
		return "", false, found, err
	}
	return s.Hash, s.NeedsUpdate, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func entityIDFor(id int64) string {
	return "entity:" + strconv.FormatInt(id, 10)
}
