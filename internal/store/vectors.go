package store

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"math"
	"sort"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
)

// VectorKind distinguishes summary-level from entity-level embeddings
// (§4.F: indexer can run over either kind).
type VectorKind string

const (
	VectorSummary VectorKind = "summary"
	VectorEntity  VectorKind = "entity"
)

// Vector is one embedding row, keyed by (kind, object_id).
type Vector struct {
	Kind        VectorKind
	ObjectID    string
	Model       string
	Dim         int
	Embedding   []float32
	ContentHash string
}

// Match is a single nearest-neighbor search result.
type Match struct {
	ObjectID string
	Score    float64
}

// modernc.org/sqlite has no pure-Go vector/ANN extension in this
// dependency set; embeddings are stored as raw little-endian float32 BLOBs
// and nearest-neighbor search is a brute-force cosine-similarity scan
// (§4.C). Acceptable at the single-project, tens-of-thousands-of-vectors
// scale this tool targets.

// PutVector upserts an embedding.
func (db *DB) PutVector(v Vector) error {
	blob, err := encodeVector(v.Embedding)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO vectors (kind, object_id, model, dim, embedding, content_hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(kind, object_id) DO UPDATE SET
			model=excluded.model, dim=excluded.dim, embedding=excluded.embedding,
			content_hash=excluded.content_hash, updated_at=excluded.updated_at`,
		v.Kind, v.ObjectID, v.Model, v.Dim, blob, v.ContentHash)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "put vector", err)
	}
	return nil
}

// PutVectorsBatch upserts vectors inside a single transaction, so a batch of
// embeddings from one `embed` call is written atomically (§4.F: "Index
// writes are transactional per batch").
func (db *DB) PutVectorsBatch(vectors []Vector) error {
	return db.WithTx(func(tx *sql.Tx) error {
		for _, v := range vectors {
			blob, err := encodeVector(v.Embedding)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`
				INSERT INTO vectors (kind, object_id, model, dim, embedding, content_hash, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
				ON CONFLICT(kind, object_id) DO UPDATE SET
					model=excluded.model, dim=excluded.dim, embedding=excluded.embedding,
					content_hash=excluded.content_hash, updated_at=excluded.updated_at`,
				v.Kind, v.ObjectID, v.Model, v.Dim, blob, v.ContentHash)
			if err != nil {
				return pcerrors.Wrap(pcerrors.IoError, "put vector batch", err)
			}
		}
		return nil
	})
}

// GetVectorContentHash returns the content hash the stored embedding for
// (kind, objectID) was computed from, used by the indexer's staleness
// check (§4.F) without decoding the embedding itself.
func (db *DB) GetVectorContentHash(kind VectorKind, objectID string) (hash string, found bool, err error) {
	row := db.conn.QueryRow(`SELECT content_hash FROM vectors WHERE kind = ? AND object_id = ?`, kind, objectID)
	err = row.Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, pcerrors.Wrap(pcerrors.IoError, "get vector content hash", err)
	}
	return hash, true, nil
}

// VectorCount returns how many vectors of kind are stored, used by the
// query router's IndexEmpty check (§4.G: "require the vector index be
// non-empty").
func (db *DB) VectorCount(kind VectorKind) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM vectors WHERE kind = ?`, kind).Scan(&n); err != nil {
		return 0, pcerrors.Wrap(pcerrors.IoError, "count vectors", err)
	}
	return n, nil
}

// GetVectorState returns the model and content hash the stored embedding for
// (kind, objectID) was written with, used by the indexer's staleness check
// (§4.F: stale if the configured model differs from the stored one, or the
// content hash has drifted).
func (db *DB) GetVectorState(kind VectorKind, objectID string) (model, hash string, found bool, err error) {
	row := db.conn.QueryRow(`SELECT model, content_hash FROM vectors WHERE kind = ? AND object_id = ?`, kind, objectID)
	err = row.Scan(&model, &hash)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, pcerrors.Wrap(pcerrors.IoError, "get vector state", err)
	}
	return model, hash, true, nil
}

// DeleteVector removes a single embedding, e.g. when its backing entity or
// summary is deleted.
func (db *DB) DeleteVector(kind VectorKind, objectID string) error {
	_, err := db.conn.Exec(`DELETE FROM vectors WHERE kind = ? AND object_id = ?`, kind, objectID)
	if err != nil {
		return pcerrors.Wrap(pcerrors.IoError, "delete vector", err)
	}
	return nil
}

// NearestNeighbors scans all vectors of kind, scores them by cosine
// similarity against query, and returns the top-k matches descending by
// score. This is the brute-force equivalent of a vector-extension ANN
// search (§4.C, §4.G retrieval step).
func (db *DB) NearestNeighbors(kind VectorKind, query []float32, k int) ([]Match, error) {
	rows, err := db.conn.Query(`SELECT object_id, embedding FROM vectors WHERE kind = ?`, kind)
	if err != nil {
		return nil, pcerrors.Wrap(pcerrors.IoError, "scan vectors", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var objectID string
		var blob []byte
		if err := rows.Scan(&objectID, &blob); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "scan vector row", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{ObjectID: objectID, Score: cosineSimilarity(query, vec)})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func encodeVector(v []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, f := range v {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "encode vector", err)
		}
	}
	return buf.Bytes(), nil
}

func decodeVector(blob []byte) ([]float32, error) {
	n := len(blob) / 4
	out := make([]float32, n)
	r := bytes.NewReader(blob)
	for i := 0; i < n; i++ {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, pcerrors.Wrap(pcerrors.IoError, "decode vector", err)
		}
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
