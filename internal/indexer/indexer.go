// Package indexer implements the embedding indexer (§4.F): incremental or
// full-mode staleness detection over summaries and/or entities, batched
// embed calls against the model host, and transactional-per-batch vector
// writes.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	pcerrors "github.com/bradylowe/paranoid-coder/internal/errors"
	"github.com/bradylowe/paranoid-coder/internal/store"
)

// batchSize caps how many texts go into a single embed call (§4.F: "batched
// ... in batches of up to 32 texts per embed call").
const batchSize = 32

// Mode selects how staleness is determined.
type Mode string

const (
	// ModeIncremental only (re-)embeds objects whose vector is missing,
	// stale by model, or stale by content hash.
	ModeIncremental Mode = "incremental"
	// ModeFull marks every eligible object stale, forcing a full re-embed.
	ModeFull Mode = "full"
)

// Embedder is the subset of modelhost.Client the indexer depends on, kept
// narrow so tests can fake it without an HTTP server.
type Embedder interface {
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// DB is the persistence surface the indexer depends on. *store.DB satisfies
// it directly.
type DB interface {
	ListSummaries() ([]store.Summary, error)
	ListAllEntities() ([]store.Entity, error)
	GetVectorState(kind store.VectorKind, objectID string) (model, hash string, found bool, err error)
	PutVectorsBatch(vectors []store.Vector) error
}

// Options configures one indexing run.
type Options struct {
	Mode           Mode
	Model          string
	IndexSummaries bool
	IndexEntities  bool
}

// Stats summarizes one indexing run.
type Stats struct {
	SummariesIndexed int
	SummariesSkipped int
	EntitiesIndexed  int
	EntitiesSkipped  int
}

// Indexer drives the embedding index build/refresh.
type Indexer struct {
	DB       DB
	Embedder Embedder
}

// Run indexes summaries and/or entities per opts, batching embed calls and
// writing each batch's vectors in one transaction.
func (ix *Indexer) Run(ctx context.Context, opts Options) (*Stats, error) {
	stats := &Stats{}

	if opts.IndexSummaries {
		if err := ix.indexSummaries(ctx, opts, stats); err != nil {
			return stats, err
		}
	}
	if opts.IndexEntities {
		if err := ix.indexEntities(ctx, opts, stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

type candidate struct {
	objectID string
	text     string
}

func (ix *Indexer) indexSummaries(ctx context.Context, opts Options, stats *Stats) error {
	summaries, err := ix.DB.ListSummaries()
	if err != nil {
		return err
	}

	var stale []candidate
	for _, s := range summaries {
		// A summary that failed generation (non-empty Error) has no usable
		// description text to embed.
		if s.Description == "" || s.Error != "" {
			stats.SummariesSkipped++
			continue
		}
		isStale, err := ix.isStale(store.VectorSummary, s.Path, opts.Model, s.Description, opts.Mode)
		if err != nil {
			return err
		}
		if !isStale {
			stats.SummariesSkipped++
			continue
		}
		stale = append(stale, candidate{objectID: s.Path, text: s.Description})
	}

	indexed, err := ix.embedAndWriteBatches(ctx, store.VectorSummary, opts.Model, stale)
	if err != nil {
		return err
	}
	stats.SummariesIndexed += indexed
	return nil
}

func (ix *Indexer) indexEntities(ctx context.Context, opts Options, stats *Stats) error {
	entities, err := ix.DB.ListAllEntities()
	if err != nil {
		return err
	}

	var stale []candidate
	for _, e := range entities {
		text := entityEmbeddingText(e)
		objectID := entityObjectID(e.ID)
		isStale, err := ix.isStale(store.VectorEntity, objectID, opts.Model, text, opts.Mode)
		if err != nil {
			return err
		}
		if !isStale {
			stats.EntitiesSkipped++
			continue
		}
		stale = append(stale, candidate{objectID: objectID, text: text})
	}

	indexed, err := ix.embedAndWriteBatches(ctx, store.VectorEntity, opts.Model, stale)
	if err != nil {
		return err
	}
	stats.EntitiesIndexed += indexed
	return nil
}

// isStale implements §4.F step 1: missing vector, model drift, or content
// drift. Full mode treats every object as stale unconditionally.
func (ix *Indexer) isStale(kind store.VectorKind, objectID, model, text string, mode Mode) (bool, error) {
	if mode == ModeFull {
		return true, nil
	}
	storedModel, storedHash, found, err := ix.DB.GetVectorState(kind, objectID)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if storedModel != model {
		return true, nil
	}
	if storedHash != contentHash(text) {
		return true, nil
	}
	return false, nil
}

// embedAndWriteBatches embeds candidates in groups of up to batchSize and
// writes each group's vectors in its own transaction, so a failure partway
// through a large backlog leaves already-written batches intact.
func (ix *Indexer) embedAndWriteBatches(ctx context.Context, kind store.VectorKind, model string, candidates []candidate) (int, error) {
	total := 0
	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.text
		}

		embeddings, err := ix.Embedder.Embed(ctx, model, texts)
		if err != nil {
			return total, err
		}
		if len(embeddings) != len(batch) {
			return total, pcerrors.New(pcerrors.ModelError, "embed returned a different number of vectors than requested")
		}

		vectors := make([]store.Vector, len(batch))
		for i, c := range batch {
			vectors[i] = store.Vector{
				Kind:        kind,
				ObjectID:    c.objectID,
				Model:       model,
				Dim:         len(embeddings[i]),
				Embedding:   embeddings[i],
				ContentHash: contentHash(c.text),
			}
		}
		if err := ix.DB.PutVectorsBatch(vectors); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// entityEmbeddingText builds the text an entity is embedded from: signature
// plus docstring (§4.F: "entity signature+docstring").
func entityEmbeddingText(e store.Entity) string {
	if e.Docstring == "" {
		return e.Signature
	}
	return e.Signature + "\n" + e.Docstring
}

// entityObjectID matches store.entityIDFor's "entity:<id>" scheme, so a
// DeleteSummary cascade and the indexer address the same vector row.
func entityObjectID(id int64) string {
	return "entity:" + strconv.FormatInt(id, 10)
}

func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
