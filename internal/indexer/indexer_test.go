package indexer

import (
	"context"
	"testing"

	"github.com/bradylowe/paranoid-coder/internal/store"
)

type fakeDB struct {
	summaries []store.Summary
	entities  []store.Entity
	vectors   map[string]store.Vector // keyed by kind+":"+objectID
	putCalls  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{vectors: map[string]store.Vector{}}
}

func vecKey(kind store.VectorKind, objectID string) string { return string(kind) + ":" + objectID }

func (f *fakeDB) ListSummaries() ([]store.Summary, error)     { return f.summaries, nil }
func (f *fakeDB) ListAllEntities() ([]store.Entity, error)    { return f.entities, nil }

func (f *fakeDB) GetVectorState(kind store.VectorKind, objectID string) (string, string, bool, error) {
	v, found := f.vectors[vecKey(kind, objectID)]
	if !found {
		return "", "", false, nil
	}
	return v.Model, v.ContentHash, true, nil
}

func (f *fakeDB) PutVectorsBatch(vectors []store.Vector) error {
	f.putCalls++
	for _, v := range vectors {
		f.vectors[vecKey(v.Kind, v.ObjectID)] = v
	}
	return nil
}

type fakeEmbedder struct {
	calls      int
	dimPerCall []int
}

func (f *fakeEmbedder) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	f.calls++
	f.dimPerCall = append(f.dimPerCall, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func TestRun_IndexesSummariesMissingVectors(t *testing.T) {
	db := newFakeDB()
	db.summaries = []store.Summary{
		{Path: "a.py", Description: "does a"},
		{Path: "b.py", Description: "does b"},
	}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "nomic-embed-text", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesIndexed != 2 || emb.calls != 1 {
		t.Errorf("expected both summaries embedded in one batch, got %+v calls=%d", stats, emb.calls)
	}
}

func TestRun_SkipsSummaryWithUnchangedContentAndModel(t *testing.T) {
	db := newFakeDB()
	db.summaries = []store.Summary{{Path: "a.py", Description: "does a"}}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	if _, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexSummaries: true}); err != nil {
		t.Fatal(err)
	}
	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesSkipped != 1 || emb.calls != 1 {
		t.Errorf("expected second run to skip with no new embed call, got %+v calls=%d", stats, emb.calls)
	}
}

func TestRun_ModelDriftForcesReembed(t *testing.T) {
	db := newFakeDB()
	db.summaries = []store.Summary{{Path: "a.py", Description: "does a"}}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "old-model", IndexSummaries: true})
	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "new-model", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesIndexed != 1 || emb.calls != 2 {
		t.Errorf("expected model drift to force re-embedding, got %+v calls=%d", stats, emb.calls)
	}
}

func TestRun_FullModeReembedsEverythingEvenIfUnchanged(t *testing.T) {
	db := newFakeDB()
	db.summaries = []store.Summary{{Path: "a.py", Description: "does a"}}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexSummaries: true})
	stats, err := ix.Run(context.Background(), Options{Mode: ModeFull, Model: "m", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesIndexed != 1 || emb.calls != 2 {
		t.Errorf("expected full mode to re-embed unconditionally, got %+v calls=%d", stats, emb.calls)
	}
}

func TestRun_SkipsSummariesWithNoDescription(t *testing.T) {
	db := newFakeDB()
	db.summaries = []store.Summary{{Path: "a.py", Description: "", Error: "context overflow"}}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesSkipped != 1 || emb.calls != 0 {
		t.Errorf("expected a failed summary to be skipped rather than embedded, got %+v calls=%d", stats, emb.calls)
	}
}

func TestRun_IndexesEntitiesBySignatureAndDocstring(t *testing.T) {
	db := newFakeDB()
	db.entities = []store.Entity{
		{ID: 1, Signature: "f(x)", Docstring: "does a thing"},
	}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexEntities: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.EntitiesIndexed != 1 {
		t.Errorf("expected one entity indexed, got %+v", stats)
	}
	if _, found := db.vectors[vecKey(store.VectorEntity, "entity:1")]; !found {
		t.Error("expected entity vector keyed as entity:1")
	}
}

func TestRun_BatchesLargeCandidateSetsAcrossMultipleEmbedCalls(t *testing.T) {
	db := newFakeDB()
	for i := 0; i < 40; i++ {
		db.summaries = append(db.summaries, store.Summary{Path: string(rune('a' + i)), Description: "desc"})
	}
	emb := &fakeEmbedder{}
	ix := &Indexer{DB: db, Embedder: emb}

	stats, err := ix.Run(context.Background(), Options{Mode: ModeIncremental, Model: "m", IndexSummaries: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SummariesIndexed != 40 || emb.calls != 2 {
		t.Errorf("expected 40 summaries across 2 batches (32+8), got %+v calls=%d dims=%v", stats, emb.calls, emb.dimPerCall)
	}
}
