package store

import "testing"

func TestPutVectorsBatch(t *testing.T) {
	db := newTestDB(t)
	batch := []Vector{
		{Kind: VectorSummary, ObjectID: "a", Model: "m", Dim: 2, Embedding: []float32{1, 0}, ContentHash: "ha"},
		{Kind: VectorSummary, ObjectID: "b", Model: "m", Dim: 2, Embedding: []float32{0, 1}, ContentHash: "hb"},
	}
	if err := db.PutVectorsBatch(batch); err != nil {
		t.Fatal(err)
	}
	count, err := db.VectorCount(VectorSummary)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("VectorCount = %d, want 2", count)
	}
}

func TestGetVectorState_TracksModelAndHash(t *testing.T) {
	db := newTestDB(t)
	if err := db.PutVector(Vector{Kind: VectorEntity, ObjectID: "e1", Model: "nomic", Dim: 3, Embedding: []float32{1, 2, 3}, ContentHash: "hh"}); err != nil {
		t.Fatal(err)
	}
	model, hash, found, err := db.GetVectorState(VectorEntity, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if !found || model != "nomic" || hash != "hh" {
		t.Errorf("got model=%q hash=%q found=%v", model, hash, found)
	}
}

func TestGetVectorContentHash_Missing(t *testing.T) {
	db := newTestDB(t)
	_, found, err := db.GetVectorContentHash(VectorSummary, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestDeleteVector(t *testing.T) {
	db := newTestDB(t)
	if err := db.PutVector(Vector{Kind: VectorSummary, ObjectID: "a", Model: "m", Dim: 1, Embedding: []float32{1}}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteVector(VectorSummary, "a"); err != nil {
		t.Fatal(err)
	}
	count, err := db.VectorCount(VectorSummary)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("VectorCount after delete = %d, want 0", count)
	}
}
