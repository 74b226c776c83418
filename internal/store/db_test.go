package store

import (
	"database/sql"
	"errors"
	"testing"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h1"}); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("boom")
	err := db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE summaries SET hash = ? WHERE path = ?`, "h2", "/p/a.py"); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wantErr, got %v", err)
	}

	got, _, err := db.GetSummary("/p/a.py")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != "h1" {
		t.Errorf("hash = %q, want h1 (rollback should have reverted the update)", got.Hash)
	}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h1"}); err != nil {
		t.Fatal(err)
	}

	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE summaries SET hash = ? WHERE path = ?`, "h2", "/p/a.py")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _, err := db.GetSummary("/p/a.py")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != "h2" {
		t.Errorf("hash = %q, want h2", got.Hash)
	}
}

func TestExecQueryQueryRow(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec(`INSERT INTO summaries (path, kind, hash, needs_update) VALUES (?, ?, ?, 0)`, "/p/a.py", KindFile, "h1"); err != nil {
		t.Fatal(err)
	}

	var hash string
	if err := db.QueryRow(`SELECT hash FROM summaries WHERE path = ?`, "/p/a.py").Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if hash != "h1" {
		t.Errorf("hash = %q, want h1", hash)
	}

	rows, err := db.Query(`SELECT path FROM summaries`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	count := 0
	for rows.Next() {
		count++
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
