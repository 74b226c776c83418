package store

import "testing"

func TestSetNeedsUpdate(t *testing.T) {
	db := newTestDB(t)
	path := "/p/a.py"
	if err := db.UpsertSummary(Summary{Path: path, Kind: KindFile, Hash: "h1"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetNeedsUpdate(path, true); err != nil {
		t.Fatal(err)
	}
	got, _, err := db.GetSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.NeedsUpdate {
		t.Error("expected NeedsUpdate=true after SetNeedsUpdate")
	}
}

func TestListSummaries_OrderedByPath(t *testing.T) {
	db := newTestDB(t)
	for _, p := range []string{"/p/b.py", "/p/a.py"} {
		if err := db.UpsertSummary(Summary{Path: p, Kind: KindFile, Hash: "h"}); err != nil {
			t.Fatal(err)
		}
	}
	summaries, err := db.ListSummaries()
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 || summaries[0].Path != "/p/a.py" || summaries[1].Path != "/p/b.py" {
		t.Errorf("ListSummaries = %v, want sorted by path", summaries)
	}
}

func TestSummaryState_ImplementsSummaryLookup(t *testing.T) {
	db := newTestDB(t)
	path := "/p/a.py"
	if err := db.UpsertSummary(Summary{Path: path, Kind: KindFile, Hash: "h1", NeedsUpdate: true}); err != nil {
		t.Fatal(err)
	}
	hash, needsUpdate, found, err := db.SummaryState(path)
	if err != nil {
		t.Fatal(err)
	}
	if !found || hash != "h1" || !needsUpdate {
		t.Errorf("got hash=%q needsUpdate=%v found=%v", hash, needsUpdate, found)
	}
}

func TestSummaryState_Missing(t *testing.T) {
	db := newTestDB(t)
	_, _, found, err := db.SummaryState("/nope")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected not found")
	}
}
