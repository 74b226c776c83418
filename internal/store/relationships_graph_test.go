package store

import "testing"

func mustEntity(t *testing.T, db *DB, path string, kind EntityKind, name, qualified string) int64 {
	t.Helper()
	id, err := db.InsertEntity(Entity{FilePath: path, Kind: kind, Name: name, QualifiedName: qualified})
	if err != nil {
		t.Fatalf("InsertEntity(%s): %v", qualified, err)
	}
	return id
}

func TestImportersAndImportsOf(t *testing.T) {
	db := newTestDB(t)
	for _, p := range []string{"/p/a.py", "/p/b.py", "/p/c.py"} {
		if err := db.UpsertSummary(Summary{Path: p, Kind: KindFile, Hash: "h"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.InsertRelationship(Relationship{FromFile: "/p/a.py", ToFile: "/p/b.py", Kind: RelImports}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertRelationship(Relationship{FromFile: "/p/c.py", ToFile: "/p/b.py", Kind: RelImports}); err != nil {
		t.Fatal(err)
	}

	importers, err := db.ImportersOf("/p/b.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(importers) != 2 {
		t.Errorf("ImportersOf = %v, want 2 entries", importers)
	}

	imports, err := db.ImportsOf("/p/a.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(imports) != 1 || imports[0] != "/p/b.py" {
		t.Errorf("ImportsOf = %v, want [/p/b.py]", imports)
	}
}

func TestChildrenAndParentsOf_InheritanceTree(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h"}); err != nil {
		t.Fatal(err)
	}
	base := mustEntity(t, db, "/p/a.py", EntityClass, "Base", "a.Base")
	derived := mustEntity(t, db, "/p/a.py", EntityClass, "Derived", "a.Derived")

	if _, err := db.InsertRelationship(Relationship{
		FromEntityID: nullInt64(derived),
		ToEntityID:   nullInt64(base),
		Kind:         RelInherits,
	}); err != nil {
		t.Fatal(err)
	}

	children, err := db.ChildrenOf(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 || children[0].ID != derived {
		t.Errorf("ChildrenOf(base) = %v, want [Derived]", children)
	}

	parents, err := db.ParentsOf(derived)
	if err != nil {
		t.Fatal(err)
	}
	if len(parents) != 1 || parents[0].ID != base {
		t.Errorf("ParentsOf(derived) = %v, want [Base]", parents)
	}
}

func TestCallersAndCalleesWithLocation(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h"}); err != nil {
		t.Fatal(err)
	}
	caller := mustEntity(t, db, "/p/a.py", EntityFunction, "caller", "a.caller")
	callee := mustEntity(t, db, "/p/a.py", EntityFunction, "callee", "a.callee")

	if _, err := db.InsertRelationship(Relationship{
		FromEntityID: nullInt64(caller),
		ToEntityID:   nullInt64(callee),
		Kind:         RelCalls,
		Location:     "/p/a.py:12",
	}); err != nil {
		t.Fatal(err)
	}

	callers, err := db.CallersWithLocation(callee)
	if err != nil {
		t.Fatal(err)
	}
	if len(callers) != 1 || callers[0].Entity.ID != caller || callers[0].Location != "/p/a.py:12" {
		t.Errorf("CallersWithLocation = %+v", callers)
	}

	callees, err := db.CalleesWithLocation(caller)
	if err != nil {
		t.Fatal(err)
	}
	if len(callees) != 1 || callees[0].Entity.ID != callee || callees[0].Location != "/p/a.py:12" {
		t.Errorf("CalleesWithLocation = %+v", callees)
	}
}

func TestCallerAndCalleeCount(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h"}); err != nil {
		t.Fatal(err)
	}
	f := mustEntity(t, db, "/p/a.py", EntityFunction, "f", "a.f")
	g := mustEntity(t, db, "/p/a.py", EntityFunction, "g", "a.g")
	h := mustEntity(t, db, "/p/a.py", EntityFunction, "h", "a.h")

	if _, err := db.InsertRelationship(Relationship{FromEntityID: nullInt64(g), ToEntityID: nullInt64(f), Kind: RelCalls}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertRelationship(Relationship{FromEntityID: nullInt64(h), ToEntityID: nullInt64(f), Kind: RelCalls}); err != nil {
		t.Fatal(err)
	}

	count, err := db.CallerCount(f)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CallerCount(f) = %d, want 2", count)
	}

	calleeCount, err := db.CalleeCount(g)
	if err != nil {
		t.Fatal(err)
	}
	if calleeCount != 1 {
		t.Errorf("CalleeCount(g) = %d, want 1", calleeCount)
	}
}

func TestResolveRelationshipTarget(t *testing.T) {
	db := newTestDB(t)
	if err := db.UpsertSummary(Summary{Path: "/p/a.py", Kind: KindFile, Hash: "h"}); err != nil {
		t.Fatal(err)
	}
	caller := mustEntity(t, db, "/p/a.py", EntityFunction, "caller", "a.caller")
	target := mustEntity(t, db, "/p/a.py", EntityFunction, "target", "a.target")

	relID, err := db.InsertRelationship(Relationship{
		FromEntityID: nullInt64(caller),
		FromFile:     "/p/a.py",
		Kind:         RelCalls,
		ToNameHint:   "target",
	})
	if err != nil {
		t.Fatal(err)
	}

	before, err := db.CalleesOf(caller)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 0 {
		t.Fatalf("expected no resolved callees before resolution, got %v", before)
	}

	if err := db.ResolveRelationshipTarget(relID, target); err != nil {
		t.Fatal(err)
	}

	after, err := db.CalleesOf(caller)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != 1 || after[0].ID != target {
		t.Errorf("CalleesOf(caller) after resolve = %v, want [target]", after)
	}
}
