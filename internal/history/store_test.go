package history

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/internal/user"
	"github.com/RobinCoderZhao/pdfcompare/pkg/storage"
)

func testDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testUser(t *testing.T, db *storage.DB) int {
	t.Helper()
	id, err := user.NewStore(db).Create(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestSaveAndGet(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db)
	store := NewStore(db)
	ctx := context.Background()

	stats := compare.Statistics{Added: 3, Removed: 1, TotalLeft: 10, TotalRight: 12, ChangeRatio: 0.33}
	id, err := store.Save(ctx, uid, "old.pdf", "new.pdf", stats, "# Report")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	entry, err := store.Get(ctx, uid, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry, got nil")
	}
	if entry.NameA != "old.pdf" || entry.NameB != "new.pdf" {
		t.Fatalf("wrong names: %q, %q", entry.NameA, entry.NameB)
	}
	if entry.Severity != "High" {
		t.Fatalf("expected High severity, got %q", entry.Severity)
	}
	if entry.Stats.Added != 3 {
		t.Fatalf("stats did not round-trip: %+v", entry.Stats)
	}
	if entry.ReportMD != "# Report" {
		t.Fatalf("expected report body, got %q", entry.ReportMD)
	}
}

func TestGet_WrongUser(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db)
	store := NewStore(db)
	ctx := context.Background()

	id, err := store.Save(ctx, uid, "a", "b", compare.Statistics{}, "")
	if err != nil {
		t.Fatal(err)
	}
	entry, err := store.Get(ctx, uid+1, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry != nil {
		t.Fatal("expected nil for another user's entry")
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db)
	store := NewStore(db)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.Save(ctx, uid, name, name, compare.Statistics{}, "body"); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(ctx, uid, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].NameA != "third" || entries[2].NameA != "first" {
		t.Fatalf("entries not newest-first: %v", entries)
	}
	// List omits report bodies
	if entries[0].ReportMD != "" {
		t.Fatalf("expected empty report in listing, got %q", entries[0].ReportMD)
	}
}

func TestList_Limit(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db)
	store := NewStore(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Save(ctx, uid, "a", "b", compare.Statistics{}, ""); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := store.List(ctx, uid, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}
