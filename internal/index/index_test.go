package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/testutil"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "termblog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := PostRow{
		Slug:      "hello",
		Path:      "/posts/2024/01/02-hello.md",
		Title:     "Hello World",
		Date:      "2024-01-02",
		Checksum:  "abc123",
		Tags:      []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertPost(row, "This is a hello world post."); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	cs, err := db.GetChecksum("hello")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{Slug: "del", Path: "/posts/del.md", Checksum: "x"}, "body")

	if err := db.DeletePost("del"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if cs, _ := db.GetChecksum("del"); cs != "" {
		t.Errorf("deleted post still has checksum %q", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{Slug: "up", Path: "/posts/up.md", Title: "Old", Checksum: "1"}, "old body")
	_ = db.UpsertPost(PostRow{Slug: "up", Path: "/posts/up.md", Title: "New", Checksum: "2"}, "new body")

	cs, _ := db.GetChecksum("up")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	all, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected a single row, got %v", all)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{Slug: "s", Path: "/posts/s.md", Title: "Search Me", Checksum: "1"}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Slug != "s" || results[0].Path != "/posts/s.md" {
		t.Errorf("search results = %+v, want 1 hit for s", results)
	}
}

func TestContains_Substring(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{Slug: "a", Path: "/a.md", Date: "2020-01-01", Checksum: "1"}, "Building things")
	_ = db.UpsertPost(PostRow{Slug: "b", Path: "/b.md", Date: "2021-01-01", Checksum: "2"}, "rebuilding more")
	_ = db.UpsertPost(PostRow{Slug: "c", Path: "/c.md", Date: "2022-01-01", Checksum: "3"}, "100% done")

	got, err := db.Contains("build")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Contains(build) = %v, want [b a]", got)
	}

	got, _ = db.Contains("0%")
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("Contains(0%%) = %v, want [c]", got)
	}
	got, _ = db.Contains("_")
	if len(got) != 0 {
		t.Errorf("underscore must be literal, got %v", got)
	}
}

func TestSync(t *testing.T) {
	dir := testutil.WriteContent(t, testutil.Blog())
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	lib, err := catalog.NewLibrary(store, "")
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)

	stats, err := Sync(db, lib.Current(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 3 {
		t.Errorf("first sync = %+v", stats)
	}

	stats, _ = Sync(db, lib.Current(), quietLogger())
	if stats.Indexed != 0 || stats.Skipped != 3 {
		t.Errorf("second sync should skip unchanged posts: %+v", stats)
	}

	_ = os.Remove(filepath.Join(dir, "posts", "2024", "03", "05-vim-tips.md"))
	c, err := lib.Reload()
	if err != nil {
		t.Fatal(err)
	}
	stats, _ = Sync(db, c, quietLogger())
	if stats.Removed != 1 {
		t.Errorf("stale post not removed: %+v", stats)
	}
	if cs, _ := db.GetChecksum("vim-tips"); cs != "" {
		t.Error("vim-tips still indexed")
	}

	slugs, _ := db.Contains("terminal")
	if len(slugs) != 1 || slugs[0] != "building-a-blog" {
		t.Errorf("Contains(terminal) = %v", slugs)
	}
}
