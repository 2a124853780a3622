package requestlog

import (
	"context"
	"testing"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := Open(dir+"/requests.db", 2)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepoRecordAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, path := range []string{"/a", "/b", "/c"} {
		if err := repo.Record(ctx, Entry{TimestampNs: int64(i), Method: "GET", Path: path, Status: 200}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	if recent[0].Path != "/c" {
		t.Fatalf("expected newest-first order, got %+v", recent)
	}
}

func TestRepoTrimKeepsOnlyRetainCount(t *testing.T) {
	repo := newTestRepo(t) // retainCount = 2
	ctx := context.Background()

	for i, path := range []string{"/a", "/b", "/c"} {
		if err := repo.Record(ctx, Entry{TimestampNs: int64(i), Method: "GET", Path: path, Status: 200}); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Trim(ctx); err != nil {
		t.Fatal(err)
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries after trim, got %d", len(recent))
	}
	if recent[0].Path != "/c" || recent[1].Path != "/b" {
		t.Fatalf("expected the 2 most recent entries retained, got %+v", recent)
	}
}
