package transcript_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/searchloop/searchloop/internal/transcript"
)

func openStore(t *testing.T) *transcript.Store {
	t.Helper()
	store, err := transcript.Open(filepath.Join(t.TempDir(), "transcripts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	payload := []byte(`[{"role":"system","content":"sys"}]`)
	if err := store.Save(ctx, "session-1", payload); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Load = %s, want %s", got, payload)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "s", []byte(`["old"]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "s", []byte(`["new"]`)); err != nil {
		t.Fatalf("Save (replace): %v", err)
	}

	got, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `["new"]` {
		t.Errorf("expected replaced payload, got %s", got)
	}

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session after upsert, got %d", len(sessions))
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := openStore(t)

	_, err := store.Load(context.Background(), "ghost")
	if !errors.Is(err, transcript.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Save(ctx, id, []byte(`[]`)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	sessions, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "b"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}

	if err := store.Delete(ctx, "b"); !errors.Is(err, transcript.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestStore_RejectsEmptySessionID(t *testing.T) {
	store := openStore(t)

	if err := store.Save(context.Background(), "", []byte(`[]`)); err == nil {
		t.Fatal("expected error for empty session ID")
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "transcripts.db")

	store, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")

	store, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := store.Save(context.Background(), "keep", []byte(`["x"]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening migrates idempotently and preserves rows.
	store, err = transcript.Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer func() { _ = store.Close() }()

	got, err := store.Load(context.Background(), "keep")
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if string(got) != `["x"]` {
		t.Errorf("expected persisted payload, got %s", got)
	}
}
