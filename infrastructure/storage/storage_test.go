package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
)

func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "testgen-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	store, err := NewSQLiteStore(filepath.Join(tmpDir, "sessions.db"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}
	return store, cleanup
}

func newState(id string, created time.Time, ttl time.Duration) *entities.SessionState {
	return &entities.SessionState{
		SessionID: id,
		Snapshot:  entities.PageSnapshot{URL: "https://x.test", Title: "Home"},
		TestCases: []entities.TestCase{{ID: "TC_PAGE_1", Title: "Load"}},
		Cursor:    entities.Cursor{ElementType: entities.ElementButton, ElementIndex: 0},
		CreatedAt: created,
		UpdatedAt: created,
		ExpiresAt: created.Add(ttl),
	}
}

// testSessionStore runs the behaviour every SessionStore must share
func testSessionStore(t *testing.T, store interfaces.SessionStore, setNow func(time.Time)) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	setNow(base)

	t.Run("missing", func(t *testing.T) {
		_, err := store.Get(ctx, "sess_missing")
		var notFound *entities.SessionNotFoundError
		if !errors.As(err, &notFound) || notFound.SessionID != "sess_missing" {
			t.Fatalf("got %v, want SessionNotFoundError", err)
		}
	})

	t.Run("put and get", func(t *testing.T) {
		if err := store.Put(ctx, newState("sess_a", base, time.Hour)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := store.Get(ctx, "sess_a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Snapshot.Title != "Home" || len(got.TestCases) != 1 || got.Cursor.ElementType != entities.ElementButton {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("replace", func(t *testing.T) {
		state := newState("sess_a", base, time.Hour)
		state.TestCases = append(state.TestCases, entities.TestCase{ID: "TC_BTN_1"})
		if err := store.Put(ctx, state); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := store.Get(ctx, "sess_a")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(got.TestCases) != 2 {
			t.Errorf("got %d cases, want 2", len(got.TestCases))
		}
	})

	t.Run("list ordered by creation", func(t *testing.T) {
		if err := store.Put(ctx, newState("sess_b", base.Add(-time.Minute), time.Hour)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(ids) != 2 || ids[0] != "sess_b" || ids[1] != "sess_a" {
			t.Errorf("got %v", ids)
		}
	})

	t.Run("expiry", func(t *testing.T) {
		if err := store.Put(ctx, newState("sess_old", base.Add(-2*time.Hour), time.Hour)); err != nil {
			t.Fatalf("Put: %v", err)
		}
		expired, err := store.ListExpired(ctx, base)
		if err != nil {
			t.Fatalf("ListExpired: %v", err)
		}
		if len(expired) != 1 || expired[0] != "sess_old" {
			t.Errorf("expired = %v", expired)
		}
		if _, err := store.Get(ctx, "sess_old"); !errors.Is(err, entities.ErrSessionNotFound) {
			t.Errorf("expired session returned %v", err)
		}
		if expired, _ := store.ListExpired(ctx, base); len(expired) != 0 {
			t.Errorf("expired session not evicted on Get: %v", expired)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := store.Delete(ctx, "sess_a"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := store.Delete(ctx, "sess_a"); err != nil {
			t.Fatalf("second Delete: %v", err)
		}
		if _, err := store.Get(ctx, "sess_a"); !errors.Is(err, entities.ErrSessionNotFound) {
			t.Errorf("deleted session returned %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	testSessionStore(t, store, func(now time.Time) { store.now = func() time.Time { return now } })
}

func TestSQLiteStore(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	testSessionStore(t, store, func(now time.Time) { store.now = func() time.Time { return now } })
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	state := newState("sess_a", time.Now(), time.Hour)
	if err := store.Put(ctx, state); err != nil {
		t.Fatalf("Put: %v", err)
	}

	state.TestCases = append(state.TestCases, entities.TestCase{ID: "TC_X"})
	got, _ := store.Get(ctx, "sess_a")
	got.TestCases = append(got.TestCases, entities.TestCase{ID: "TC_Y"})

	again, _ := store.Get(ctx, "sess_a")
	if len(again.TestCases) != 1 {
		t.Errorf("stored state was mutated: %d cases", len(again.TestCases))
	}
}

func TestSnapshotFiles(t *testing.T) {
	dir := t.TempDir()
	files, err := NewSnapshotFiles(dir)
	if err != nil {
		t.Fatalf("NewSnapshotFiles: %v", err)
	}

	snap := &entities.PageSnapshot{
		URL:     "https://x.test",
		Title:   "Home",
		Buttons: []entities.Element{{Text: "Login", ID: "login"}},
	}
	path, err := files.SaveSnapshot("x.test/home page", snap)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("snapshot written outside storage dir: %s", path)
	}
	if filepath.Base(path) != "x.test_home_page.json" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	loaded, err := files.LoadSnapshot(filepath.Base(path))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Title != "Home" || len(loaded.Buttons) != 1 || loaded.Buttons[0].ID != "login" {
		t.Errorf("got %+v", loaded)
	}

	if _, err := files.LoadSnapshot(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing snapshot")
	}
}
