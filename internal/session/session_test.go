package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/muzee/internal/shared"
)

// setupTestDB creates a file-backed SQLite database with migrations applied
func setupTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func testStores(t *testing.T) map[string]Store {
	db := setupTestDB(t, filepath.Join(t.TempDir(), "session.db"))
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(db),
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Get Missing", func(t *testing.T) {
				v, ok, err := store.Get(ctx, "missing")
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ok || v != "" {
					t.Errorf("expected missing key, got %q (ok=%v)", v, ok)
				}
			})

			t.Run("Set And Get", func(t *testing.T) {
				if err := store.Set(ctx, "muzeeToken", "abc"); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				v, ok, err := store.Get(ctx, "muzeeToken")
				if err != nil || !ok || v != "abc" {
					t.Errorf("expected abc, got %q (ok=%v, err=%v)", v, ok, err)
				}
			})

			t.Run("Set Overwrites", func(t *testing.T) {
				if err := store.Set(ctx, "muzeeToken", "def"); err != nil {
					t.Fatalf("failed to set: %v", err)
				}
				v, _, _ := store.Get(ctx, "muzeeToken")
				if v != "def" {
					t.Errorf("expected def, got %q", v)
				}
			})

			t.Run("Delete", func(t *testing.T) {
				if err := store.Delete(ctx, "muzeeToken"); err != nil {
					t.Fatalf("failed to delete: %v", err)
				}
				if _, ok, _ := store.Get(ctx, "muzeeToken"); ok {
					t.Error("expected key to be deleted")
				}
				if err := store.Delete(ctx, "muzeeToken"); err != nil {
					t.Errorf("deleting a missing key should not fail: %v", err)
				}
			})
		})
	}
}

func TestSQLiteStorePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db := setupTestDB(t, path)
	if err := NewSQLiteStore(db).Set(ctx, "after_path", "/feature/daily-smash"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	db.Close()

	reopened := setupTestDB(t, path)
	defer reopened.Close()

	v, ok, err := NewSQLiteStore(reopened).Get(ctx, "after_path")
	if err != nil || !ok || v != "/feature/daily-smash" {
		t.Errorf("expected value to survive reopen, got %q (ok=%v, err=%v)", v, ok, err)
	}
}

func TestSQLiteStoreErrors(t *testing.T) {
	db := setupTestDB(t, filepath.Join(t.TempDir(), "session.db"))
	store := NewSQLiteStore(db)
	db.Close()

	if _, _, err := store.Get(context.Background(), "k"); !errors.Is(err, shared.ErrStorage) {
		t.Errorf("expected ErrStorage from closed db, got %v", err)
	}
	if err := store.Set(context.Background(), "k", "v"); !errors.Is(err, shared.ErrStorage) {
		t.Errorf("expected ErrStorage from closed db, got %v", err)
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Default Token Key", func(t *testing.T) {
		if got := New(NewMemoryStore(), "").TokenKey(); got != DefaultTokenKey {
			t.Errorf("expected %s, got %s", DefaultTokenKey, got)
		}
	})

	t.Run("Token Lifecycle", func(t *testing.T) {
		store := NewMemoryStore()
		s := New(store, "muzeeToken")

		token, err := s.Token(ctx)
		if err != nil || token != "" {
			t.Fatalf("expected no token, got %q (%v)", token, err)
		}

		if err := s.SetToken(ctx, "t-123"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}
		if v, _, _ := store.Get(ctx, "muzeeToken"); v != "t-123" {
			t.Errorf("expected token under configured key, got %q", v)
		}

		if err := s.ClearToken(ctx); err != nil {
			t.Fatalf("failed to clear token: %v", err)
		}
		if _, ok, _ := store.Get(ctx, "muzeeToken"); ok {
			t.Error("expected configured token key to be removed")
		}
	})

	t.Run("After Path", func(t *testing.T) {
		s := New(NewMemoryStore(), "")

		if err := s.SetAfterPath(ctx, "/status"); err != nil {
			t.Fatalf("failed to set after path: %v", err)
		}
		if p, _ := s.AfterPath(ctx); p != "/status" {
			t.Errorf("expected /status, got %q", p)
		}

		p, err := s.ConsumeAfterPath(ctx)
		if err != nil || p != "/status" {
			t.Errorf("expected /status, got %q (%v)", p, err)
		}
		if p, _ := s.AfterPath(ctx); p != "" {
			t.Errorf("expected after path to be consumed, got %q", p)
		}
		if p, err := s.ConsumeAfterPath(ctx); err != nil || p != "" {
			t.Errorf("consuming twice should yield empty, got %q (%v)", p, err)
		}
	})

	t.Run("Disable Is A Single-Winner Guard", func(t *testing.T) {
		s := New(NewMemoryStore(), "")

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.Disable() {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if winners != 1 {
			t.Errorf("expected exactly one winner, got %d", winners)
		}
		if !s.Disabled() {
			t.Error("expected session to be disabled")
		}

		s.Enable()
		if s.Disabled() {
			t.Error("expected session to be enabled")
		}
		if !s.Disable() {
			t.Error("expected Disable to win again after Enable")
		}
	})
}

func TestHistoryRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, filepath.Join(t.TempDir(), "session.db"))
	defer db.Close()

	repo := NewHistoryRepository(db)

	latest, err := repo.Latest(ctx)
	if err != nil || latest != nil {
		t.Fatalf("expected no logins, got %v (%v)", latest, err)
	}

	first, err := repo.Record(ctx, "/status")
	if err != nil {
		t.Fatalf("failed to record login: %v", err)
	}
	if first.ID == "" {
		t.Error("expected generated ID")
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := repo.Record(ctx, "/feature/live-weather"); err != nil {
		t.Fatalf("failed to record login: %v", err)
	}

	latest, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("failed to query latest: %v", err)
	}
	if latest.ReturnPath != "/feature/live-weather" {
		t.Errorf("expected latest return path /feature/live-weather, got %s", latest.ReturnPath)
	}

	if n, err := repo.Count(ctx); err != nil || n != 2 {
		t.Errorf("expected 2 logins, got %d (%v)", n, err)
	}
}
