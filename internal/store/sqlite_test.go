package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/trendscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenSQLite(t.TempDir(), DefaultSQLiteOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func result(id string, at time.Time, topics ...string) *model.ScrapeResult {
	entries := make([]model.TrendEntry, len(topics))
	for i, topic := range topics {
		entries[i] = model.TrendEntry{Topic: topic}
	}
	return model.NewScrapeResult(id, entries, at, model.ProxyEndpoint{Host: "us-ca.proxymesh.com", Port: 31280})
}

var base = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := OpenSQLite(dbDir, DefaultSQLiteOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, SQLiteFile)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dbDir, SQLiteFile) {
			t.Errorf("Path() = %s", s.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails on a missing database", func(t *testing.T) {
		t.Parallel()

		_, err := OpenSQLite(t.TempDir(), SQLiteOptions{CreateIfNotExists: false})
		if !errors.Is(err, ErrStorage) {
			t.Errorf("OpenSQLite() error = %v, want ErrStorage", err)
		}
	})

	t.Run("CreateIfNotExists=false opens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		first, err := OpenSQLite(dir, DefaultSQLiteOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := first.Insert(t.Context(), result("a", base, "#A")); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		_ = first.Close()

		again, err := OpenSQLite(dir, SQLiteOptions{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer again.Close()

		got, err := again.Latest(t.Context())
		if err != nil || got == nil || got.ID != "a" {
			t.Errorf("Latest() = %+v, %v; want record a", got, err)
		}
	})
}

func TestSQLiteStore_InsertLatest(t *testing.T) {
	t.Parallel()

	t.Run("empty store has no latest", func(t *testing.T) {
		t.Parallel()

		got, err := setupTestDB(t).Latest(t.Context())
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if got != nil {
			t.Errorf("Latest() = %+v, want nil", got)
		}
	})

	t.Run("round trip keeps null slots", func(t *testing.T) {
		t.Parallel()

		s := setupTestDB(t)
		want := result("run-1", base, "#A", "#B")
		if err := s.Insert(t.Context(), want); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		got, err := s.Latest(t.Context())
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
		}
		if got.Trend3 != nil || got.Trend5 != nil {
			t.Error("unfilled slots must stay null")
		}
	})

	t.Run("latest is the greatest timestamp, not the last insert", func(t *testing.T) {
		t.Parallel()

		s := setupTestDB(t)
		for _, r := range []*model.ScrapeResult{
			result("middle", base.Add(time.Hour), "#M"),
			result("newest", base.Add(2*time.Hour), "#N"),
			result("oldest", base, "#O"),
		} {
			if err := s.Insert(t.Context(), r); err != nil {
				t.Fatalf("Insert(%s) error = %v", r.ID, err)
			}
		}

		got, err := s.Latest(t.Context())
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if got.ID != "newest" {
			t.Errorf("Latest().ID = %s, want newest", got.ID)
		}
	})

	t.Run("duplicate id is a storage error", func(t *testing.T) {
		t.Parallel()

		s := setupTestDB(t)
		if err := s.Insert(t.Context(), result("dup", base, "#A")); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		err := s.Insert(t.Context(), result("dup", base, "#B"))
		if !errors.Is(err, ErrStorage) {
			t.Errorf("second Insert() error = %v, want ErrStorage", err)
		}
	})
}

func TestSQLiteStore_History(t *testing.T) {
	t.Parallel()

	s := setupTestDB(t)
	for i := range 5 {
		r := result(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute), "#T")
		if err := s.Insert(t.Context(), r); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "limited newest first", limit: 3, want: []string{"e", "d", "c"}},
		{name: "limit above count", limit: 10, want: []string{"e", "d", "c", "b", "a"}},
		{name: "non-positive limit uses the default", limit: 0, want: []string{"e", "d", "c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.History(t.Context(), tt.limit)
			if err != nil {
				t.Fatalf("History() error = %v", err)
			}
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.ID
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("History() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
