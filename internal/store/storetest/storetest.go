// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/violet-sunn/RespondXReplitAgent-sub000/internal/store"
)

// New returns a migrated store backed by a file in t.TempDir().
func New(t testing.TB) *store.Store {
	t.Helper()

	s := Unmigrated(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return s
}

// Unmigrated returns a store whose schema has not been created.
func Unmigrated(t testing.TB) *store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "sandbox.db")
	s, err := store.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
