// Package testutil provides shared test helpers for caches, vaults and
// golden text comparisons.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/starford/notionmd/internal/cache"
	"github.com/starford/notionmd/internal/storage"
)

// TestCache opens a render cache in a temporary directory that is closed
// automatically.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "notionmd-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.FS.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// AssertText fails with a unified diff when got differs from want.
func AssertText(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	t.Errorf("text mismatch:\n%s\ngot:\n%q", diff, got)
}
