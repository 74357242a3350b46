package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hussein-Mazeh/TaskTracker/ledger"
	"github.com/Hussein-Mazeh/TaskTracker/store"
)

func TestAttemptFileMissingIsEmpty(t *testing.T) {
	f := store.NewAttemptFile(store.Paths{Dir: t.TempDir()})

	all, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty ledger, got %v", all)
	}
}

func TestAttemptFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := store.NewAttemptFile(store.Paths{Dir: dir})

	blocked := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	in := map[string]ledger.Record{
		"alice": {Failures: 2},
		"bob":   {Failures: 5, BlockedUntil: blocked},
	}
	if err := f.Store(in); err != nil {
		t.Fatalf("Store: %v", err)
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := out["alice"]; got.Failures != 2 || !got.BlockedUntil.IsZero() {
		t.Fatalf("unexpected alice record: %+v", got)
	}
	if got := out["bob"]; got.Failures != 5 || !got.BlockedUntil.Equal(blocked) {
		t.Fatalf("unexpected bob record: %+v", got)
	}

	info, err := os.Stat(filepath.Join(dir, "security.json"))
	if err != nil {
		t.Fatalf("stat attempts file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestAttemptFileStoreReplacesWholeMapping(t *testing.T) {
	f := store.NewAttemptFile(store.Paths{Dir: t.TempDir()})

	if err := f.Store(map[string]ledger.Record{"alice": {Failures: 3}}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := f.Store(map[string]ledger.Record{"bob": {Failures: 1}}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	all, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := all["alice"]; ok {
		t.Fatal("expected alice entry to be gone after whole-file replace")
	}
	if got := all["bob"]; got.Failures != 1 {
		t.Fatalf("unexpected bob record: %+v", got)
	}
}

func TestAttemptFileCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "security.json"), []byte("{oops"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	f := store.NewAttemptFile(store.Paths{Dir: dir})
	if _, err := f.Load(); err == nil {
		t.Fatal("expected a decode error")
	}
}
