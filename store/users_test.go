package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hussein-Mazeh/TaskTracker/auth"
	"github.com/Hussein-Mazeh/TaskTracker/store"
)

func TestUserFileLookupMissing(t *testing.T) {
	f := store.NewUserFile(store.Paths{Dir: t.TempDir()})

	_, _, err := f.Lookup("nobody")
	if !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserFileSaveAndLookup(t *testing.T) {
	dir := t.TempDir()
	f := store.NewUserFile(store.Paths{Dir: dir})

	rec, err := auth.HashPassword("mauve-Tractor_41!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	rec.IsAdmin = true
	if err := f.Save("Alice", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	name, got, err := f.Lookup("alice")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if name != "Alice" {
		t.Fatalf("expected canonical name %q, got %q", "Alice", name)
	}
	if !got.IsAdmin {
		t.Fatal("expected admin flag to round-trip")
	}
	if !auth.Verify("mauve-Tractor_41!", got) {
		t.Fatal("expected stored credential to verify")
	}

	info, err := os.Stat(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatalf("stat users file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestUserFileSaveReplacesCaseInsensitively(t *testing.T) {
	f := store.NewUserFile(store.Paths{Dir: t.TempDir()})

	rec, err := auth.HashPassword("first-Password_1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := f.Save("Alice", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	updated, err := auth.HashPassword("second-Password_2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := f.Save("ALICE", updated); err != nil {
		t.Fatalf("Save: %v", err)
	}

	names, err := f.Usernames()
	if err != nil {
		t.Fatalf("Usernames: %v", err)
	}
	if len(names) != 1 || names[0] != "Alice" {
		t.Fatalf("expected single canonical entry Alice, got %v", names)
	}

	_, got, err := f.Lookup("alice")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !auth.Verify("second-Password_2", got) {
		t.Fatal("expected updated credential to verify")
	}
}

func TestUserFileAdminGate(t *testing.T) {
	f := store.NewUserFile(store.Paths{Dir: t.TempDir()})

	gate, err := f.AdminGate()
	if err != nil {
		t.Fatalf("AdminGate: %v", err)
	}
	if gate != "" {
		t.Fatalf("expected empty gate, got %q", gate)
	}

	if err := f.SetAdminGate("deadbeef"); err != nil {
		t.Fatalf("SetAdminGate: %v", err)
	}
	gate, err = f.AdminGate()
	if err != nil {
		t.Fatalf("AdminGate: %v", err)
	}
	if gate != "deadbeef" {
		t.Fatalf("expected stored gate, got %q", gate)
	}
}

func TestUserFileCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	f := store.NewUserFile(store.Paths{Dir: dir})
	if _, _, err := f.Lookup("alice"); err == nil || errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected a decode error, got %v", err)
	}
}
