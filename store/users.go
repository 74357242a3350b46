package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Hussein-Mazeh/TaskTracker/auth"
)

const usersDocVersion = 1

// userEntry is one account as persisted: the role flag plus the encoded
// credential string ("saltHex:digestHex" or a bare legacy digest).
type userEntry struct {
	Admin bool   `json:"admin"`
	Hash  string `json:"hash"`
}

// usersDocument is the on-disk shape of the account store.
type usersDocument struct {
	Version   int                  `json:"version"`
	AdminGate string               `json:"adminGate,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt,omitzero"`
	Users     map[string]userEntry `json:"users"`
}

// UserFile is a file-backed account store. It implements auth.UserStore.
// Usernames are stored under the spelling given at registration and looked
// up case-insensitively.
type UserFile struct {
	paths Paths
}

// NewUserFile returns an account store rooted at the given paths.
func NewUserFile(p Paths) *UserFile {
	return &UserFile{paths: p}
}

func (f *UserFile) load() (usersDocument, error) {
	doc := usersDocument{Version: usersDocVersion, Users: map[string]userEntry{}}

	data, err := os.ReadFile(f.paths.UsersPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read users file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode users file: %w", err)
	}
	if doc.Users == nil {
		doc.Users = map[string]userEntry{}
	}
	return doc, nil
}

func (f *UserFile) save(doc usersDocument) error {
	if err := f.paths.ensureDir(); err != nil {
		return err
	}

	doc.Version = usersDocVersion
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users file: %w", err)
	}
	return writeFileAtomic(f.paths.Dir, "users-*.json", f.paths.UsersPath(), data)
}

// canonical finds the stored spelling matching username, ignoring case.
func canonical(users map[string]userEntry, username string) (string, bool) {
	for name := range users {
		if strings.EqualFold(name, username) {
			return name, true
		}
	}
	return "", false
}

// Lookup resolves a username case-insensitively and returns the canonical
// spelling together with the parsed credential record.
func (f *UserFile) Lookup(username string) (string, auth.CredentialRecord, error) {
	doc, err := f.load()
	if err != nil {
		return "", auth.CredentialRecord{}, err
	}

	name, ok := canonical(doc.Users, username)
	if !ok {
		return "", auth.CredentialRecord{}, auth.ErrUserNotFound
	}

	entry := doc.Users[name]
	rec, err := auth.ParseCredential(entry.Hash)
	if err != nil {
		return "", auth.CredentialRecord{}, fmt.Errorf("account %q: %w", name, err)
	}
	rec.IsAdmin = entry.Admin
	return name, rec, nil
}

// Save writes an account record, replacing any existing entry that matches
// the username case-insensitively.
func (f *UserFile) Save(username string, rec auth.CredentialRecord) error {
	doc, err := f.load()
	if err != nil {
		return err
	}

	name := username
	if existing, ok := canonical(doc.Users, username); ok {
		name = existing
	}
	doc.Users[name] = userEntry{
		Admin: rec.IsAdmin,
		Hash:  auth.EncodeCredential(rec),
	}
	return f.save(doc)
}

// Usernames lists all stored account names in their canonical spelling.
func (f *UserFile) Usernames() ([]string, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Users))
	for name := range doc.Users {
		names = append(names, name)
	}
	return names, nil
}

// AdminGate returns the stored admin-creation digest, or "" when unset.
func (f *UserFile) AdminGate() (string, error) {
	doc, err := f.load()
	if err != nil {
		return "", err
	}
	return doc.AdminGate, nil
}

// SetAdminGate stores the admin-creation digest.
func (f *UserFile) SetAdminGate(digestHex string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.AdminGate = digestHex
	return f.save(doc)
}
