package auth_test

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/TaskTracker/auth"
	"github.com/Hussein-Mazeh/TaskTracker/ledger"
)

// memUsers is an in-memory auth.UserStore for exercising the authenticator
// without touching the filesystem.
type memUsers struct {
	users map[string]auth.CredentialRecord
	gate  string
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]auth.CredentialRecord)}
}

func (m *memUsers) Lookup(username string) (string, auth.CredentialRecord, error) {
	if m.err != nil {
		return "", auth.CredentialRecord{}, m.err
	}
	for name, rec := range m.users {
		if strings.EqualFold(name, username) {
			return name, rec, nil
		}
	}
	return "", auth.CredentialRecord{}, auth.ErrUserNotFound
}

func (m *memUsers) Save(username string, rec auth.CredentialRecord) error {
	if m.err != nil {
		return m.err
	}
	for name := range m.users {
		if strings.EqualFold(name, username) {
			m.users[name] = rec
			return nil
		}
	}
	m.users[username] = rec
	return nil
}

func (m *memUsers) Usernames() ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	names := make([]string, 0, len(m.users))
	for name := range m.users {
		names = append(names, name)
	}
	return names, nil
}

func (m *memUsers) AdminGate() (string, error) { return m.gate, m.err }

func (m *memUsers) SetAdminGate(d string) error {
	if m.err != nil {
		return m.err
	}
	m.gate = d
	return nil
}

// scriptPrompter feeds a fixed password sequence and retries while any
// passwords remain. Reading past the script fails the test.
type scriptPrompter struct {
	t         *testing.T
	passwords []string
	reads     int
}

func (p *scriptPrompter) ReadPassword() (string, error) {
	if len(p.passwords) == 0 {
		p.t.Fatal("prompter read past its script")
	}
	pw := p.passwords[0]
	p.passwords = p.passwords[1:]
	p.reads++
	return pw, nil
}

func (p *scriptPrompter) RetryAfterFailure(failures, maxAttempts int) bool {
	return len(p.passwords) > 0
}

type fixture struct {
	users   *memUsers
	backing *ledger.MemoryBacking
	svc     *auth.Service
	now     time.Time
}

func newFixture(t *testing.T, opts ...auth.Option) *fixture {
	t.Helper()
	f := &fixture{
		users:   newMemUsers(),
		backing: ledger.NewMemoryBacking(),
		now:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	attempts := ledger.New(f.backing, ledger.WithClock(clock))
	opts = append([]auth.Option{auth.WithClock(clock)}, opts...)
	f.svc = auth.NewService(f.users, attempts, opts...)
	return f
}

func (f *fixture) addUser(t *testing.T, username, password string, admin bool) {
	t.Helper()
	rec, err := auth.HashPassword(password)
	require.NoError(t, err)
	rec.IsAdmin = admin
	require.NoError(t, f.users.Save(username, rec))
}

func (f *fixture) ledgerRecord(t *testing.T, username string) (ledger.Record, bool) {
	t.Helper()
	all, err := f.backing.Load()
	require.NoError(t, err)
	rec, ok := all[strings.ToLower(username)]
	return rec, ok
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Login("nobody", &scriptPrompter{t: t})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultUnknownUser, result.Kind)

	all, err := f.backing.Load()
	require.NoError(t, err)
	assert.Empty(t, all, "unknown user must not create a ledger entry")
}

func TestLoginSuccessFreshUser(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "carol", "mauve-Tractor_41!", false)

	result, err := f.svc.Login("carol", &scriptPrompter{t: t, passwords: []string{"mauve-Tractor_41!"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)
	assert.Equal(t, "carol", result.Username)
	assert.False(t, result.IsAdmin)

	_, ok := f.ledgerRecord(t, "carol")
	assert.False(t, ok, "successful fresh login leaves no ledger entry")
}

func TestLoginCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "Alice", "mauve-Tractor_41!", true)

	// A failure under one spelling is visible under another.
	result, err := f.svc.Login("ALICE", &scriptPrompter{t: t, passwords: []string{"wrong"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultFailure, result.Kind)

	rec, ok := f.ledgerRecord(t, "alice")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Failures)

	result, err = f.svc.Login("alice", &scriptPrompter{t: t, passwords: []string{"mauve-Tractor_41!"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)
	assert.Equal(t, "Alice", result.Username, "canonical spelling is returned")
	assert.True(t, result.IsAdmin)
}

func TestLoginFailuresAccumulate(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "mauve-Tractor_41!", false)

	// Four wrong passwords in one session, then the caller gives up.
	p := &scriptPrompter{t: t, passwords: []string{"a", "b", "c", "d"}}
	result, err := f.svc.Login("bob", p)
	require.NoError(t, err)
	assert.Equal(t, auth.ResultFailure, result.Kind)
	assert.Equal(t, 1, result.AttemptsRemaining)

	rec, ok := f.ledgerRecord(t, "bob")
	require.True(t, ok)
	assert.Equal(t, 4, rec.Failures)
	assert.True(t, rec.BlockedUntil.IsZero(), "no block before the threshold")
}

func TestLoginFifthFailureBlocks(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "mauve-Tractor_41!", false)

	p := &scriptPrompter{t: t, passwords: []string{"a", "b", "c", "d", "e"}}
	result, err := f.svc.Login("bob", p)
	require.NoError(t, err)
	assert.Equal(t, auth.ResultBlocked, result.Kind)
	assert.Equal(t, f.now.Add(ledger.BlockDuration), result.UnblockTime)

	// A correct password within the window is rejected without any prompt.
	result, err = f.svc.Login("bob", &scriptPrompter{t: t})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultBlocked, result.Kind)
	assert.Equal(t, f.now.Add(ledger.BlockDuration), result.UnblockTime)
}

func TestLoginBlockExpires(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "mauve-Tractor_41!", false)

	p := &scriptPrompter{t: t, passwords: []string{"a", "b", "c", "d", "e"}}
	_, err := f.svc.Login("bob", p)
	require.NoError(t, err)

	f.now = f.now.Add(ledger.BlockDuration + time.Second)

	result, err := f.svc.Login("bob", &scriptPrompter{t: t, passwords: []string{"mauve-Tractor_41!"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)

	_, ok := f.ledgerRecord(t, "bob")
	assert.False(t, ok, "success clears the ledger entry")
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "mauve-Tractor_41!", false)

	p := &scriptPrompter{t: t, passwords: []string{"a", "b", "c", "mauve-Tractor_41!"}}
	result, err := f.svc.Login("bob", p)
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)

	_, ok := f.ledgerRecord(t, "bob")
	assert.False(t, ok)
}

func TestLoginLegacyScheme(t *testing.T) {
	f := newFixture(t)
	sum := sha256.Sum256([]byte("old password"))
	require.NoError(t, f.users.Save("dave", auth.CredentialRecord{
		Scheme: auth.SchemeLegacySHA256,
		Digest: sum[:],
	}))

	result, err := f.svc.Login("dave", &scriptPrompter{t: t, passwords: []string{"old password"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)

	// Migration is off by default: the record stays legacy.
	_, rec, err := f.users.Lookup("dave")
	require.NoError(t, err)
	assert.Equal(t, auth.SchemeLegacySHA256, rec.Scheme)
}

func TestLoginLegacyMigration(t *testing.T) {
	f := newFixture(t, auth.WithLegacyMigration(true))
	sum := sha256.Sum256([]byte("old password"))
	require.NoError(t, f.users.Save("dave", auth.CredentialRecord{
		Scheme:  auth.SchemeLegacySHA256,
		Digest:  sum[:],
		IsAdmin: true,
	}))

	result, err := f.svc.Login("dave", &scriptPrompter{t: t, passwords: []string{"old password"}})
	require.NoError(t, err)
	assert.Equal(t, auth.ResultSuccess, result.Kind)

	_, rec, err := f.users.Lookup("dave")
	require.NoError(t, err)
	assert.Equal(t, auth.SchemePBKDF2SHA256, rec.Scheme)
	assert.True(t, rec.IsAdmin, "role flag survives migration")
	assert.True(t, auth.Verify("old password", rec))
}

func TestLoginStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = errors.New("disk on fire")

	_, err := f.svc.Login("bob", &scriptPrompter{t: t})
	assert.ErrorIs(t, err, auth.ErrStoreUnavailable)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Register("carol", "mauve-Tractor_41!", false))

	assert.ErrorIs(t, f.svc.Register("CAROL", "another-Pass_9", false), auth.ErrUserExists)
	assert.ErrorIs(t, f.svc.Register("", "another-Pass_9", false), auth.ErrEmptyUsername)

	_, rec, err := f.users.Lookup("carol")
	require.NoError(t, err)
	assert.Equal(t, auth.SchemePBKDF2SHA256, rec.Scheme)
	assert.True(t, auth.Verify("mauve-Tractor_41!", rec))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "old-Password_1", true)

	assert.ErrorIs(t, f.svc.ChangePassword("bob", "wrong", "new-Password_2"), auth.ErrInvalidPassword)
	assert.ErrorIs(t, f.svc.ChangePassword("ghost", "x", "y"), auth.ErrUserNotFound)

	_, before, err := f.users.Lookup("bob")
	require.NoError(t, err)

	require.NoError(t, f.svc.ChangePassword("BOB", "old-Password_1", "new-Password_2"))

	_, after, err := f.users.Lookup("bob")
	require.NoError(t, err)
	assert.True(t, auth.Verify("new-Password_2", after))
	assert.False(t, auth.Verify("old-Password_1", after))
	assert.NotEqual(t, before.Salt, after.Salt, "salt is rewritten on password change")
	assert.True(t, after.IsAdmin)
}

func TestAdminGate(t *testing.T) {
	f := newFixture(t)

	ok, err := f.svc.VerifyAdminGate("anything")
	require.NoError(t, err)
	assert.False(t, ok, "unset gate always denies")

	require.NoError(t, f.svc.SetAdminGate("gate-secret"))

	ok, err = f.svc.VerifyAdminGate("gate-secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.VerifyAdminGate("not the secret")
	require.NoError(t, err)
	assert.False(t, ok)
}
