// Package auth implements credential hashing, verification, and the
// interactive login flow with failed-attempt tracking and account blocking.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hussein-Mazeh/TaskTracker/ledger"
)

var (
	// ErrUserNotFound is returned by UserStore.Lookup for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists rejects registration under a taken username.
	ErrUserExists = errors.New("username already exists")
	// ErrEmptyUsername rejects registration with a blank username.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrInvalidPassword is returned by ChangePassword when the current
	// password does not verify.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrStoreUnavailable wraps failures to read or write the account or
	// attempt store. It is the only login error that is operational rather
	// than user-facing.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// UserStore maps usernames to credential records. Lookup is case-insensitive
// and returns the canonical stored spelling.
type UserStore interface {
	Lookup(username string) (canonical string, rec CredentialRecord, err error)
	Save(username string, rec CredentialRecord) error
	Usernames() ([]string, error)
	AdminGate() (digestHex string, err error)
	SetAdminGate(digestHex string) error
}

// AttemptLedger is the slice of the attempt ledger the authenticator needs.
type AttemptLedger interface {
	Get(username string) (ledger.Record, error)
	RecordFailure(username string) (ledger.Record, error)
	RecordSuccess(username string) error
	MaxAttempts() int
}

// Prompter supplies passwords during a login session and decides whether
// to retry after a failed verification.
type Prompter interface {
	ReadPassword() (string, error)
	RetryAfterFailure(failures, maxAttempts int) bool
}

// ResultKind enumerates terminal login outcomes.
type ResultKind int

const (
	// ResultUnknownUser means the username does not exist. It never
	// consumes an attempt slot or creates a ledger entry.
	ResultUnknownUser ResultKind = iota
	// ResultBlocked means the account is locked; UnblockTime says until when.
	ResultBlocked
	// ResultFailure means password verification failed and the caller
	// declined to retry; AttemptsRemaining slots are left.
	ResultFailure
	// ResultSuccess means the password verified; Username carries the
	// canonical spelling and IsAdmin the role flag.
	ResultSuccess
)

// Result is the outcome of one login sequence.
type Result struct {
	Kind              ResultKind
	Username          string
	IsAdmin           bool
	AttemptsRemaining int
	UnblockTime       time.Time
}

// Service orchestrates login, registration, and password changes over an
// injected account store and attempt ledger.
type Service struct {
	users         UserStore
	attempts      AttemptLedger
	now           func() time.Time
	migrateLegacy bool
	log           *slog.Logger
}

// Option adjusts service construction.
type Option func(*Service)

// WithClock substitutes the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLegacyMigration enables re-hashing legacy-scheme records into the
// salted scheme on successful login.
func WithLegacyMigration(enabled bool) Option {
	return func(s *Service) { s.migrateLegacy = enabled }
}

// WithLogger sets the logger used for operational warnings.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService wires an authenticator to its stores.
func NewService(users UserStore, attempts AttemptLedger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		attempts: attempts,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login runs one full login sequence for a username: account lookup,
// lockout check, then password verification rounds driven by the prompter.
// Every failed verification is persisted to the ledger before the prompter
// hears about it. A non-nil error always wraps ErrStoreUnavailable or a
// prompter read failure; all expected conditions arrive as Result kinds.
func (s *Service) Login(username string, p Prompter) (Result, error) {
	canonical, cred, err := s.users.Lookup(username)
	if errors.Is(err, ErrUserNotFound) {
		return Result{Kind: ResultUnknownUser}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: lookup account: %v", ErrStoreUnavailable, err)
	}

	att, err := s.attempts.Get(canonical)
	if err != nil {
		return Result{}, fmt.Errorf("%w: check lockout: %v", ErrStoreUnavailable, err)
	}
	if att.Blocked(s.now()) {
		return Result{Kind: ResultBlocked, UnblockTime: att.BlockedUntil}, nil
	}

	for {
		password, err := p.ReadPassword()
		if err != nil {
			return Result{}, fmt.Errorf("read password: %w", err)
		}

		if Verify(password, cred) {
			if err := s.attempts.RecordSuccess(canonical); err != nil {
				return Result{}, fmt.Errorf("%w: reset attempts: %v", ErrStoreUnavailable, err)
			}
			if cred.Scheme == SchemeLegacySHA256 && s.migrateLegacy {
				s.migrate(canonical, cred, password)
			}
			return Result{Kind: ResultSuccess, Username: canonical, IsAdmin: cred.IsAdmin}, nil
		}

		att, err = s.attempts.RecordFailure(canonical)
		if err != nil {
			return Result{}, fmt.Errorf("%w: record failure: %v", ErrStoreUnavailable, err)
		}
		if att.Failures >= s.attempts.MaxAttempts() {
			return Result{Kind: ResultBlocked, UnblockTime: att.BlockedUntil}, nil
		}
		remaining := s.attempts.MaxAttempts() - att.Failures
		if !p.RetryAfterFailure(att.Failures, s.attempts.MaxAttempts()) {
			return Result{Kind: ResultFailure, AttemptsRemaining: remaining}, nil
		}
	}
}

// migrate re-hashes a legacy credential into the salted scheme. Login has
// already succeeded, so a persistence failure only warrants a warning.
func (s *Service) migrate(username string, cred CredentialRecord, password string) {
	rehashed, err := HashPassword(password)
	if err != nil {
		s.log.Warn("legacy credential migration failed", "user", username, "err", err)
		return
	}
	rehashed.IsAdmin = cred.IsAdmin
	if err := s.users.Save(username, rehashed); err != nil {
		s.log.Warn("legacy credential migration failed", "user", username, "err", err)
	}
}

// Register creates a new account with a salted credential. Usernames are
// unique case-insensitively; the spelling given here becomes canonical.
func (s *Service) Register(username, password string, admin bool) error {
	if username == "" {
		return ErrEmptyUsername
	}
	_, _, err := s.users.Lookup(username)
	switch {
	case err == nil:
		return ErrUserExists
	case !errors.Is(err, ErrUserNotFound):
		return fmt.Errorf("%w: lookup account: %v", ErrStoreUnavailable, err)
	}

	rec, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.IsAdmin = admin
	if err := s.users.Save(username, rec); err != nil {
		return fmt.Errorf("%w: save account: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ChangePassword verifies the current password and rewrites the account's
// salt and digest under the salted scheme.
func (s *Service) ChangePassword(username, current, next string) error {
	canonical, cred, err := s.users.Lookup(username)
	if errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lookup account: %v", ErrStoreUnavailable, err)
	}
	if !Verify(current, cred) {
		return ErrInvalidPassword
	}

	rec, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	rec.IsAdmin = cred.IsAdmin
	if err := s.users.Save(canonical, rec); err != nil {
		return fmt.Errorf("%w: save account: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Usernames lists registered accounts in their canonical spelling.
func (s *Service) Usernames() ([]string, error) {
	names, err := s.users.Usernames()
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", ErrStoreUnavailable, err)
	}
	return names, nil
}

// SetAdminGate stores the digest guarding admin-account creation.
func (s *Service) SetAdminGate(password string) error {
	sum := sha256.Sum256([]byte(password))
	if err := s.users.SetAdminGate(hex.EncodeToString(sum[:])); err != nil {
		return fmt.Errorf("%w: save admin gate: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// VerifyAdminGate checks a candidate against the stored admin-creation
// digest. An unset gate always denies.
func (s *Service) VerifyAdminGate(password string) (bool, error) {
	stored, err := s.users.AdminGate()
	if err != nil {
		return false, fmt.Errorf("%w: load admin gate: %v", ErrStoreUnavailable, err)
	}
	if stored == "" {
		return false, nil
	}
	sum := sha256.Sum256([]byte(password))
	candidate := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1, nil
}
