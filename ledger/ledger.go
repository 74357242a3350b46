// Package ledger tracks failed login attempts per username and enforces
// time-boxed account blocking. The ledger is the sole writer of attempt
// records; every mutation round-trips through the backing store so state
// survives process restarts.
package ledger

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxAttempts is the number of consecutive failures that triggers a block.
	MaxAttempts = 5
	// BlockDuration is how long an account stays blocked once triggered.
	BlockDuration = 30 * time.Minute
)

// Record is one username's attempt state. A zero Record means no prior
// failures. BlockedUntil is the zero time when no block is in force.
type Record struct {
	Failures     int       `json:"failures"`
	BlockedUntil time.Time `json:"blockedUntil,omitzero"`
}

// Blocked reports whether the record holds an active block at the given time.
func (r Record) Blocked(now time.Time) bool {
	return !r.BlockedUntil.IsZero() && now.Before(r.BlockedUntil)
}

// expired reports whether a past block means the record should read as reset.
// Expiry is lazy: the rewrite happens only on the next write.
func (r Record) expired(now time.Time) bool {
	return !r.BlockedUntil.IsZero() && !now.Before(r.BlockedUntil)
}

// Backing loads and stores the whole attempt mapping. Each ledger operation
// is one full load-modify-store cycle, so implementations must make Store
// atomic with respect to concurrent processes.
type Backing interface {
	Load() (map[string]Record, error)
	Store(map[string]Record) error
}

// Ledger applies the attempt-counting policy on top of a backing store.
type Ledger struct {
	backing     Backing
	now         func() time.Time
	maxAttempts int
	blockFor    time.Duration
}

// Option adjusts ledger construction.
type Option func(*Ledger)

// WithClock substitutes the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLimits overrides the attempt threshold and block duration.
func WithLimits(maxAttempts int, blockFor time.Duration) Option {
	return func(l *Ledger) {
		l.maxAttempts = maxAttempts
		l.blockFor = blockFor
	}
}

// New returns a ledger over the given backing store with default limits.
func New(b Backing, opts ...Option) *Ledger {
	l := &Ledger{
		backing:     b,
		now:         time.Now,
		maxAttempts: MaxAttempts,
		blockFor:    BlockDuration,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxAttempts returns the configured attempt threshold.
func (l *Ledger) MaxAttempts() int { return l.maxAttempts }

// key normalizes usernames so differently-cased spellings share one entry.
func key(username string) string { return strings.ToLower(username) }

// Get returns the current record for a username. An absent entry or one
// whose block has expired reads as the zero record.
func (l *Ledger) Get(username string) (Record, error) {
	all, err := l.backing.Load()
	if err != nil {
		return Record{}, fmt.Errorf("load attempts: %w", err)
	}
	rec := all[key(username)]
	if rec.expired(l.now()) {
		return Record{}, nil
	}
	return rec, nil
}

// RecordFailure increments the failure count and, on crossing the threshold,
// sets the block expiry. The updated record is persisted before it is
// returned, so a crash after the call cannot under-count failures.
func (l *Ledger) RecordFailure(username string) (Record, error) {
	all, err := l.backing.Load()
	if err != nil {
		return Record{}, fmt.Errorf("load attempts: %w", err)
	}
	if all == nil {
		all = make(map[string]Record)
	}

	now := l.now()
	rec := all[key(username)]
	if rec.expired(now) {
		rec = Record{}
	}
	rec.Failures++
	if rec.Failures >= l.maxAttempts {
		rec.BlockedUntil = now.Add(l.blockFor)
	}
	all[key(username)] = rec

	if err := l.backing.Store(all); err != nil {
		return Record{}, fmt.Errorf("persist attempts: %w", err)
	}
	return rec, nil
}

// RecordSuccess clears the username's record and persists the change.
func (l *Ledger) RecordSuccess(username string) error {
	all, err := l.backing.Load()
	if err != nil {
		return fmt.Errorf("load attempts: %w", err)
	}
	if _, ok := all[key(username)]; !ok {
		return nil
	}
	delete(all, key(username))
	if err := l.backing.Store(all); err != nil {
		return fmt.Errorf("persist attempts: %w", err)
	}
	return nil
}
