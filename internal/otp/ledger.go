// Package otp implements the in-memory one-time-passcode ledger used by the
// signup and password-reset flows. Each flow owns its own Ledger instance;
// records are keyed by canonical email and never shared across ledgers.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/vanishmail/internal/domain"
	"github.com/vanishmail/internal/pkg/mailaddr"
)

const (
	// MaxAttempts is the number of wrong codes allowed before the record is evicted.
	MaxAttempts = 5

	// DefaultTTL is how long a stored code stays valid.
	DefaultTTL = 10 * time.Minute

	// SweepInterval is how often the background sweep evicts expired records.
	SweepInterval = 5 * time.Minute
)

// PendingUser is the not-yet-persisted account carried by a signup OTP record.
// The password is already hashed when it enters the ledger.
type PendingUser struct {
	Email        string
	PasswordHash string
	DisplayName  string
}

type record struct {
	code      string
	expiresAt time.Time
	attempts  int
	verified  bool
	pending   *PendingUser
}

// Ledger is a mutex-guarded map of pending OTP records. All read-then-write
// sequences (attempt increment, verify-then-clear) happen under the lock, so
// concurrent verification attempts for the same email cannot lose updates.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

func NewLedger() *Ledger {
	return NewLedgerWithClock(time.Now)
}

// NewLedgerWithClock creates a Ledger with an injected clock so tests can
// control expiry deterministically.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	return &Ledger{records: make(map[string]*record), now: now}
}

// Generate returns a uniformly random 6-digit code in [100000, 999999],
// drawn from crypto/rand.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Store records a code for email, overwriting any prior record. pending may
// be nil (reset flow). The attempt counter always restarts at zero.
func (l *Ledger) Store(email, code string, pending *PendingUser, ttl time.Duration) {
	key := mailaddr.Canonical(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[key] = &record{
		code:      code,
		expiresAt: l.now().Add(ttl),
		pending:   pending,
	}
}

// Verify checks the submitted code against the stored record.
//
// On a match the record is marked verified and kept: the reset flow consumes
// it later via IsVerified + Clear, and the signup flow clears it after the
// account is created. The pending payload (nil for reset records) is returned
// to the caller.
func (l *Ledger) Verify(email, submitted string) (*PendingUser, error) {
	key := mailaddr.Canonical(email)
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok {
		return nil, fmt.Errorf("no verification code found, request a new one: %w", domain.ErrNotFound)
	}
	if l.now().After(rec.expiresAt) {
		delete(l.records, key)
		return nil, fmt.Errorf("verification code expired, request a new one: %w", domain.ErrOTPExpired)
	}
	if rec.attempts >= MaxAttempts {
		delete(l.records, key)
		return nil, fmt.Errorf("too many wrong attempts, request a new code: %w", domain.ErrTooManyAttempts)
	}
	if rec.code != submitted {
		rec.attempts++
		return nil, fmt.Errorf("invalid verification code, %d attempts remaining: %w",
			MaxAttempts-rec.attempts, domain.ErrInvalidCode)
	}
	rec.verified = true
	return rec.pending, nil
}

// IsVerified reports whether email holds a live record that already passed
// verification. This is the gate checked before a password change.
func (l *Ledger) IsVerified(email string) bool {
	key := mailaddr.Canonical(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[key]
	return ok && rec.verified && !l.now().After(rec.expiresAt)
}

// Clear deletes the record for email. Idempotent.
func (l *Ledger) Clear(email string) {
	key := mailaddr.Canonical(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, key)
}

// Has reports whether a record (verified or not) exists for email.
func (l *Ledger) Has(email string) bool {
	key := mailaddr.Canonical(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[key]
	return ok
}

// Len returns the number of live records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Sweep evicts every record past its expiry, including verified reset records
// the user abandoned without changing their password.
func (l *Ledger) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	evicted := 0
	for key, rec := range l.records {
		if now.After(rec.expiresAt) {
			delete(l.records, key)
			evicted++
		}
	}
	return evicted
}

// StartSweep runs Sweep every interval until ctx is cancelled. Bounds memory
// growth from abandoned flows that access-triggered eviction never touches.
func (l *Ledger) StartSweep(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := l.Sweep(); n > 0 {
					slog.Debug("otp sweep evicted expired records", "count", n)
				}
			}
		}
	}()
}
