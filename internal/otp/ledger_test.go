package otp

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanishmail/internal/domain"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGenerate_SixDigitRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestVerify_NotFound(t *testing.T) {
	l := NewLedger()
	_, err := l.Verify("a@x.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerify_HappyPath_ReturnsPendingAndKeepsRecord(t *testing.T) {
	l := NewLedger()
	pending := &PendingUser{Email: "a@x.com", PasswordHash: "hash", DisplayName: "Al"}
	l.Store("a@x.com", "123456", pending, DefaultTTL)

	got, err := l.Verify("a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, pending, got)
	// Record stays until the caller clears it.
	assert.True(t, l.Has("a@x.com"))
	assert.True(t, l.IsVerified("a@x.com"))
}

func TestVerify_CanonicalizesEmail(t *testing.T) {
	l := NewLedger()
	l.Store("  A@X.Com ", "123456", nil, DefaultTTL)
	_, err := l.Verify("a@x.com", "123456")
	require.NoError(t, err)
}

func TestVerify_WrongCode_IncrementsAttempts(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "123456", nil, DefaultTTL)

	_, err := l.Verify("a@x.com", "000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	assert.Contains(t, err.Error(), "4 attempts remaining")

	_, err = l.Verify("a@x.com", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 attempts remaining")
}

func TestVerify_SixthAttemptFailsEvenWithCorrectCode(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "123456", nil, DefaultTTL)

	for i := 0; i < MaxAttempts; i++ {
		_, err := l.Verify("a@x.com", "000000")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	}

	_, err := l.Verify("a@x.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTooManyAttempts))
	// Record is evicted, so the next attempt reports NotFound.
	assert.False(t, l.Has("a@x.com"))
	_, err = l.Verify("a@x.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerify_Expired_DeletesRecord(t *testing.T) {
	clock := newFakeClock()
	l := NewLedgerWithClock(clock.Now)
	l.Store("a@x.com", "123456", nil, 10*time.Minute)

	clock.Advance(11 * time.Minute)

	_, err := l.Verify("a@x.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
	assert.False(t, l.Has("a@x.com"))
}

func TestVerify_ZeroTTL_ExpiresImmediately(t *testing.T) {
	clock := newFakeClock()
	l := NewLedgerWithClock(clock.Now)
	l.Store("a@x.com", "123456", nil, 0)

	clock.Advance(time.Second)

	_, err := l.Verify("a@x.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
}

func TestStore_OverwritesPriorRecord(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "111111", nil, DefaultTTL)
	// Burn some attempts on the first code.
	_, _ = l.Verify("a@x.com", "000000")
	_, _ = l.Verify("a@x.com", "000000")

	l.Store("a@x.com", "222222", nil, DefaultTTL)
	assert.Equal(t, 1, l.Len())

	// Old code no longer works and the attempt counter was reset.
	_, err := l.Verify("a@x.com", "111111")
	assert.Contains(t, err.Error(), "4 attempts remaining")
	_, err = l.Verify("a@x.com", "222222")
	require.NoError(t, err)
}

func TestIsVerified_FalseBeforeVerify_TrueAfter(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "123456", nil, DefaultTTL)
	assert.False(t, l.IsVerified("a@x.com"))

	_, err := l.Verify("a@x.com", "123456")
	require.NoError(t, err)
	assert.True(t, l.IsVerified("a@x.com"))

	l.Clear("a@x.com")
	assert.False(t, l.IsVerified("a@x.com"))
}

func TestIsVerified_FalseAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	l := NewLedgerWithClock(clock.Now)
	l.Store("a@x.com", "123456", nil, 10*time.Minute)
	_, err := l.Verify("a@x.com", "123456")
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	assert.False(t, l.IsVerified("a@x.com"))
}

func TestClear_Idempotent(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "123456", nil, DefaultTTL)
	l.Clear("a@x.com")
	l.Clear("a@x.com")
	assert.False(t, l.Has("a@x.com"))
}

func TestSweep_EvictsExpiredIncludingVerified(t *testing.T) {
	clock := newFakeClock()
	l := NewLedgerWithClock(clock.Now)
	l.Store("old@x.com", "111111", nil, 10*time.Minute)
	_, err := l.Verify("old@x.com", "111111") // verified but abandoned
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	l.Store("fresh@x.com", "222222", nil, 10*time.Minute)

	evicted := l.Sweep()
	assert.Equal(t, 1, evicted)
	assert.False(t, l.Has("old@x.com"))
	assert.True(t, l.Has("fresh@x.com"))
}

func TestStartSweep_StopsOnContextCancel(t *testing.T) {
	l := NewLedger()
	ctx, cancel := context.WithCancel(context.Background())
	l.StartSweep(ctx, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	cancel()
}

func TestConcurrentVerify_NoLostAttempts(t *testing.T) {
	l := NewLedger()
	l.Store("a@x.com", "123456", nil, DefaultTTL)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Verify("a@x.com", "000000")
		}()
	}
	wg.Wait()

	// All three wrong attempts must have been counted.
	_, err := l.Verify("a@x.com", "000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 attempts remaining")
}
