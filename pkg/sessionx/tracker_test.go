package sessionx

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestTracker(window time.Duration) (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(window)
	tracker.now = clock.Now
	return tracker, clock
}

func TestTouchActivatesToken(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	tracker.Touch("t1")

	require.False(t, tracker.IsRevoked("t1"))
	require.Equal(t, int64(300), tracker.Remaining("t1"))
}

func TestRemainingCountsDown(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Touch("t1")
	clock.Advance(120 * time.Second)

	require.Equal(t, int64(180), tracker.Remaining("t1"))

	tracker.Touch("t1") // refresh
	require.Equal(t, int64(300), tracker.Remaining("t1"))
}

func TestRemainingForUntouchedToken(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	// Never-touched tokens report the full window.
	require.Equal(t, int64(300), tracker.Remaining("never-seen"))
}

func TestRevoke(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	tracker.Touch("t1")
	tracker.Revoke("t1")

	require.True(t, tracker.IsRevoked("t1"))
	require.Equal(t, int64(0), tracker.Remaining("t1"))

	// The activity record is gone: the maps stay disjoint.
	_, stillActive := tracker.activity.Load("t1")
	require.False(t, stillActive)
}

func TestRevokeIsIdempotent(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Revoke("t1")
	first, _ := tracker.revoked.Load("t1")

	clock.Advance(10 * time.Second)
	tracker.Revoke("t1")
	second, _ := tracker.revoked.Load("t1")

	require.True(t, tracker.IsRevoked("t1"))
	// Retention runs from the first revocation.
	require.Equal(t, first, second)
}

func TestInactivityExpiryRevokesAsSideEffect(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Touch("t1")
	clock.Advance(301 * time.Second)

	require.True(t, tracker.IsExpired("t1"))
	require.True(t, tracker.IsRevoked("t1"))
	require.Equal(t, int64(0), tracker.Remaining("t1"))
}

func TestIsExpiredWithinWindow(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Touch("t1")
	clock.Advance(299 * time.Second)

	require.False(t, tracker.IsExpired("t1"))
}

func TestIsExpiredFirstUseCountsAsActivity(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	// A token the tracker has never seen is treated as first use, not as
	// lapsed: the check itself records activity.
	require.False(t, tracker.IsExpired("fresh"))
	require.Equal(t, int64(300), tracker.Remaining("fresh"))
}

func TestTouchAfterRevokeIsNoOp(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	tracker.Revoke("t1")
	tracker.Touch("t1")

	require.True(t, tracker.IsRevoked("t1"))
	require.Equal(t, int64(0), tracker.Remaining("t1"))
	_, active := tracker.activity.Load("t1")
	require.False(t, active)
}

func TestRevokedTokenNeverObservablyActive(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	// Force the racy shape directly: activity record behind a revocation.
	tracker.revoked.Store("t1", tracker.now())
	tracker.activity.Store("t1", tracker.now())

	require.True(t, tracker.IsRevoked("t1"))
	require.Equal(t, int64(0), tracker.Remaining("t1"))
	require.True(t, tracker.IsExpired("t1"))

	// Sweep clears the leftover activity entry.
	tracker.Sweep()
	_, active := tracker.activity.Load("t1")
	require.False(t, active)
}

func TestSweepDropsExpiredRevocations(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Revoke("old")
	clock.Advance(RetentionWindow + time.Second)
	tracker.Revoke("new")

	removed := tracker.Sweep()
	require.Equal(t, 1, removed)

	_, oldKept := tracker.revoked.Load("old")
	require.False(t, oldKept)
	require.True(t, tracker.IsRevoked("new"))
}

func TestIsRevokedDropsRecordsPastRetention(t *testing.T) {
	tracker, clock := newTestTracker(300 * time.Second)

	tracker.Revoke("t1")
	require.True(t, tracker.IsRevoked("t1"))

	clock.Advance(RetentionWindow + time.Second)
	require.False(t, tracker.IsRevoked("t1"))
}

func TestNewTrackerDefaultsWindow(t *testing.T) {
	tracker := NewTracker(0)
	require.Equal(t, DefaultInactivityWindow, tracker.InactivityWindow())
}

func TestConcurrentTouchAndRevoke(t *testing.T) {
	tracker, _ := newTestTracker(300 * time.Second)

	var wg sync.WaitGroup
	for i := range 64 {
		token := fmt.Sprintf("t%d", i%8)
		wg.Add(2)
		go func() {
			defer wg.Done()
			tracker.Touch(token)
		}()
		go func() {
			defer wg.Done()
			tracker.Revoke(token)
		}()
	}
	wg.Wait()
	tracker.Sweep()

	// Every token was revoked at some point; none may end up observably
	// active, and after the sweep no activity entries linger.
	for i := range 8 {
		token := fmt.Sprintf("t%d", i)
		require.True(t, tracker.IsRevoked(token))
		require.Equal(t, int64(0), tracker.Remaining(token))
		_, active := tracker.activity.Load(token)
		require.False(t, active)
	}
}
