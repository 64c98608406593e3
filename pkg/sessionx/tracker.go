// Package sessionx tracks per-token session activity and revocation for the
// comitte service. All state is process memory; a restart forgets every
// session, which simply means each outstanding token looks like a first use
// on its next request.
package sessionx

import (
	"sync"
	"time"
)

const (
	// DefaultInactivityWindow is the sliding window after which an unused
	// token is treated as expired. Configurable per tracker.
	DefaultInactivityWindow = 300 * time.Second

	// RetentionWindow is how long a revoked token's record is kept before
	// the sweep drops it. This is garbage collection, not a security
	// boundary: a revoked token is rejected regardless of sweep timing.
	RetentionWindow = 1 * time.Hour
)

// Tracker holds the revocation set and the last-activity timestamps. The two
// maps are owned exclusively by the tracker; everything else goes through
// Touch/Revoke/IsRevoked/IsExpired/Remaining.
//
// The maps are not updated atomically with respect to each other. A revoke
// racing a touch on the same token may briefly leave an activity record
// behind a revocation entry; every read path checks the revocation map
// first, so a revoked token is never observably active, and Sweep clears
// any such leftovers.
type Tracker struct {
	inactivityWindow time.Duration

	revoked  sync.Map // token -> time.Time (revoked at)
	activity sync.Map // token -> time.Time (last seen)

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker returns a tracker with the given inactivity window. A zero or
// negative window falls back to the default.
func NewTracker(inactivityWindow time.Duration) *Tracker {
	if inactivityWindow <= 0 {
		inactivityWindow = DefaultInactivityWindow
	}
	return &Tracker{
		inactivityWindow: inactivityWindow,
		now:              time.Now,
	}
}

// InactivityWindow reports the configured sliding window.
func (t *Tracker) InactivityWindow() time.Duration {
	return t.inactivityWindow
}

// Touch records activity for a token, moving it from absent to active or
// refreshing its last-activity time. Touching a revoked token is a no-op:
// revocation wins.
func (t *Tracker) Touch(token string) {
	if _, isRevoked := t.revoked.Load(token); isRevoked {
		return
	}
	t.activity.Store(token, t.now())
}

// Revoke moves a token to the revoked state and drops its activity record.
// Revoking twice is not an error; the original revocation time is kept so
// retention is measured from the first revoke.
func (t *Tracker) Revoke(token string) {
	t.revoked.LoadOrStore(token, t.now())
	t.activity.Delete(token)
}

// IsRevoked reports whether a token is in the revocation set.
func (t *Tracker) IsRevoked(token string) bool {
	revokedAt, ok := t.revoked.Load(token)
	if !ok {
		return false
	}

	// Opportunistically drop records past retention. The token was already
	// rejected by the gate for the whole retention window; once its natural
	// expiry has long passed the codec rejects it anyway.
	if t.now().Sub(revokedAt.(time.Time)) > RetentionWindow {
		t.revoked.Delete(token)
		return false
	}

	return true
}

// IsExpired reports whether the token's session has lapsed through
// inactivity. A token with no recorded activity is treated as first use:
// activity is recorded and the session is live. When the window has lapsed
// the token is revoked as a side effect, keeping the two maps disjoint.
func (t *Tracker) IsExpired(token string) bool {
	if _, isRevoked := t.revoked.Load(token); isRevoked {
		return true
	}

	lastActivity, ok := t.activity.Load(token)
	if !ok {
		t.Touch(token)
		return false
	}

	if t.now().Sub(lastActivity.(time.Time)) > t.inactivityWindow {
		t.Revoke(token)
		return true
	}

	return false
}

// Remaining reports the seconds left before the token lapses through
// inactivity: the full window for a never-touched token, zero for a revoked
// one, and never negative.
func (t *Tracker) Remaining(token string) int64 {
	if _, isRevoked := t.revoked.Load(token); isRevoked {
		return 0
	}

	lastActivity, ok := t.activity.Load(token)
	if !ok {
		return int64(t.inactivityWindow / time.Second)
	}

	remaining := t.inactivityWindow - t.now().Sub(lastActivity.(time.Time))
	if remaining < 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// Sweep drops revocation records older than the retention window and any
// activity record left behind by a revoke racing a touch. It returns the
// number of entries removed, which the housekeeping service logs.
func (t *Tracker) Sweep() int {
	now := t.now()
	removed := 0

	t.revoked.Range(func(key, value any) bool {
		if now.Sub(value.(time.Time)) > RetentionWindow {
			t.revoked.Delete(key)
			removed++
		}
		return true
	})

	t.activity.Range(func(key, _ any) bool {
		if _, isRevoked := t.revoked.Load(key); isRevoked {
			t.activity.Delete(key)
			removed++
		}
		return true
	})

	return removed
}
