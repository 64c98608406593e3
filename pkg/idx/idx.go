// Package idx generates the ULID correlation ids attached to request logs.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID for the current time. Ids minted by the same process
// are strictly increasing, so interleaved log lines sort in mint order.
func New() ID {
	mu.Lock()
	defer mu.Unlock()

	u := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy)
	return ID(u.String())
}

// String returns the canonical string form.
func (id ID) String() string { return string(id) }
