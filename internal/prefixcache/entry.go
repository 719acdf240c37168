package prefixcache

import (
	"sync/atomic"
	"time"
)

// entry is a single stored command plus the metadata the cache needs to
// expire and evict it. One entry lives in exactly one bucket's deque.
//
// Invariants: createdAt <= lastAccessAt <= expiresAt; value is non-empty.
type entry struct {
	value string

	createdAt    time.Time
	lastAccessAt atomic.Int64 // UnixNano, mutated on every read/write touch
	expiresAt    time.Time

	sizeEstimate int
}

func newEntry(value string, now time.Time, ttl time.Duration) *entry {
	e := &entry{
		value:        value,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		sizeEstimate: len(value),
	}
	e.lastAccessAt.Store(now.UnixNano())
	return e
}

// expired reports whether e is past its expiry as of now.
func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

func (e *entry) touch(now time.Time) {
	e.lastAccessAt.Store(now.UnixNano())
}

func (e *entry) lastAccess() time.Time {
	return time.Unix(0, e.lastAccessAt.Load())
}
