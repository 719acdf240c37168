package prefixcache

import (
	"sync"
	"time"
)

// bucket is the ordered, oldest-to-newest sequence of entries stored
// under one normalized prefix. Each bucket is mutated under its own
// lock so that writers to unrelated prefixes never contend — the
// sharded map only ever takes its (coarser) lock to create or remove a
// whole bucket, never to touch its contents.
type bucket struct {
	mu       sync.Mutex
	entries  []*entry // oldest at index 0, newest at the end
	maxLen   int
	lastUsed atomic64 // UnixNano of the most recent read or write touching this prefix
}

func newBucket(maxLen int, now time.Time) *bucket {
	b := &bucket{maxLen: maxLen}
	b.lastUsed.store(now)
	return b
}

// append adds a freshly-created entry to the back (newest) of the
// bucket, trimming from the front (oldest) on overflow. Duplicates are
// not deduplicated on insert: the newest insertion always wins
// ordering and older identical values only disappear once FIFO
// overflow pushes them out.
func (b *bucket) append(e *entry, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, e)
	if len(b.entries) > b.maxLen {
		overflow := len(b.entries) - b.maxLen
		b.entries = b.entries[overflow:]
	}
	b.lastUsed.store(now)
}

// sweepExpiredLocked drops expired entries from the front of the
// bucket (entries expire in insertion order, so expired ones always
// cluster at the front) and reports whether the bucket is now empty.
// Caller must hold b.mu.
func (b *bucket) sweepExpiredLocked(now time.Time) (empty bool) {
	i := 0
	for i < len(b.entries) && b.entries[i].expired(now) {
		i++
	}
	if i > 0 {
		b.entries = b.entries[i:]
	}
	return len(b.entries) == 0
}

// newestFirst returns up to n of the bucket's values, most recently
// inserted first, touching each returned entry's lastAccessAt. Expired
// entries are swept first.
func (b *bucket) newestFirst(n int, now time.Time) (values []string, empty bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sweepExpiredLocked(now) {
		return nil, true
	}

	b.lastUsed.store(now)

	count := n
	if count > len(b.entries) {
		count = len(b.entries)
	}
	values = make([]string, count)
	for i := 0; i < count; i++ {
		e := b.entries[len(b.entries)-1-i]
		e.touch(now)
		values[i] = e.value
	}
	return values, false
}

// len reports the current number of entries, without sweeping.
func (b *bucket) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
