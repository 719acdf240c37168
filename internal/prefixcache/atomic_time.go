package prefixcache

import (
	"sync/atomic"
	"time"
)

// atomic64 stores a time.Time as UnixNano for lock-free reads, the same
// trick entry uses for lastAccessAt (int64 comparisons are cheaper
// than time.Time comparisons and need no extra allocation).
type atomic64 struct {
	nanos atomic.Int64
}

func (a *atomic64) store(t time.Time) {
	a.nanos.Store(t.UnixNano())
}

func (a *atomic64) load() time.Time {
	return time.Unix(0, a.nanos.Load())
}
