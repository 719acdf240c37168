package prefixcache

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of cache activity. hits + misses
// always equals requests.
type Stats struct {
	Requests            uint64        `json:"requests"`
	Hits                uint64        `json:"hits"`
	Misses              uint64        `json:"misses"`
	HitRate             float64       `json:"hit_rate"`
	EntryCount          int           `json:"entry_count"`
	BucketCount         int           `json:"bucket_count"`
	MemoryEstimateBytes int64         `json:"memory_estimate_bytes"`
	Uptime              time.Duration `json:"uptime_ns"`
}

// counters holds the atomic fields updated on every Get; a
// separate struct from the public Stats type keeps the hot path free
// of anything but simple atomic adds, separating live atomic.Uint64
// fields from the reported Stats value.
type counters struct {
	requests atomic.Uint64
	hits     atomic.Uint64
	misses   atomic.Uint64
	memBytes atomic.Int64
}

func (c *counters) recordHit() {
	c.requests.Add(1)
	c.hits.Add(1)
}

func (c *counters) recordMiss() {
	c.requests.Add(1)
	c.misses.Add(1)
}

func (c *counters) reset() {
	c.requests.Store(0)
	c.hits.Store(0)
	c.misses.Store(0)
}
