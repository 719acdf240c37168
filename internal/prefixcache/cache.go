// Package prefixcache implements the prefix-indexed command cache: a
// multi-valued, bounded, LRU-evicted, TTL-expired map from a normalized
// input prefix to the most recent matching commands.
package prefixcache

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Cache answers prefix queries in O(1) amortized time and ingests new
// commands in O(L) time, where L is the indexed prefix length, while
// enforcing the memory and bucket-count bounds. All operations are
// infallible from the caller's point of view: internal errors never
// surface, they are swallowed so the cache stays live.
type Cache struct {
	cfg config

	shards *shardSet
	access *lastAccessTable // per-prefix LRU timestamps, independent of bucket contents

	counters counters
	start    time.Time

	stop chan struct{}
	done chan struct{}
}

// New constructs a Cache with the given options applied over the
// documented defaults. The background sweeper starts immediately
// unless WithCleanupInterval(0) (or negative) is passed.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	k0, k1 := randomHashKey()

	c := &Cache{
		cfg:    cfg,
		shards: newShardSet(cfg.shardCount, k0, k1),
		access: newLastAccessTable(),
		start:  time.Now(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if cfg.seed {
		c.seedDefaults()
	}

	c.startJanitor()

	return c
}

// randomHashKey draws a fresh 128-bit siphash key with crypto/rand, the
// same "never use a predictable key for keyed hashing" discipline the
// teacher repo applies to DNS transaction IDs.
func randomHashKey() (k0, k1 uint64) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the OS entropy source is broken;
		// degrade to a fixed key rather than panic, since a predictable
		// shard key only costs us load balance, not correctness.
		return 0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9
	}
	return binary.LittleEndian.Uint64(buf[0:8]), binary.LittleEndian.Uint64(buf[8:16])
}

// Get returns up to MAX_RETURNED values stored under prefix, newest
// first. A miss is recorded and an empty, non-nil-safe result returned
// when the bucket is absent, empty, or entirely expired.
func (c *Cache) Get(prefix string) []string {
	now := time.Now()
	norm := normalize(prefix)
	if norm == "" {
		c.counters.recordMiss()
		return nil
	}

	b, ok := c.shards.get(norm)
	if !ok {
		c.counters.recordMiss()
		return nil
	}

	values, empty := b.newestFirst(c.cfg.maxReturned, now)
	if empty {
		c.shards.remove(norm)
		c.access.delete(norm)
		c.counters.recordMiss()
		return nil
	}

	c.access.touch(norm, now)
	c.counters.recordHit()
	return values
}

// Put upserts a full command: normalize(command) is indexed at every
// prefix length from 1 to min(len, MAX_PREFIX_LEN). Empty (or
// all-whitespace) commands are silently ignored.
func (c *Cache) Put(command string) {
	now := time.Now()
	norm, prefixes := prefixesOf(command, c.cfg.maxPrefixLen)
	if norm == "" {
		return
	}

	c.evictIfNeeded(len(prefixes))

	for _, p := range prefixes {
		b, _ := c.shards.getOrCreate(p, func() *bucket {
			return newBucket(c.cfg.maxEntriesPerBucket, now)
		})
		b.append(newEntry(norm, now, c.cfg.defaultTTL), now)
		c.access.touch(p, now)
	}
}

// Remove drops prefix's bucket entirely. Other buckets are untouched.
func (c *Cache) Remove(prefix string) {
	norm := normalize(prefix)
	if norm == "" {
		return
	}
	c.shards.remove(norm)
	c.access.delete(norm)
}

// Clear drops every bucket and resets the hit/miss/request counters.
// start (used for Stats().Uptime) is retained.
func (c *Cache) Clear() {
	c.shards.clear()
	c.access.clear()
	c.counters.reset()
}

// Stats returns a snapshot of cache activity and size.
func (c *Cache) Stats() Stats {
	requests := c.counters.requests.Load()
	hits := c.counters.hits.Load()
	misses := c.counters.misses.Load()

	var hitRate float64
	if requests > 0 {
		hitRate = float64(hits) / float64(requests)
	}

	entryCount := 0
	bucketCount := 0
	var memBytes int64
	c.shards.forEach(func(prefix string, b *bucket) {
		bucketCount++
		n := b.len()
		entryCount += n
		memBytes += int64(len(prefix)) + int64(n)*averageEntryOverheadBytes
	})

	return Stats{
		Requests:            requests,
		Hits:                hits,
		Misses:              misses,
		HitRate:             hitRate,
		EntryCount:          entryCount,
		BucketCount:         bucketCount,
		MemoryEstimateBytes: memBytes,
		Uptime:              time.Since(c.start),
	}
}

// averageEntryOverheadBytes estimates the fixed per-entry bookkeeping
// cost (pointers, timestamps, slice header) on top of the stored
// string's own bytes, for Stats().MemoryEstimateBytes. It is a rough
// accounting figure, not a precise allocator measurement.
const averageEntryOverheadBytes = 64

// Close stops the background sweeper. It is safe to call once; a
// second call panics, matching the single-shutdown contract the
// tempuscache library documents for its own Stop().
func (c *Cache) Close() {
	close(c.stop)
	<-c.done
}

// Uptime reports how long this Cache has been running.
func (c *Cache) Uptime() time.Duration {
	return time.Since(c.start)
}
