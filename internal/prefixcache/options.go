package prefixcache

import "time"

// Functional options configuring a Cache at construction, following the
// same pattern the tempuscache library uses: New() takes a variadic
// list of Option so new knobs never change its signature.
type Option func(*config)

type config struct {
	maxPrefixLen        int
	maxBuckets          int
	maxEntriesPerBucket int
	maxReturned         int
	defaultTTL          time.Duration
	cleanupInterval     time.Duration
	seed                bool
	shardCount          int
}

func defaultConfig() config {
	return config{
		maxPrefixLen:        50,
		maxBuckets:          1000,
		maxEntriesPerBucket: 5,
		maxReturned:         5,
		defaultTTL:          30 * time.Minute,
		cleanupInterval:     5 * time.Minute,
		seed:                false,
		shardCount:          64,
	}
}

// WithMaxPrefixLen bounds the longest prefix indexed per command.
func WithMaxPrefixLen(n int) Option {
	return func(c *config) { c.maxPrefixLen = n }
}

// WithMaxBuckets bounds the number of distinct prefixes tracked before
// global LRU eviction trims the oldest ones.
func WithMaxBuckets(n int) Option {
	return func(c *config) { c.maxBuckets = n }
}

// WithMaxEntriesPerBucket bounds how many commands one prefix retains
// before FIFO overflow drops the oldest.
func WithMaxEntriesPerBucket(n int) Option {
	return func(c *config) { c.maxEntriesPerBucket = n }
}

// WithMaxReturned bounds how many values Get returns per call.
func WithMaxReturned(n int) Option {
	return func(c *config) { c.maxReturned = n }
}

// WithTTL sets the lifetime of a freshly inserted entry.
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.defaultTTL = d }
}

// WithCleanupInterval sets how often the background sweeper runs. A
// non-positive interval disables the sweeper; lazy expiry on Get still
// applies.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *config) { c.cleanupInterval = d }
}

// WithSeeding pre-populates the cache with a small list of common
// commands at construction. Off by default so tests stay deterministic.
func WithSeeding(enabled bool) Option {
	return func(c *config) { c.seed = enabled }
}

// WithShardCount sets the number of internal map shards (rounded up to
// the next power of two). More shards reduce lock contention on bucket
// creation/removal at the cost of a little memory.
func WithShardCount(n int) Option {
	return func(c *config) { c.shardCount = n }
}
