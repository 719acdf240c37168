package prefixcache

import (
	"sync"

	"github.com/dchest/siphash"
)

// shard holds a slice of the global bucket map. Sharding the map (not
// just locking each bucket) keeps bucket creation/removal — which does
// need the map's lock — from serializing across unrelated prefixes,
// the same contention-avoidance a sharded hash map gets by spreading
// its entries across many locks.
type shard struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

// shardSet is the sharded bucket map. The lookup key here is a prefix
// *string* rather than a full record key, so a keyed hash (siphash,
// seeded with a random key
// generated once at construction) spreads short, highly-similar
// prefixes like "g", "gi", "git" across different shards instead of
// piling them into the same one.
type shardSet struct {
	shards    []*shard
	shardMask uint64
	hashKey0  uint64
	hashKey1  uint64
}

func newShardSet(count int, hashKey0, hashKey1 uint64) *shardSet {
	count = nextPowerOfTwo(count)
	ss := &shardSet{
		shards:    make([]*shard, count),
		shardMask: uint64(count - 1),
		hashKey0:  hashKey0,
		hashKey1:  hashKey1,
	}
	for i := range ss.shards {
		ss.shards[i] = &shard{buckets: make(map[string]*bucket)}
	}
	return ss
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (ss *shardSet) shardFor(prefix string) *shard {
	h := siphash.Hash(ss.hashKey0, ss.hashKey1, []byte(prefix))
	return ss.shards[h&ss.shardMask]
}

// get returns the bucket for prefix if present.
func (ss *shardSet) get(prefix string) (*bucket, bool) {
	s := ss.shardFor(prefix)
	s.mu.RLock()
	b, ok := s.buckets[prefix]
	s.mu.RUnlock()
	return b, ok
}

// getOrCreate returns the existing bucket for prefix, creating one via
// makeBucket if absent. created reports whether this call made it.
func (ss *shardSet) getOrCreate(prefix string, makeBucket func() *bucket) (b *bucket, created bool) {
	s := ss.shardFor(prefix)

	s.mu.RLock()
	if b, ok := s.buckets[prefix]; ok {
		s.mu.RUnlock()
		return b, false
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[prefix]; ok {
		return b, false
	}
	b = makeBucket()
	s.buckets[prefix] = b
	return b, true
}

// remove drops prefix's bucket from its shard, if present.
func (ss *shardSet) remove(prefix string) {
	s := ss.shardFor(prefix)
	s.mu.Lock()
	delete(s.buckets, prefix)
	s.mu.Unlock()
}

// count sums the bucket counts across all shards.
func (ss *shardSet) count() int {
	total := 0
	for _, s := range ss.shards {
		s.mu.RLock()
		total += len(s.buckets)
		s.mu.RUnlock()
	}
	return total
}

// clear empties every shard.
func (ss *shardSet) clear() {
	for _, s := range ss.shards {
		s.mu.Lock()
		s.buckets = make(map[string]*bucket)
		s.mu.Unlock()
	}
}

// forEach calls fn for every (prefix, bucket) pair, shard by shard. fn
// must not call back into the shardSet.
func (ss *shardSet) forEach(fn func(prefix string, b *bucket)) {
	for _, s := range ss.shards {
		s.mu.RLock()
		snapshot := make(map[string]*bucket, len(s.buckets))
		for k, v := range s.buckets {
			snapshot[k] = v
		}
		s.mu.RUnlock()
		for k, v := range snapshot {
			fn(k, v)
		}
	}
}

// removeMany deletes the given prefixes from their shards.
func (ss *shardSet) removeMany(prefixes []string) {
	for _, p := range prefixes {
		ss.remove(p)
	}
}
