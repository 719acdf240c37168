package prefixcache

// evictIfNeeded runs whole-bucket global LRU eviction when inserting
// incomingPrefixes more buckets would breach MAX_BUCKETS. Each round
// evicts the 20% of buckets with the oldest last-access timestamp (ties
// broken lexicographically); rounds repeat until the projected count
// fits or no tracked bucket is left. This necessarily evicts whole
// prefix chains together, including unrelated commands that merely
// share a short prefix with an evicted one.
func (c *Cache) evictIfNeeded(incomingPrefixes int) {
	for c.shards.count()+incomingPrefixes >= c.cfg.maxBuckets {
		tracked := c.access.len()
		if tracked == 0 {
			return
		}

		evictCount := tracked / 5 // 20%
		if evictCount < 1 {
			evictCount = 1
		}

		victims := c.access.oldest(evictCount)
		c.shards.removeMany(victims)
		for _, p := range victims {
			c.access.delete(p)
		}
	}
}
