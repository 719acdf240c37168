package prefixcache

import "time"

// startJanitor launches the background sweeper that removes expired
// entries on a fixed cadence, the "active expiration" half of the dual
// lazy/active strategy the tempuscache library uses — owned and
// cancelled by the Cache itself rather than registered into a global
// timer/event bus. If cleanupInterval is non-positive the sweeper
// never starts and the cache relies solely on lazy expiry inside Get.
func (c *Cache) startJanitor() {
	if c.cfg.cleanupInterval <= 0 {
		close(c.done)
		return
	}

	ticker := time.NewTicker(c.cfg.cleanupInterval)

	go func() {
		defer close(c.done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// sweep removes expired entries from every bucket, dropping any bucket
// that becomes empty. A panic inside a single bucket sweep is
// recovered and swallowed so one bad bucket can't take the sweeper
// down.
func (c *Cache) sweep() {
	now := time.Now()
	var emptied []string

	c.shards.forEach(func(prefix string, b *bucket) {
		func() {
			defer func() { _ = recover() }()
			b.mu.Lock()
			empty := b.sweepExpiredLocked(now)
			b.mu.Unlock()
			if empty {
				emptied = append(emptied, prefix)
			}
		}()
	})

	for _, p := range emptied {
		c.shards.remove(p)
		c.access.delete(p)
	}
}
