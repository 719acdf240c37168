package prefixcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(opts ...Option) *Cache {
	base := []Option{
		WithMaxEntriesPerBucket(5),
		WithCleanupInterval(0), // no background sweeper; tests drive time explicitly
		WithSeeding(false),
	}
	return New(append(base, opts...)...)
}

func TestGet_NewestFirstOrdering(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git status")
	c.Put("git add .")
	c.Put("git commit")

	got := c.Get("g")
	assert.Equal(t, []string{"git commit", "git add .", "git status"}, got)
}

func TestGet_LongerPrefixNarrows(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git branch")
	c.Put("git pull")
	c.Put("git push")

	got := c.Get("git p")
	assert.Equal(t, []string{"push", "pull"}, []string{got[0][len("git "):], got[1][len("git "):]})
	assert.ElementsMatch(t, []string{"git pull", "git push"}, got)
}

func TestGet_CaseInsensitive(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("Get-Process")

	got := c.Get("get-")
	require.Len(t, got, 1)
	assert.Equal(t, "get-process", got[0]) // normalize() lowercases on write too
}

func TestGet_NormalizationEquivalence(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git status")

	assert.Equal(t, c.Get("  GIT  "), c.Get("git"))
}

func TestPut_RespectsMaxPrefixLen(t *testing.T) {
	c := newTestCache(WithMaxPrefixLen(50))
	defer c.Close()

	long := "x" + fmt2Repeat("y", 119) // length 120
	c.Put(long)

	assert.NotEmpty(t, c.Get(long[:50]))
	assert.Empty(t, c.Get(long[:51]))
}

func fmt2Repeat(s string, n int) string {
	out := make([]byte, 0, n*len(s))
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestGet_TTLExpiry(t *testing.T) {
	c := newTestCache(WithTTL(50 * time.Millisecond))
	defer c.Close()

	c.Put("ls")
	time.Sleep(100 * time.Millisecond)

	assert.Empty(t, c.Get("l"))
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestPut_PerBucketBound(t *testing.T) {
	c := newTestCache(WithMaxEntriesPerBucket(5))
	defer c.Close()

	for i := 0; i < 50; i++ {
		c.Put(fmt.Sprintf("git cmd%d", i))
	}

	got := c.Get("git c")
	assert.LessOrEqual(t, len(got), 5)
}

func TestPut_GlobalBucketBound(t *testing.T) {
	c := newTestCache(WithMaxBuckets(32), WithMaxPrefixLen(8))
	defer c.Close()

	for i := 0; i < 500; i++ {
		c.Put(fmt.Sprintf("cmd%d", i))
	}

	assert.LessOrEqual(t, c.Stats().BucketCount, 32)
}

func TestStats_RequestsLaw(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git status")
	c.Get("git")
	c.Get("git")
	c.Get("nope-nope-nope")

	s := c.Stats()
	assert.Equal(t, s.Hits+s.Misses, s.Requests)
	assert.InDelta(t, float64(s.Hits)/float64(s.Requests), s.HitRate, 1e-9)
}

// Empty/whitespace input never creates a bucket and is always a miss.
func TestGetPut_EmptyNormalizationIsNoop(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("   ")
	assert.Equal(t, 0, c.Stats().BucketCount)

	assert.Empty(t, c.Get("   "))
}

func TestRemove_DropsOnlyTargetedBucket(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git status")
	c.Put("go build")

	c.Remove("git")
	assert.Empty(t, c.Get("git"))
	assert.NotEmpty(t, c.Get("go"))
}

func TestClear_ResetsCountersButKeepsUptime(t *testing.T) {
	c := newTestCache()
	defer c.Close()

	c.Put("git status")
	c.Get("git")

	start := c.start
	c.Clear()

	assert.Equal(t, 0, c.Stats().BucketCount)
	assert.Equal(t, uint64(0), c.Stats().Requests)
	assert.Equal(t, start, c.start)
}

// Many concurrent writers/readers preserve the per-bucket and global
// bucket bounds, and never panic or deadlock.
func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(WithMaxBuckets(64), WithMaxEntriesPerBucket(5))
	defer c.Close()

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cmd := fmt.Sprintf("worker%d cmd%d", w, i)
				c.Put(cmd)
				c.Get(cmd[:4])
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().BucketCount, 64)
}

// Background sweeper removes expired entries without being read first.
func TestJanitor_ActiveExpiry(t *testing.T) {
	c := New(
		WithTTL(20*time.Millisecond),
		WithCleanupInterval(10*time.Millisecond),
		WithSeeding(false),
	)
	defer c.Close()

	c.Put("ls -la")
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 0, c.Stats().BucketCount)
}

func TestSeeding_PopulatesWhenEnabled(t *testing.T) {
	c := New(WithSeeding(true), WithCleanupInterval(0))
	defer c.Close()

	assert.NotEmpty(t, c.Get("git"))
}
