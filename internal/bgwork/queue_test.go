package bgwork

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsSubmittedTask(t *testing.T) {
	q := NewQueue(2, 8, 0)
	defer q.Close()

	var ran atomic.Bool
	done := make(chan struct{})
	ok := q.Submit(func(ctx context.Context) {
		ran.Store(true)
		close(done)
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	assert.True(t, ran.Load())
}

func TestQueue_DiscardsStaleTasks(t *testing.T) {
	q := NewQueue(1, 1, 10*time.Millisecond)
	defer q.Close()

	block := make(chan struct{})
	require.True(t, q.Submit(func(ctx context.Context) { <-block }))

	ran := make(chan struct{}, 1)
	require.True(t, q.Submit(func(ctx context.Context) { ran <- struct{}{} }))

	time.Sleep(30 * time.Millisecond)
	close(block)

	select {
	case <-ran:
		t.Fatal("stale task should have been discarded, not run")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 1, q.Stats().Discarded)
}

func TestQueue_RejectsWhenFull(t *testing.T) {
	q := NewQueue(1, 1, 0)
	defer q.Close()

	block := make(chan struct{})
	require.True(t, q.Submit(func(ctx context.Context) { <-block }))
	require.True(t, q.Submit(func(ctx context.Context) {}))

	ok := q.Submit(func(ctx context.Context) {})
	assert.False(t, ok)

	close(block)
	assert.Equal(t, 1, q.Stats().Rejected)
}

func TestQueue_PanicRecoveredWithoutKillingWorker(t *testing.T) {
	q := NewQueue(1, 4, 0)
	defer q.Close()

	require.True(t, q.Submit(func(ctx context.Context) { panic("boom") }))

	done := make(chan struct{})
	require.True(t, q.Submit(func(ctx context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker appears dead after a panicking task")
	}
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := NewQueue(1, 1, 0)
	q.Close()
	assert.NotPanics(t, func() { q.Close() })
	assert.False(t, q.Submit(func(ctx context.Context) {}))
}
