package predictor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bgwork"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/eventbus"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

func newTestService(t *testing.T, provider CompletionProvider, warm *bgwork.Queue) (*Service, *prefixcache.Cache) {
	t.Helper()
	cache := prefixcache.New(prefixcache.WithCleanupInterval(0), prefixcache.WithSeeding(false))
	t.Cleanup(cache.Close)

	rec := metrics.New(prometheus.NewRegistry())
	return New(cache, provider, warm, zap.NewNop(), rec), cache
}

type failingProvider struct{ err error }

func (p failingProvider) Complete(ctx context.Context, req rpc.SuggestionRequest) ([]string, error) {
	return nil, p.err
}

func TestGetSuggestions_CacheHit(t *testing.T) {
	svc, cache := newTestService(t, NewStaticProvider(nil), nil)
	cache.Put("git status")

	resp := svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "git"})
	assert.Equal(t, rpc.SourceCache, resp.Source)
	assert.Contains(t, resp.Suggestions, "git status")
}

func TestGetSuggestions_FallsThroughToProviderAndBackfillsCache(t *testing.T) {
	provider := NewStaticProvider(map[string][]string{"docker": {"docker ps", "docker images"}})
	svc, cache := newTestService(t, provider, nil)

	resp := svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "docker"})
	require.Equal(t, rpc.SourceLLM, resp.Source)
	assert.ElementsMatch(t, []string{"docker ps", "docker images"}, resp.Suggestions)

	assert.NotEmpty(t, cache.Get("docker"))
}

func TestGetSuggestions_ProviderErrorYieldsSourceError(t *testing.T) {
	svc, _ := newTestService(t, failingProvider{err: errors.New("collaborator unavailable")}, nil)

	resp := svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "anything"})
	assert.Equal(t, rpc.SourceError, resp.Source)
	assert.Equal(t, "collaborator unavailable", resp.Warning)
	assert.Empty(t, resp.Suggestions)
}

func TestGetSuggestions_EmptyInputNeverCallsProvider(t *testing.T) {
	svc, _ := newTestService(t, failingProvider{err: errors.New("must not be called")}, nil)

	resp := svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "   "})
	assert.Empty(t, resp.Suggestions)
}

func TestGetSuggestions_RespectsMaxSuggestions(t *testing.T) {
	svc, cache := newTestService(t, NewStaticProvider(nil), nil)
	cache.Put("git status")
	cache.Put("git stash")
	cache.Put("git show")

	resp := svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "git", MaxSuggestions: 2})
	assert.Len(t, resp.Suggestions, 2)
}

func TestPingAndStatus(t *testing.T) {
	svc, _ := newTestService(t, NewStaticProvider(nil), nil)

	assert.True(t, svc.Ping(context.Background()))
	status := svc.GetStatus(context.Background())
	assert.True(t, status.IsRunning)
	assert.GreaterOrEqual(t, status.UptimeSeconds, 0.0)

	svc.Shutdown()
	assert.False(t, svc.Ping(context.Background()))
}

func TestTriggerCacheRefresh_PopulatesCacheInBackground(t *testing.T) {
	provider := NewStaticProvider(map[string][]string{"kube": {"kubectl get pods"}})
	warm := bgwork.NewQueue(2, 8, 0)
	t.Cleanup(warm.Close)

	svc, cache := newTestService(t, provider, warm)
	svc.TriggerCacheRefresh(context.Background(), rpc.SuggestionRequest{UserInput: "kube"})

	assert.Eventually(t, func() bool {
		return len(cache.Get("kube")) > 0
	}, time.Second, 5*time.Millisecond)
}

func TestTriggerCacheRefresh_SkipsAlreadyWarmPrefix(t *testing.T) {
	svc, cache := newTestService(t, failingProvider{err: errors.New("must not be called")}, nil)
	cache.Put("git status")

	svc.TriggerCacheRefresh(context.Background(), rpc.SuggestionRequest{UserInput: "git"})
}

func TestClearCache(t *testing.T) {
	svc, cache := newTestService(t, NewStaticProvider(nil), nil)
	cache.Put("git status")

	svc.ClearCache(context.Background())
	assert.Empty(t, cache.Get("git"))
}

func TestClearCache_PublishesCacheClearedEvent(t *testing.T) {
	svc, _ := newTestService(t, NewStaticProvider(nil), nil)

	sub := svc.Events().Subscribe(context.Background(), eventbus.TopicCacheCleared)
	defer sub.Close()

	svc.ClearCache(context.Background())

	select {
	case ev := <-sub.Ch:
		assert.Equal(t, eventbus.TopicCacheCleared, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("did not receive cache_cleared event")
	}
}

func TestGetSuggestions_PublishesSuggestionServedEvent(t *testing.T) {
	svc, cache := newTestService(t, NewStaticProvider(nil), nil)
	cache.Put("git status")

	sub := svc.Events().Subscribe(context.Background(), eventbus.TopicSuggestionServed)
	defer sub.Close()

	svc.GetSuggestions(context.Background(), rpc.SuggestionRequest{UserInput: "git"})

	select {
	case ev := <-sub.Ch:
		assert.Equal(t, rpc.SourceCache, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("did not receive suggestion_served event")
	}
}
