package predictor

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bgwork"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/eventbus"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/ratelimit"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

// refreshRatePerSecond and refreshBurst bound how often a single
// client can trigger background pre-warming, independent of the
// bgwork queue's own size limit: fire-and-forget submission says
// nothing about pacing on its own, and an unthrottled caller could
// otherwise dominate the queue.
const (
	refreshRatePerSecond = 10.0
	refreshBurst         = 20
)

// Service implements the RPC surface over a CacheCapability and a
// CompletionProvider. It holds both as
// interfaces injected at construction, never as concrete types looked
// up dynamically.
type Service struct {
	cache    CacheCapability
	provider CompletionProvider
	warm     *bgwork.Queue
	logger   *zap.Logger
	metrics  *metrics.Recorder
	refresh  *ratelimit.Limiter
	events   *eventbus.Bus

	start   time.Time
	running atomic.Bool
}

// New builds a Service. warm may be nil, in which case
// trigger_cache_refresh is served synchronously instead of in the
// background.
func New(cache CacheCapability, provider CompletionProvider, warm *bgwork.Queue, logger *zap.Logger, rec *metrics.Recorder) *Service {
	s := &Service{
		cache:    cache,
		provider: provider,
		warm:     warm,
		logger:   logger,
		metrics:  rec,
		refresh:  ratelimit.New(refreshRatePerSecond, refreshBurst),
		events:   eventbus.New(16),
		start:    time.Now(),
	}
	s.running.Store(true)
	return s
}

// Events returns the bus this Service publishes cache lifecycle
// notifications to (eventbus.TopicCacheCleared, TopicCacheWarmed,
// TopicSuggestionServed). Subscribe before the events you care about
// can fire.
func (s *Service) Events() *eventbus.Bus {
	return s.events
}

// GetSuggestions implements get_suggestions. It
// consults the cache first; on a miss it falls through to the
// completion provider and backfills the cache with whatever the
// provider returns.
func (s *Service) GetSuggestions(ctx context.Context, req rpc.SuggestionRequest) rpc.SuggestionResponse {
	timer := s.metrics.StartSuggestionTimer()
	defer timer.ObserveDuration()

	input := strings.TrimSpace(req.UserInput)
	if input == "" {
		s.metrics.RecordSuggestionSource(string(rpc.SourceCache))
		return rpc.SuggestionResponse{Suggestions: nil, Source: rpc.SourceCache, Confidence: 0}
	}

	limit := req.MaxSuggestions
	if limit <= 0 || limit > maxReturnedCeiling {
		limit = maxReturnedCeiling
	}

	cached := s.cache.Get(input)
	s.metrics.RecordCacheGet(len(cached) > 0)
	if len(cached) > 0 {
		if len(cached) > limit {
			cached = cached[:limit]
		}
		s.metrics.RecordSuggestionSource(string(rpc.SourceCache))
		s.events.Publish(eventbus.TopicSuggestionServed, rpc.SourceCache)
		return rpc.SuggestionResponse{Suggestions: cached, Source: rpc.SourceCache, Confidence: 1}
	}

	suggestions, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("completion provider failed", zap.Error(err), zap.String("user_input", input))
		s.metrics.RecordSuggestionSource(string(rpc.SourceError))
		s.events.Publish(eventbus.TopicSuggestionServed, rpc.SourceError)
		return rpc.SuggestionResponse{Suggestions: nil, Source: rpc.SourceError, Confidence: 0, Warning: err.Error()}
	}

	for _, cmd := range suggestions {
		s.cache.Put(cmd)
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	s.metrics.RecordSuggestionSource(string(rpc.SourceLLM))
	s.events.Publish(eventbus.TopicSuggestionServed, rpc.SourceLLM)
	return rpc.SuggestionResponse{Suggestions: suggestions, Source: rpc.SourceLLM, Confidence: 0.5}
}

// maxReturnedCeiling bounds how many suggestions a single call will
// ever hand back, independent of what the caller asked for.
const maxReturnedCeiling = 5

// Ping implements ping: true while the service is alive, false only
// after Shutdown.
func (s *Service) Ping(ctx context.Context) bool {
	return s.running.Load()
}

// GetStatus implements get_status.
func (s *Service) GetStatus(ctx context.Context) rpc.ServiceStatus {
	return rpc.ServiceStatus{
		IsRunning:     s.running.Load(),
		UptimeSeconds: time.Since(s.start).Seconds(),
	}
}

// TriggerCacheRefresh implements trigger_cache_refresh: fire-and-
// forget pre-warming of the cache via the completion provider. It
// returns immediately; the actual work, if any, runs on
// the bounded background queue so a burst of refresh calls can never
// accumulate unbounded goroutines.
func (s *Service) TriggerCacheRefresh(ctx context.Context, req rpc.SuggestionRequest) {
	input := strings.TrimSpace(req.UserInput)
	if input == "" {
		return
	}

	if len(s.cache.Get(input)) > 0 {
		return // already warm
	}

	if !s.refresh.Allow() {
		s.logger.Debug("cache refresh throttled", zap.String("user_input", input))
		return
	}

	task := func(taskCtx context.Context) {
		suggestions, err := s.provider.Complete(taskCtx, req)
		if err != nil {
			s.logger.Debug("background cache refresh failed", zap.Error(err), zap.String("user_input", input))
			return
		}
		for _, cmd := range suggestions {
			s.cache.Put(cmd)
		}
		if len(suggestions) > 0 {
			s.events.Publish(eventbus.TopicCacheWarmed, input)
		}
	}

	if s.warm == nil {
		task(ctx)
		return
	}
	if !s.warm.Submit(task) {
		s.logger.Debug("cache refresh queue full, dropping request", zap.String("user_input", input))
	}
}

// ClearCache implements clear_cache.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear()
	s.events.Publish(eventbus.TopicCacheCleared, nil)
}

// Shutdown marks the service as no longer running; subsequent Ping
// calls return false.
func (s *Service) Shutdown() {
	s.running.Store(false)
}
