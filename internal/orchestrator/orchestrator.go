// Package orchestrator implements the plugin-side orchestrator: a
// synchronous facade enforcing a hard per-keystroke wall-clock budget,
// falling back to deterministic offline suggestions whenever the RPC
// round trip doesn't land in time.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bgwork"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/metrics"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

// Caller is the capability the orchestrator needs from the RPC client:
// a single blocking call bounded by ctx. rpcclient.Client satisfies
// this directly.
type Caller interface {
	Call(ctx context.Context, method string, params, result any) error
}

// Orchestrator is never allowed to throw to the shell: every exported
// method returns its best available answer, synthesizing one locally
// when the service is slow, unreachable, or returns nothing useful.
type Orchestrator struct {
	client  Caller
	timeout time.Duration
	warm    *bgwork.Queue
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// Config controls the orchestrator's timing and warm-queue sizing.
type Config struct {
	Timeout       time.Duration // defaults to 15ms
	WarmWorkers   int
	WarmQueue     int
	WarmFreshness time.Duration
}

func defaultConfig() Config {
	return Config{
		Timeout:       15 * time.Millisecond,
		WarmWorkers:   2,
		WarmQueue:     32,
		WarmFreshness: 2 * time.Second,
	}
}

// New builds an Orchestrator around client, applying cfg over the
// documented defaults. A zero Config{} is valid and uses the defaults.
func New(client Caller, cfg Config, logger *zap.Logger, rec *metrics.Recorder) *Orchestrator {
	def := defaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.WarmWorkers <= 0 {
		cfg.WarmWorkers = def.WarmWorkers
	}
	if cfg.WarmQueue <= 0 {
		cfg.WarmQueue = def.WarmQueue
	}
	if cfg.WarmFreshness <= 0 {
		cfg.WarmFreshness = def.WarmFreshness
	}

	return &Orchestrator{
		client:  client,
		timeout: cfg.Timeout,
		warm:    bgwork.NewQueue(cfg.WarmWorkers, cfg.WarmQueue, cfg.WarmFreshness),
		logger:  logger,
		metrics: rec,
	}
}

// GetSuggestions is the hot path driven on every keystroke. It never
// panics and never blocks longer than the configured timeout plus a
// small constant.
func (o *Orchestrator) GetSuggestions(ctx context.Context, userInput, workingDir string) []string {
	return o.GetSuggestionsResponse(ctx, userInput, workingDir).Suggestions
}

// GetSuggestionsResponse is GetSuggestions' full-fidelity form: it
// reports which source the returned suggestions came from, so a caller
// that cares (telemetry, a richer UI) can distinguish a cache/LLM hit
// from a locally synthesized fallback or a cancelled call instead of
// just seeing a plain string slice.
func (o *Orchestrator) GetSuggestionsResponse(ctx context.Context, userInput, workingDir string) rpc.SuggestionResponse {
	start := time.Now()
	fallbackReason := ""
	defer func() {
		o.metrics.RecordOrchestratorCall(time.Since(start), fallbackReason)
	}()

	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" {
		return rpc.EmptySuggestionResponse(rpc.SourceCache, "")
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := rpc.SuggestionRequest{UserInput: userInput, WorkingDir: workingDir, MaxSuggestions: defaultMaxSuggestions}
	var resp rpc.SuggestionResponse

	err := o.client.Call(callCtx, rpc.MethodGetSuggestions, req, &resp)
	if err == nil && len(resp.Suggestions) > 0 {
		return resp
	}

	if err != nil {
		fallbackReason = reasonFor(err)
		o.logger.Debug("rpc call failed, using offline fallback",
			zap.Error(err), zap.String("user_input", trimmed))

		if errors.Is(err, context.Canceled) {
			return rpc.EmptySuggestionResponse(rpc.SourceCancelled, err.Error())
		}
	} else {
		fallbackReason = "empty_response"
	}

	return rpc.SuggestionResponse{
		Suggestions: OfflineFallback(trimmed),
		Source:      rpc.SourceFallback,
		Confidence:  0,
		Warning:     fallbackReason,
	}
}

const defaultMaxSuggestions = 5

func reasonFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "rpc_error"
	}
}

// OfflineFallback synthesizes deterministic suggestions from input
// alone, with no RPC round trip. The rule set is illustrative, not
// exhaustive.
func OfflineFallback(input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(trimmed, "Get-"):
		return []string{
			trimmed + " | Format-Table",
			trimmed + " | Select-Object -First 10",
		}
	case strings.Contains(lower, "process"):
		return []string{"Get-Process | Sort-Object CPU -Descending"}
	default:
		return []string{trimmed + " -?"}
	}
}

// Warm schedules a fire-and-forget prefetch call against the service,
// ignoring its result, used to pre-warm the cache while the user is
// still typing. It never blocks the caller.
func (o *Orchestrator) Warm(userInput, workingDir string) {
	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" {
		return
	}

	req := rpc.SuggestionRequest{UserInput: userInput, WorkingDir: workingDir, MaxSuggestions: defaultMaxSuggestions}
	o.warm.Submit(func(ctx context.Context) {
		var discard struct{}
		_ = o.client.Call(ctx, rpc.MethodTriggerCacheRefresh, req, &discard)
	})
}

// Close drains the warm queue. It does not close the underlying
// client; callers own that lifetime separately.
func (o *Orchestrator) Close() {
	o.warm.Close()
}
