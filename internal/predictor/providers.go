package predictor

import (
	"context"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
)

// CacheCapability is the narrow surface the service facade needs from
// the prefix cache: {get, put, remove, clear, stats}. The facade holds
// this interface directly rather than looking methods up by name at
// runtime, the rearchitected form of the source's reflection-based
// adapter between cache layers.
type CacheCapability interface {
	Get(prefix string) []string
	Put(command string)
	Remove(prefix string)
	Clear()
	Stats() prefixcache.Stats
}

var _ CacheCapability = (*prefixcache.Cache)(nil)

// CompletionProvider is the capability interface standing in for the
// out-of-scope LLM collaborator: callers see only the interface
// contract this collaborator presents to the core. Complete returns
// candidate completions for req, or an error if the collaborator
// itself failed.
type CompletionProvider interface {
	Complete(ctx context.Context, req rpc.SuggestionRequest) ([]string, error)
}

// StaticProvider is a deterministic CompletionProvider for hermetic
// tests and demos: it never makes a network call, returning a fixed
// response keyed by the user input exactly as given (no trimming or
// case folding), falling back to a
// single synthesized suggestion when no fixture matches.
type StaticProvider struct {
	Fixtures map[string][]string
}

// NewStaticProvider builds a StaticProvider seeded with fixtures. A nil
// or empty map is valid; every input then falls through to the
// synthesized default.
func NewStaticProvider(fixtures map[string][]string) *StaticProvider {
	if fixtures == nil {
		fixtures = map[string][]string{}
	}
	return &StaticProvider{Fixtures: fixtures}
}

func (p *StaticProvider) Complete(ctx context.Context, req rpc.SuggestionRequest) ([]string, error) {
	if suggestions, ok := p.Fixtures[req.UserInput]; ok {
		return suggestions, nil
	}
	if req.UserInput == "" {
		return nil, nil
	}
	return []string{req.UserInput + " -?"}, nil
}
