package predictor

import (
	"context"
	"encoding/json"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpc"
	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/rpcserver"
)

// RegisterHandlers wires every RPC method into s, each one decoding
// its params (if any) and invoking the matching Service method.
func RegisterHandlers(s *rpcserver.Server, svc *Service) {
	s.Handle(rpc.MethodGetSuggestions, func(ctx context.Context, params json.RawMessage) (any, error) {
		var req rpc.SuggestionRequest
		if err := unmarshalParams(params, &req); err != nil {
			return nil, err
		}
		resp := svc.GetSuggestions(ctx, req)
		return resp, nil
	})

	s.Handle(rpc.MethodPing, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.Ping(ctx), nil
	})

	s.Handle(rpc.MethodGetStatus, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.GetStatus(ctx), nil
	})

	s.Handle(rpc.MethodTriggerCacheRefresh, func(ctx context.Context, params json.RawMessage) (any, error) {
		var req rpc.SuggestionRequest
		if err := unmarshalParams(params, &req); err != nil {
			return nil, err
		}
		svc.TriggerCacheRefresh(ctx, req)
		return nil, nil
	})

	s.Handle(rpc.MethodClearCache, func(ctx context.Context, _ json.RawMessage) (any, error) {
		svc.ClearCache(ctx)
		return nil, nil
	})
}

func unmarshalParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return rpc.ErrInvalidRequest
	}
	if err := json.Unmarshal(params, v); err != nil {
		return rpc.ErrInvalidRequest
	}
	return nil
}
