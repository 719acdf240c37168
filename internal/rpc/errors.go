package rpc

import "errors"

// Error kind codes for the RPCError.Code field (kinds, not Go type
// names — every one of these also has a matching sentinel error below
// for in-process use).
const (
	CodeConnectionUnavailable = "ConnectionUnavailable"
	CodeRequestTimedOut       = "RequestTimedOut"
	CodeRequestCancelled      = "RequestCancelled"
	CodeMalformedFrame        = "MalformedFrame"
	CodePeerDisconnected      = "PeerDisconnected"
	CodeInternalCacheError    = "InternalCacheError"
	CodeInvalidRequest        = "InvalidRequest"
)

// Sentinel errors used internally by the codec, server, and client.
// These never cross the wire directly; a handler or client maps them
// to the Code constants above when building a Response or a fallback
// SuggestionResponse.
var (
	ErrConnectionUnavailable = errors.New("rpc: connection unavailable")
	ErrTimeout               = errors.New("rpc: request timed out")
	ErrCancelled             = errors.New("rpc: request cancelled")
	ErrMalformedFrame        = errors.New("rpc: malformed frame")
	ErrPeerDisconnected      = errors.New("rpc: peer disconnected")
	ErrInternalCacheError    = errors.New("rpc: internal cache error")
	ErrInvalidRequest        = errors.New("rpc: invalid request")
	ErrUnknownMethod         = errors.New("rpc: unknown method")
)

// codeForError maps a sentinel error to its wire-level error code,
// falling back to InternalCacheError for anything unrecognized.
func codeForError(err error) string {
	switch {
	case errors.Is(err, ErrConnectionUnavailable):
		return CodeConnectionUnavailable
	case errors.Is(err, ErrTimeout):
		return CodeRequestTimedOut
	case errors.Is(err, ErrCancelled):
		return CodeRequestCancelled
	case errors.Is(err, ErrMalformedFrame):
		return CodeMalformedFrame
	case errors.Is(err, ErrPeerDisconnected):
		return CodePeerDisconnected
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	default:
		return CodeInternalCacheError
	}
}
