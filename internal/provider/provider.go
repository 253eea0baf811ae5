package provider

import "context"

// Provider is the interface for communicating with an LLM.
// The context engine uses it only through the summarizer adapter;
// the owning agent loop uses it for everything else.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ContextWindowSize returns the maximum context window in tokens.
	ContextWindowSize() int

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}
