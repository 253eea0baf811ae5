// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// MockProvider is a configurable test double for provider.Provider.
// Set the Func fields to control behavior. Unset funcs panic on call.
// All methods are safe for concurrent use.
type MockProvider struct {
	CompleteFunc          func(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error)
	ContextWindowSizeFunc func() int
	ModelNameFunc         func() string

	mu            sync.Mutex
	CompleteCalls int
	LastRequest   provider.CompletionRequest
}

// Complete delegates to CompleteFunc, tracking the call count and the
// last request seen.
func (m *MockProvider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	m.mu.Lock()
	m.CompleteCalls++
	m.LastRequest = req
	m.mu.Unlock()
	return m.CompleteFunc(ctx, req)
}

// ContextWindowSize delegates to ContextWindowSizeFunc, defaulting to
// 200000 when unset.
func (m *MockProvider) ContextWindowSize() int {
	if m.ContextWindowSizeFunc == nil {
		return 200000
	}
	return m.ContextWindowSizeFunc()
}

// ModelName delegates to ModelNameFunc, defaulting to "mock" when unset.
func (m *MockProvider) ModelName() string {
	if m.ModelNameFunc == nil {
		return "mock"
	}
	return m.ModelNameFunc()
}

// Interface guard.
var _ provider.Provider = (*MockProvider)(nil)
