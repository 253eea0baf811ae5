package ctxengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// ErrEmptySummary indicates the summarization service returned no
// usable text.
var ErrEmptySummary = errors.New("ctxengine: summarizer returned empty response")

// ProviderSummarizer adapts a provider.Provider into a Summarizer,
// capping generated output at summaryMaxTokens. One attempt per call;
// retries, if desired, are the caller's responsibility.
type ProviderSummarizer struct {
	provider  provider.Provider
	maxTokens int
}

// NewProviderSummarizer wraps p. A maxTokens of 0 uses the default cap.
func NewProviderSummarizer(p provider.Provider, maxTokens int) *ProviderSummarizer {
	if maxTokens <= 0 {
		maxTokens = summaryMaxTokens
	}
	return &ProviderSummarizer{provider: p, maxTokens: maxTokens}
}

// Summarize sends the prepared chat turns to the model and returns its
// text response.
func (s *ProviderSummarizer) Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	resp, err := s.provider.Complete(ctx, provider.CompletionRequest{
		Messages:  messages,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ctxengine: summarize via %s: %w", s.provider.ModelName(), err)
	}
	return resp.Content, nil
}

// Interface guard.
var _ Summarizer = (*ProviderSummarizer)(nil)
