package ctxengine_test

import (
	"context"
	"fmt"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// mockSummarizer implements ctxengine.Summarizer for tests.
type mockSummarizer struct {
	result string
	err    error
	called int
	got    []provider.LLMMessage
}

func (m *mockSummarizer) Summarize(_ context.Context, messages []provider.LLMMessage) (string, error) {
	m.called++
	m.got = messages
	return m.result, m.err
}

// fakeSettings implements ctxengine.SettingsProvider for tests.
type fakeSettings struct {
	values map[string]float64
}

func (f *fakeSettings) Float(key string) (float64, bool) {
	v, ok := f.values[key]
	return v, ok
}

// makeTestMessages creates n alternating user/assistant messages.
func makeTestMessages(n int) []provider.LLMMessage {
	msgs := make([]provider.LLMMessage, n)
	for i := range msgs {
		role := provider.MessageRoleUser
		if i%2 == 1 {
			role = provider.MessageRoleAssistant
		}
		msgs[i] = provider.LLMMessage{Role: role, Content: fmt.Sprintf("msg-%d", i)}
	}
	return msgs
}

// contents extracts the Content field of each message.
func contents(msgs []provider.LLMMessage) []string {
	out := make([]string, len(msgs))
	for i := range msgs {
		out[i] = msgs[i].Content
	}
	return out
}
