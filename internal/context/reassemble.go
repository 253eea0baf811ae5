package ctxengine

import (
	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

const (
	summaryHeader = SummaryMarker + " The following is a summary of the earlier conversation:\n\n"
	summaryFooter = "\n\n---\nThe conversation continues below."
)

// WrapSummary builds the user-role message that carries a generated
// summary. Its content prefix is what Partition recognizes on a later
// pass.
func WrapSummary(summaryText string) provider.LLMMessage {
	return provider.LLMMessage{
		Role:    provider.MessageRoleUser,
		Content: summaryHeader + summaryText + summaryFooter,
	}
}

// BuildCompacted rebuilds a single message sequence from the preserved
// set and a summary: the anchor stays first, the summary is inserted
// right after it, and everything else follows in original order. No
// preserved message is otherwise touched.
func BuildCompacted(preserved []provider.LLMMessage, summaryText string) []provider.LLMMessage {
	summary := WrapSummary(summaryText)
	if len(preserved) == 0 {
		return []provider.LLMMessage{summary}
	}

	result := make([]provider.LLMMessage, 0, len(preserved)+1)
	result = append(result, preserved[0], summary)
	return append(result, preserved[1:]...)
}
