package ctxengine

import (
	"strings"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// SummaryMarker prefixes the content of a message inserted by a prior
// compaction. Messages carrying it are never summarized again, which is
// the sole idempotence mechanism: no separate flag is stored on the
// sequence.
const SummaryMarker = "[Context Summary]"

// toolPairLookback is how many messages before the recent window a
// tool-role result is still preserved, so a preserved assistant message
// never references a tool result that got summarized away.
const toolPairLookback = 2

// IsSummaryMessage reports whether msg is a prior compaction artifact.
func IsSummaryMessage(msg provider.LLMMessage) bool {
	return strings.HasPrefix(msg.Content, SummaryMarker)
}

// Partition splits messages into a preserved set and a to-summarize set.
// The split is stable, loss-less, and duplication-free: every input
// message lands in exactly one output slice, in original relative order.
//
// A message is preserved when it is the anchor (index 0), falls inside
// the trailing preserveRecent window, is a tool result within the
// lookback zone just before that window, or carries the summary marker.
func Partition(messages []provider.LLMMessage, preserveRecent int) (preserved, toSummarize []provider.LLMMessage) {
	if preserveRecent < 0 {
		preserveRecent = 0
	}

	// Nothing to summarize when the sequence already fits the recent
	// window plus the anchor.
	if len(messages) <= preserveRecent+1 {
		preserved = make([]provider.LLMMessage, len(messages))
		copy(preserved, messages)
		return preserved, nil
	}

	recentStart := len(messages) - preserveRecent
	for i, msg := range messages {
		switch {
		case i == 0:
			preserved = append(preserved, msg)
		case i >= recentStart:
			preserved = append(preserved, msg)
		case msg.Role == provider.MessageRoleTool && i >= recentStart-toolPairLookback:
			preserved = append(preserved, msg)
		case IsSummaryMessage(msg):
			preserved = append(preserved, msg)
		default:
			toSummarize = append(toSummarize, msg)
		}
	}
	return preserved, toSummarize
}
