package ctxengine

import (
	"encoding/json"
	"math"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// TokenEstimator estimates the token count of a string.
type TokenEstimator interface {
	Estimate(text string) int
}

// CharEstimator estimates tokens using a simple characters-per-token
// ratio. A ratio of ~4 works well for English; ~3 for French or other
// Latin languages. The estimate is deliberately crude: callers rely on
// determinism and monotonicity, not tokenizer-exact accuracy.
type CharEstimator struct {
	CharsPerToken float64
}

// NewCharEstimator creates a CharEstimator with the given ratio.
// If charsPerToken is <= 0, defaults to 4.0 (English approximation).
func NewCharEstimator(charsPerToken float64) *CharEstimator {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &CharEstimator{CharsPerToken: charsPerToken}
}

// Estimate returns the estimated token count for the given text,
// rounding up so partial tokens are never undercounted.
func (e *CharEstimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / e.CharsPerToken))
}

// Per-message and per-tool-call structural overhead, in tokens.
// Covers role tags and framing the content itself doesn't account for.
const (
	messageOverheadTokens  = 4
	toolCallOverheadTokens = 10
)

// EstimateMessage returns the estimated tokens for a single message:
// content plus fixed framing overhead plus the cost of each tool call.
func EstimateMessage(estimator TokenEstimator, msg provider.LLMMessage) int {
	total := messageOverheadTokens + estimator.Estimate(msg.Content)
	for i := range msg.ToolCalls {
		total += estimator.Estimate(msg.ToolCalls[i].Name)
		total += estimator.Estimate(string(msg.ToolCalls[i].Arguments))
		total += toolCallOverheadTokens
	}
	return total
}

// EstimateMessages returns the total estimated tokens for a slice of
// LLM messages.
func EstimateMessages(estimator TokenEstimator, messages []provider.LLMMessage) int {
	total := 0
	for i := range messages {
		total += EstimateMessage(estimator, messages[i])
	}
	return total
}

// EstimateToolDefinitions returns the estimated token count for tool
// definitions serialized as JSON (how they appear in the actual prompt).
func EstimateToolDefinitions(estimator TokenEstimator, tools []provider.ToolDefinition) int {
	if len(tools) == 0 {
		return 0
	}
	data, err := json.Marshal(tools)
	if err != nil {
		// Fall back to per-field estimation.
		total := 0
		for i := range tools {
			total += estimator.Estimate(tools[i].Name)
			total += estimator.Estimate(tools[i].Description)
			total += estimator.Estimate(string(tools[i].Parameters))
		}
		return total
	}
	return estimator.Estimate(string(data))
}
