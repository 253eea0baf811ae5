package ctxengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// Summarizer produces a condensed summary from prepared chat turns.
// The concrete implementation will typically call an LLM provider;
// see ProviderSummarizer.
type Summarizer interface {
	Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error)
}

// CompactionResult reports the outcome of one compaction run.
type CompactionResult struct {
	// OriginalTokens is the estimated size of the summarized-away
	// messages, measured on the real input, not the lossy transcript.
	OriginalTokens int

	// CompactedTokens is the estimated size of the rebuilt sequence.
	CompactedTokens int

	// SavedTokens is OriginalTokens minus the summary's own cost.
	SavedTokens int

	// SummaryGenerated is false when the deterministic extractive
	// fallback was used instead of the summarization service.
	SummaryGenerated bool
}

// summarySystemPrompt is the fixed instruction sent with every
// summarization request.
const summarySystemPrompt = `You are summarizing an agent conversation so it can continue with less context.

Preserve technical facts exactly: file paths, resource names, configuration values, error messages, and decisions made.

Structure the summary under these headings:
- Goal
- Decisions
- Work Done
- Current State
- Pending

Keep the summary under 2000 tokens. Do not add information that was not in the conversation.`

// Transcript bounds. The transcript only limits the summarizer's input
// cost; it is never returned to the caller.
const (
	transcriptContentCap = 2000
	transcriptArgsCap    = 200
	fallbackExcerptCap   = 150
	fallbackMaxExcerpts  = 5
	summaryMaxTokens     = 2000
)

// Compactor replaces older conversation turns with a generated summary
// while preserving the anchor message, the recent window, tool
// call/result pairs, and prior summaries.
//
// Compact never fails from the caller's perspective: a summarizer
// error degrades to the extractive fallback, flagged via
// CompactionResult.SummaryGenerated.
type Compactor struct {
	summarizer     Summarizer
	estimator      TokenEstimator
	preserveRecent int
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
}

// NewCompactor creates a Compactor. A nil summarizer forces the
// extractive fallback on every run, which keeps offline use working.
func NewCompactor(summarizer Summarizer, estimator TokenEstimator, cfg BudgetConfig) *Compactor {
	return NewCompactorWithTracer(summarizer, estimator, cfg, otel.Tracer("nimbus/ctxengine"))
}

// NewCompactorWithTracer is NewCompactor with an explicit tracer instead
// of the globally registered one.
func NewCompactorWithTracer(summarizer Summarizer, estimator TokenEstimator, cfg BudgetConfig, tracer trace.Tracer) *Compactor {
	cfg = cfg.withDefaults()
	if estimator == nil {
		estimator = NewCharEstimator(0)
	}
	if tracer == nil {
		tracer = otel.Tracer("nimbus/ctxengine")
	}
	return &Compactor{
		summarizer:     summarizer,
		estimator:      estimator,
		preserveRecent: cfg.PreserveRecentMessages,
		logger:         slog.Default(),
		tracer:         tracer,
	}
}

// SetLogger replaces the compactor's logger. A nil logger restores the
// default.
func (c *Compactor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.logger = logger
}

// SetMetrics attaches prometheus instrumentation. Nil disables it.
func (c *Compactor) SetMetrics(m *Metrics) {
	c.metrics = m
}

// Compact partitions the conversation, summarizes the older portion,
// and returns the rebuilt sequence with an accounting of what was
// saved. The input slice is never mutated.
//
// focusArea, when non-empty, is forwarded to the summarizer as a hint
// about what to emphasize.
//
// Compaction must not run concurrently against the same sequence; the
// owning agent loop serializes per session. Repeated sequential runs
// are safe: a prior summary is recognized by its marker and preserved.
func (c *Compactor) Compact(ctx context.Context, messages []provider.LLMMessage, focusArea string) ([]provider.LLMMessage, CompactionResult) {
	ctx, span := c.tracer.Start(ctx, "ctxengine.compact", trace.WithAttributes(
		attribute.Int("messages.total", len(messages)),
	))
	defer span.End()

	preserved, toSummarize := Partition(messages, c.preserveRecent)
	span.SetAttributes(attribute.Int("messages.to_summarize", len(toSummarize)))

	if len(toSummarize) == 0 {
		c.metrics.observeCompaction("noop", 0)
		return messages, CompactionResult{}
	}

	summary, generated := c.summarize(ctx, span, toSummarize, focusArea)

	newMessages := BuildCompacted(preserved, summary)

	originalTokens := EstimateMessages(c.estimator, toSummarize)
	result := CompactionResult{
		OriginalTokens:   originalTokens,
		CompactedTokens:  EstimateMessages(c.estimator, newMessages),
		SavedTokens:      originalTokens - c.estimator.Estimate(summary),
		SummaryGenerated: generated,
	}

	span.SetAttributes(
		attribute.Int("tokens.saved", result.SavedTokens),
		attribute.Bool("summary.generated", result.SummaryGenerated),
	)
	outcome := "generated"
	if !generated {
		outcome = "fallback"
	}
	c.metrics.observeCompaction(outcome, result.SavedTokens)
	c.logger.Debug("context compacted",
		"summarized", len(toSummarize),
		"preserved", len(preserved),
		"saved_tokens", result.SavedTokens,
		"generated", generated)

	return newMessages, result
}

// summarize runs the external summarizer, degrading to the extractive
// fallback on any failure or empty result.
func (c *Compactor) summarize(ctx context.Context, span trace.Span, toSummarize []provider.LLMMessage, focusArea string) (summary string, generated bool) {
	if c.summarizer == nil {
		return extractiveSummary(toSummarize), false
	}

	text, err := c.summarizer.Summarize(ctx, summaryRequest(toSummarize, focusArea))
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptySummary
	}
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("summarizer unavailable, using extractive fallback", "error", err)
		return extractiveSummary(toSummarize), false
	}
	return text, true
}

// summaryRequest builds the chat turns sent to the summarization
// service: the fixed instruction plus the transcript as the user turn.
func summaryRequest(toSummarize []provider.LLMMessage, focusArea string) []provider.LLMMessage {
	userTurn := formatTranscript(toSummarize)
	if focusArea != "" {
		userTurn += "\n\nPay special attention to: " + focusArea
	}
	return []provider.LLMMessage{
		{Role: provider.MessageRoleSystem, Content: summarySystemPrompt},
		{Role: provider.MessageRoleUser, Content: userTurn},
	}
}

// formatTranscript renders messages as a role-labelled plain-text
// transcript, capping long content so the summarizer's own input stays
// bounded. The projection is lossy and used only for summarization.
func formatTranscript(messages []provider.LLMMessage) string {
	var b strings.Builder
	for i := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(messages[i].Role))
		b.WriteString(": ")
		b.WriteString(truncate(messages[i].Content, transcriptContentCap))
		for _, call := range messages[i].ToolCalls {
			b.WriteByte('\n')
			fmt.Fprintf(&b, "  [tool call] %s(%s)", call.Name, truncate(string(call.Arguments), transcriptArgsCap))
		}
	}
	return b.String()
}

// extractiveSummary builds a deterministic summary from message counts
// and truncated user excerpts. It involves no network call, so the
// fallback path cannot itself hang.
func extractiveSummary(messages []provider.LLMMessage) string {
	users, assistants := 0, 0
	var excerpts []string
	for i := range messages {
		switch messages[i].Role {
		case provider.MessageRoleUser:
			users++
			if len(excerpts) < fallbackMaxExcerpts && messages[i].Content != "" {
				excerpts = append(excerpts, truncate(messages[i].Content, fallbackExcerptCap))
			}
		case provider.MessageRoleAssistant:
			assistants++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation summary: %d user message(s), %d assistant message(s).", users, assistants)
	if len(excerpts) > 0 {
		b.WriteString("\nEarlier user requests:")
		for _, e := range excerpts {
			b.WriteString("\n- ")
			b.WriteString(e)
		}
	}
	return b.String()
}

// truncate caps s at max bytes, appending an explicit marker when
// content was dropped.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
