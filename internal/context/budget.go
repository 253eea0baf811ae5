package ctxengine

import (
	"math"
	"strings"
	"sync/atomic"

	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// SettingsProvider supplies optional overrides from an external settings
// store. Absence or a read failure is reported as (0, false), never an
// error: configuration unavailability must not break tracker
// construction.
type SettingsProvider interface {
	Float(key string) (float64, bool)
}

// ThresholdSettingKey is the namespaced settings-store key that may
// override the auto-compact threshold.
const ThresholdSettingKey = "context.auto_compact_threshold"

// customInstructionsMarker splits the system prompt into a base portion
// and a project-instructions portion for the usage breakdown.
const customInstructionsMarker = "## Project Instructions"

// ContextBreakdown is a point-in-time view of context window usage.
// SystemPromptTokens is the base portion of the system prompt with the
// custom-instruction slice already excluded, so
// Total = SystemPromptTokens + CustomInstructionTokens + MessageTokens +
// ToolDefinitionTokens.
type ContextBreakdown struct {
	SystemPromptTokens      int
	CustomInstructionTokens int
	MessageTokens           int
	ToolDefinitionTokens    int
	Total                   int
	Budget                  int

	// UsagePercent is Total/Budget as an integer percentage, rounded
	// half away from zero. 0 when Budget <= 0.
	UsagePercent int
}

// BudgetTracker computes context usage against a model's window and
// decides when compaction should trigger.
//
// All methods are safe for concurrent use. MaxContextTokens is the only
// mutable field and is expected to have a single writer (the agent loop,
// on model switch); a stale read only shifts when compaction triggers.
type BudgetTracker struct {
	estimator      TokenEstimator
	threshold      float64
	preserveRecent int

	maxContextTokens atomic.Int64
}

// NewBudgetTracker creates a tracker from cfg. The auto-compact
// threshold resolves through a fallback chain: an explicit value in cfg
// wins; otherwise a settings-store override is consulted; otherwise the
// hard default applies. settings may be nil.
func NewBudgetTracker(cfg BudgetConfig, estimator TokenEstimator, settings SettingsProvider) *BudgetTracker {
	cfg = cfg.withDefaults()
	if estimator == nil {
		estimator = NewCharEstimator(0)
	}

	threshold := cfg.AutoCompactThreshold
	if threshold <= 0 && settings != nil {
		if v, ok := settings.Float(ThresholdSettingKey); ok && v > 0 && v <= 1 {
			threshold = v
		}
	}
	if threshold <= 0 {
		threshold = DefaultAutoCompactThreshold
	}

	t := &BudgetTracker{
		estimator:      estimator,
		threshold:      threshold,
		preserveRecent: cfg.PreserveRecentMessages,
	}
	t.maxContextTokens.Store(int64(cfg.MaxContextTokens))
	return t
}

// MaxContextTokens returns the current context window budget.
func (t *BudgetTracker) MaxContextTokens() int {
	return int(t.maxContextTokens.Load())
}

// SetMaxContextTokens updates the budget in place, typically on a model
// switch. Callers must re-derive usage afterwards; nothing is recomputed
// here.
func (t *BudgetTracker) SetMaxContextTokens(n int) {
	t.maxContextTokens.Store(int64(n))
}

// AutoCompactThreshold returns the resolved trigger threshold.
func (t *BudgetTracker) AutoCompactThreshold() float64 {
	return t.threshold
}

// PreserveRecentMessages returns the size of the recent window that
// compaction must keep verbatim.
func (t *BudgetTracker) PreserveRecentMessages() int {
	return t.preserveRecent
}

// CalculateUsage computes a usage breakdown for the given system prompt,
// conversation, and pre-computed tool-definition token count.
func (t *BudgetTracker) CalculateUsage(systemPrompt string, messages []provider.LLMMessage, toolDefinitionTokens int) ContextBreakdown {
	promptTokens := t.estimator.Estimate(systemPrompt)

	customTokens := 0
	if idx := strings.Index(systemPrompt, customInstructionsMarker); idx >= 0 {
		customTokens = t.estimator.Estimate(systemPrompt[idx:])
	}

	baseTokens := promptTokens - customTokens
	if baseTokens < 0 {
		baseTokens = 0
	}

	messageTokens := EstimateMessages(t.estimator, messages)
	total := promptTokens + messageTokens + toolDefinitionTokens
	budget := t.MaxContextTokens()

	percent := 0
	if budget > 0 {
		percent = int(math.Round(float64(total) / float64(budget) * 100))
	}

	return ContextBreakdown{
		SystemPromptTokens:      baseTokens,
		CustomInstructionTokens: customTokens,
		MessageTokens:           messageTokens,
		ToolDefinitionTokens:    toolDefinitionTokens,
		Total:                   total,
		Budget:                  budget,
		UsagePercent:            percent,
	}
}

// ShouldCompact reports whether usage has reached the auto-compact
// threshold. The boundary is inclusive: usage exactly at the threshold
// triggers.
func (t *BudgetTracker) ShouldCompact(systemPrompt string, messages []provider.LLMMessage, toolDefinitionTokens int) bool {
	usage := t.CalculateUsage(systemPrompt, messages, toolDefinitionTokens)
	return float64(usage.UsagePercent) >= t.threshold*100
}
