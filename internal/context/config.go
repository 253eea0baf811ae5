// Package ctxengine implements LLM context governance: token
// estimation, budget tracking, and conversation compaction.
package ctxengine

// BudgetConfig holds the tuning knobs for context governance.
// One instance belongs to one agent session.
type BudgetConfig struct {
	// MaxContextTokens is the model's context window in tokens.
	// 0 means use the default (200000).
	MaxContextTokens int

	// AutoCompactThreshold is the usage fraction (0,1] at which
	// compaction should trigger. 0 means use the settings store
	// override if present, otherwise 0.85.
	AutoCompactThreshold float64

	// PreserveRecentMessages is the number of most-recent messages
	// never summarized. 0 means use the default (5).
	PreserveRecentMessages int
}

// Defaults applied by withDefaults and the settings fallback chain.
const (
	DefaultMaxContextTokens       = 200000
	DefaultAutoCompactThreshold   = 0.85
	DefaultPreserveRecentMessages = 5
)

// withDefaults returns a copy of cfg with zero-valued fields replaced by
// sensible defaults. The threshold is left at zero here so the tracker
// can distinguish "explicit" from "resolve via settings store".
func (cfg BudgetConfig) withDefaults() BudgetConfig {
	if cfg.MaxContextTokens == 0 {
		cfg.MaxContextTokens = DefaultMaxContextTokens
	}
	if cfg.PreserveRecentMessages == 0 {
		cfg.PreserveRecentMessages = DefaultPreserveRecentMessages
	}
	return cfg
}
