// Package config handles YAML configuration loading, environment
// variable expansion, and structural validation for the context
// governor.
package config

import (
	ctxengine "github.com/the-ai-project-co/nimbus-sub002/internal/context"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Context tunes the budget tracker and compactor.
	Context ContextSection `yaml:"context"`

	// SettingsPath optionally points at an external settings store
	// (a flat YAML key/value file) consulted for overrides.
	SettingsPath string `yaml:"settings_path,omitempty"`
}

// ContextSection mirrors ctxengine.BudgetConfig in YAML form.
// Zero values defer to the engine's defaults.
type ContextSection struct {
	MaxContextTokens       int     `yaml:"max_context_tokens,omitempty"`
	AutoCompactThreshold   float64 `yaml:"auto_compact_threshold,omitempty"`
	PreserveRecentMessages int     `yaml:"preserve_recent_messages,omitempty"`
}

// BudgetConfig converts the YAML section into the engine's config type.
func (s ContextSection) BudgetConfig() ctxengine.BudgetConfig {
	return ctxengine.BudgetConfig{
		MaxContextTokens:       s.MaxContextTokens,
		AutoCompactThreshold:   s.AutoCompactThreshold,
		PreserveRecentMessages: s.PreserveRecentMessages,
	}
}
