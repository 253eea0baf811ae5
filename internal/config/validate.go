package config

import (
	"errors"
	"fmt"
)

// Validate checks the structural validity of a Config: the version
// field, threshold range, and sign constraints on the context section.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateContext(cfg.Context)...)

	return errors.Join(errs...)
}

func validateContext(s ContextSection) []error {
	var errs []error

	if s.MaxContextTokens < 0 {
		errs = append(errs, fmt.Errorf("config: context.max_context_tokens must not be negative (got %d)", s.MaxContextTokens))
	}
	if s.AutoCompactThreshold < 0 || s.AutoCompactThreshold > 1 {
		errs = append(errs, fmt.Errorf("config: context.auto_compact_threshold must be in (0,1] (got %g)", s.AutoCompactThreshold))
	}
	if s.PreserveRecentMessages < 0 {
		errs = append(errs, fmt.Errorf("config: context.preserve_recent_messages must not be negative (got %d)", s.PreserveRecentMessages))
	}

	return errs
}
