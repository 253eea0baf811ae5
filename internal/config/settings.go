package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ctxengine "github.com/the-ai-project-co/nimbus-sub002/internal/context"
)

// Settings is a read-only store of namespaced override values loaded
// from a flat YAML key/value file. It backs the context engine's
// optional settings provider.
type Settings struct {
	values map[string]any
}

// LoadSettings reads the settings file at path. A missing or unreadable
// file resolves to an empty store: settings unavailability must never
// surface as an error to the components consuming overrides.
func LoadSettings(path string) *Settings {
	s := &Settings{values: map[string]any{}}
	if path == "" {
		return s
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return s
	}
	if values != nil {
		s.values = values
	}
	return s
}

// Float returns the numeric value stored under key, reporting false for
// absent or non-numeric values.
func (s *Settings) Float(key string) (float64, bool) {
	switch v := s.values[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// Interface guard.
var _ ctxengine.SettingsProvider = (*Settings)(nil)
