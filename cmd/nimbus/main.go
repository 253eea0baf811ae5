// Package main is the entry point for the nimbus context-governor CLI,
// an offline debugging surface over saved conversation transcripts.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/the-ai-project-co/nimbus-sub002/internal/config"
	ctxengine "github.com/the-ai-project-co/nimbus-sub002/internal/context"
	"github.com/the-ai-project-co/nimbus-sub002/internal/provider"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// transcript is the on-disk JSON shape consumed by inspect and compact.
type transcript struct {
	SystemPrompt string                    `json:"system_prompt"`
	Messages     []provider.LLMMessage     `json:"messages"`
	Tools        []provider.ToolDefinition `json:"tools,omitempty"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nimbus",
		Short:         "Context-window governance for agent conversations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(versionCmd(), inspectCmd(), compactCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("nimbus %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <transcript.json>",
		Short: "Print the context usage breakdown for a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ts, err := loadTranscript(args[0])
			if err != nil {
				return err
			}

			estimator := ctxengine.NewCharEstimator(0)
			settings := config.LoadSettings(cfg.SettingsPath)
			tracker := ctxengine.NewBudgetTracker(cfg.Context.BudgetConfig(), estimator, settings)

			toolTokens := ctxengine.EstimateToolDefinitions(estimator, ts.Tools)
			usage := tracker.CalculateUsage(ts.SystemPrompt, ts.Messages, toolTokens)

			fmt.Printf("System prompt:        %7d tokens\n", usage.SystemPromptTokens)
			fmt.Printf("Project instructions: %7d tokens\n", usage.CustomInstructionTokens)
			fmt.Printf("Messages:             %7d tokens (%d messages)\n", usage.MessageTokens, len(ts.Messages))
			fmt.Printf("Tool definitions:     %7d tokens\n", usage.ToolDefinitionTokens)
			fmt.Printf("Total:                %7d / %d tokens (%d%%)\n", usage.Total, usage.Budget, usage.UsagePercent)
			if tracker.ShouldCompact(ts.SystemPrompt, ts.Messages, toolTokens) {
				fmt.Printf("Compaction recommended (threshold %.0f%%)\n", tracker.AutoCompactThreshold()*100)
			}
			return nil
		},
	}
}

func compactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <transcript.json>",
		Short: "Compact a saved transcript and write the result to stdout",
		Long: "Compact runs the compaction pipeline offline. No summarization\n" +
			"service is available here, so the deterministic extractive summary\n" +
			"is always used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ts, err := loadTranscript(args[0])
			if err != nil {
				return err
			}
			focus, _ := cmd.Flags().GetString("focus")

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			compactor := ctxengine.NewCompactor(nil, ctxengine.NewCharEstimator(0), cfg.Context.BudgetConfig())
			compactor.SetLogger(logger)

			newMessages, result := compactor.Compact(cmd.Context(), ts.Messages, focus)
			fmt.Fprintf(os.Stderr, "Compacted %d -> %d messages, saved ~%d tokens\n",
				len(ts.Messages), len(newMessages), result.SavedTokens)

			ts.Messages = newMessages
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ts)
		},
	}
	cmd.Flags().String("focus", "", "Area the summary should emphasize")
	return cmd
}

func loadTranscript(path string) (*transcript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript %s: %w", path, err)
	}
	var ts transcript
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}
	return &ts, nil
}

// loadConfig reads the config named by --config, falling back to the
// standard locations. A completely absent config resolves to defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = resolveConfigPath()
	}
	if path == "" {
		return &config.Config{Version: "1"}, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/nimbus/nimbus.yaml → ./nimbus.yaml
func resolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "nimbus", "nimbus.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "nimbus", "nimbus.yaml"))
	}
	candidates = append(candidates, "nimbus.yaml")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
