package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/handlers"
	"github.com/imjasonh/hookreg/internal/hooks"
	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do <hook> [args...]",
	Short: "Run an action hook",
	Long: `Run every handler registered on an action hook, in priority order.

Each argument is decoded as JSON when it is valid JSON (numbers, booleans,
objects, quoted strings) and passed as a plain string otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, settings, err := loadSettings()
		if err != nil {
			return err
		}
		r, loader, err := loadRegistry(path, settings)
		if err != nil {
			return err
		}
		defer loader.Close()

		return r.DoAction(cmd.Context(), args[0], parseArgs(args[1:])...)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <hook> <value> [args...]",
	Short: "Run a filter hook and print the result",
	Long: `Pipe a value through every handler registered on a filter hook and print
the result as JSON. Arguments after the value are passed to every handler
unchanged.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, settings, err := loadSettings()
		if err != nil {
			return err
		}
		r, loader, err := loadRegistry(path, settings)
		if err != nil {
			return err
		}
		defer loader.Close()

		result, err := r.ApplyFilters(cmd.Context(), args[0], parseArgs(args[1:])...)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// loadSettings reads the resolved settings file and returns its path.
func loadSettings() (string, *config.Settings, error) {
	path := envConfig.ResolveSettingsPath(settingsPath)
	settings, err := config.LoadSettings(path)
	if err != nil {
		return "", nil, err
	}
	return path, settings, nil
}

// loadRegistry builds a registry from settings loaded from path.
func loadRegistry(path string, settings *config.Settings) (*hooks.Registry, *handlers.Loader, error) {
	r := hooks.New(hooks.WithLogger(slog.Default()))
	loader := handlers.NewLoader(filepath.Dir(path), envConfig.CommandTimeout)
	if err := loader.Load(r, settings); err != nil {
		loader.Close()
		return nil, nil, fmt.Errorf("failed to load hooks from %s: %w", path, err)
	}

	slog.Debug("loaded settings",
		"path", path,
		"actions", len(r.Names(hooks.Action)),
		"filters", len(r.Names(hooks.Filter)))
	return r, loader, nil
}

// parseArgs decodes each argument as JSON, falling back to the raw string.
func parseArgs(args []string) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		var v any
		if err := json.Unmarshal([]byte(arg), &v); err == nil {
			out[i] = v
		} else {
			out[i] = arg
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(doCmd)
	rootCmd.AddCommand(applyCmd)
}
