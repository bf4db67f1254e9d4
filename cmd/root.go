package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/spf13/cobra"
)

var (
	debug        bool
	settingsPath string
	envConfig    *config.Env
	rootCmd      = &cobra.Command{
		Use:   "hookreg",
		Short: "Run action and filter hooks",
		Long: `A Go binary that loads hook definitions from a settings file and runs them.

Actions run every registered handler with the same arguments. Filters pipe a
value through their handlers in priority order and print the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e, err := config.LoadEnv()
			if err != nil {
				return err
			}
			envConfig = e

			if debug || e.Debug {
				opts := &slog.HandlerOptions{Level: slog.LevelDebug}
				handler := slog.NewTextHandler(os.Stderr, opts)
				slog.SetDefault(slog.New(handler))
			}
			return nil
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default $HOOKS_SETTINGS_PATH or ./.hookreg/settings.json)")
}
