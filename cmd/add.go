package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/hooks"
	"github.com/spf13/cobra"
)

var (
	addFilter   bool
	addCommand  string
	addArgs     []string
	addLua      string
	addFunction string
	addLog      bool
	addPriority int
	addTimeout  int
	global      bool
	local       bool
	addCmd      = &cobra.Command{
		Use:   "add <hook>",
		Short: "Add a hook definition to a settings file",
		Long: `Add an action or filter handler to a settings file.

By default, writes to project settings (./.hookreg/settings.json, or $HOOKS_SETTINGS_PATH).
Use --global for user settings (~/.hookreg/settings.json).
Use --local for local directory settings (./.hookreg/settings.local.json).

Exactly one of --command, --lua or --log selects the handler type.`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addFilter, "filter", false, "Add a filter instead of an action")
	addCmd.Flags().StringVar(&addCommand, "command", "", "Command to run")
	addCmd.Flags().StringArrayVar(&addArgs, "arg", nil, "Command argument (repeatable)")
	addCmd.Flags().StringVar(&addLua, "lua", "", "Lua script to run")
	addCmd.Flags().StringVar(&addFunction, "function", "", "Lua function to call (default \"run\")")
	addCmd.Flags().BoolVar(&addLog, "log", false, "Log each time the hook fires")
	addCmd.Flags().IntVar(&addPriority, "priority", hooks.DefaultPriority, "Priority, lower runs first")
	addCmd.Flags().IntVar(&addTimeout, "timeout", 0, "Command timeout in seconds")
	addCmd.Flags().BoolVar(&global, "global", false, "Add to global settings (~/.hookreg/settings.json)")
	addCmd.Flags().BoolVar(&local, "local", false, "Add to local settings (./.hookreg/settings.local.json)")
	addCmd.MarkFlagsMutuallyExclusive("global", "local")
	addCmd.MarkFlagsMutuallyExclusive("command", "lua", "log")
	addCmd.MarkFlagsOneRequired("command", "lua", "log")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := hooks.ValidateName(name); err != nil {
		return err
	}

	// Determine settings path based on flags
	var path string
	var scope string
	if global {
		path = config.GetGlobalSettingsPath()
		scope = "global"
	} else if local {
		path = config.GetLocalSettingsPath()
		scope = "local"
	} else {
		path = envConfig.ResolveSettingsPath(settingsPath)
		scope = "project"
	}

	def := config.HookDefinition{Timeout: addTimeout}
	switch {
	case addCommand != "":
		def.Type = config.TypeCommand
		def.Command = addCommand
		def.Args = addArgs
	case addLua != "":
		abs, err := filepath.Abs(addLua)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		def.Type = config.TypeLua
		def.Script = abs
		def.Function = addFunction
	default:
		def.Type = config.TypeLog
	}
	if cmd.Flags().Changed("priority") {
		p := addPriority
		def.Priority = &p
	}

	kind := hooks.Action
	if addFilter {
		kind = hooks.Filter
	}

	slog.Info("adding hook", "kind", kind.String(), "name", name, "type", def.Type, "scope", scope)
	if err := config.AddHookToPath(path, name, addFilter, def); err != nil {
		return fmt.Errorf("failed to add hook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s to %s settings\n  Settings: %s\n", kind, name, scope, path)
	return nil
}
