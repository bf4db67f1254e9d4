package cmd

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/handlers"
	"github.com/imjasonh/hookreg/internal/hooks"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered hooks",
	Long:  `Shows every action and filter in the settings file with its handlers in execution order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, settings, err := loadSettings()
		if err != nil {
			return err
		}

		// Loading into a registry validates every name and definition.
		r, loader, err := loadRegistry(path, settings)
		if err != nil {
			return err
		}
		defer loader.Close()

		out := cmd.OutOrStdout()
		actions, filters := r.Names(hooks.Action), r.Names(hooks.Filter)
		if len(actions) == 0 && len(filters) == 0 {
			fmt.Fprintf(out, "No hooks found in %s\n", path)
			return nil
		}

		fmt.Fprintf(out, "Hooks in %s:\n\n", path)
		printHooks(out, "Actions", actions, settings.Actions)
		printHooks(out, "Filters", filters, settings.Filters)
		return nil
	},
}

type listedHook struct {
	priority int
	def      config.HookDefinition
}

// printHooks prints each hook's definitions in the order the registry runs them.
func printHooks(out io.Writer, title string, names []string, section map[string][]config.HookDefinition) {
	if len(names) == 0 {
		return
	}

	fmt.Fprintf(out, "%s:\n", title)
	for _, name := range names {
		listed := make([]listedHook, 0, len(section[name]))
		for _, def := range section[name] {
			p := hooks.DefaultPriority
			if def.Priority != nil {
				p = *def.Priority
			}
			listed = append(listed, listedHook{priority: p, def: def})
		}
		slices.SortStableFunc(listed, func(a, b listedHook) int {
			return cmp.Compare(a.priority, b.priority)
		})

		fmt.Fprintf(out, "• %s\n", name)
		for _, l := range listed {
			fmt.Fprintf(out, "  %3d  %-7s %s\n", l.priority, l.def.Type, describe(l.def))
		}
	}
	fmt.Fprintln(out)
}

// describe returns what a definition runs.
func describe(def config.HookDefinition) string {
	switch def.Type {
	case config.TypeCommand:
		return strings.TrimSpace(def.Command + " " + strings.Join(def.Args, " "))
	case config.TypeLua:
		fn := def.Function
		if fn == "" {
			fn = handlers.DefaultLuaFunction
		}
		if def.Script != "" {
			return fmt.Sprintf("%s:%s", def.Script, fn)
		}
		return fmt.Sprintf("<inline>:%s", fn)
	default:
		return ""
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
