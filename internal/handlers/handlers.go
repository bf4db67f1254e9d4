// Package handlers builds hook callbacks from settings definitions.
//
// The following definition types are implemented:
// - command: runs an external program with the hook arguments as JSON on stdin (command.go)
// - lua: calls a function in a sandboxed Lua script (lua.go)
// - log: writes a structured log line (log.go)
//
// A Loader registers every definition of a config.Settings on a hooks.Registry.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/hooks"
)

// Loader turns settings definitions into registry callbacks. Lua states
// created while loading stay open until Close.
type Loader struct {
	// Dir is the working directory for commands and the base for relative
	// script paths, usually the directory holding the settings file.
	Dir string

	// CommandTimeout applies to command hooks that set no timeout.
	CommandTimeout time.Duration

	executor Executor
	scripts  []*luaHook
}

// NewLoader creates a loader that runs commands with the real executor.
func NewLoader(dir string, commandTimeout time.Duration) *Loader {
	return NewLoaderWithExecutor(dir, commandTimeout, &RealExecutor{})
}

// NewLoaderWithExecutor creates a loader with a custom command executor
func NewLoaderWithExecutor(dir string, commandTimeout time.Duration, executor Executor) *Loader {
	return &Loader{
		Dir:            dir,
		CommandTimeout: commandTimeout,
		executor:       executor,
	}
}

// Load registers every action and filter in settings on r. Definitions for
// the same hook keep their settings order among equal priorities.
func (l *Loader) Load(r *hooks.Registry, settings *config.Settings) error {
	if err := l.loadSection(r, hooks.Action, settings.Actions); err != nil {
		return err
	}
	return l.loadSection(r, hooks.Filter, settings.Filters)
}

func (l *Loader) loadSection(r *hooks.Registry, kind hooks.Kind, section map[string][]config.HookDefinition) error {
	names := make([]string, 0, len(section))
	for name := range section {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for i, def := range section[name] {
			cb, err := l.Callback(kind, name, def)
			if err != nil {
				return fmt.Errorf("failed to load %s %q[%d]: %w", kind, name, i, err)
			}

			var opts []hooks.AddOption
			if def.Priority != nil {
				opts = append(opts, hooks.WithPriority(*def.Priority))
			}

			add := r.AddAction
			if kind == hooks.Filter {
				add = r.AddFilter
			}
			if err := add(name, cb, opts...); err != nil {
				return fmt.Errorf("failed to register %s %q[%d]: %w", kind, name, i, err)
			}

			slog.Debug("registered hook",
				"kind", kind.String(),
				"name", name,
				"type", def.Type)
		}
	}
	return nil
}

// Callback builds the callback for a single definition.
func (l *Loader) Callback(kind hooks.Kind, name string, def config.HookDefinition) (hooks.Callback, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	switch def.Type {
	case config.TypeCommand:
		timeout := l.CommandTimeout
		if def.Timeout > 0 {
			timeout = time.Duration(def.Timeout) * time.Second
		}
		return commandCallback(l.executor, l.Dir, kind, name, def.Command, def.Args, timeout), nil

	case config.TypeLua:
		h, err := newLuaHook(l.Dir, def)
		if err != nil {
			return nil, err
		}
		l.scripts = append(l.scripts, h)
		return h.callback(kind), nil

	default:
		return logCallback(kind, name), nil
	}
}

// Close releases the Lua states created by the loader.
func (l *Loader) Close() error {
	var errs []error
	for _, h := range l.scripts {
		errs = append(errs, h.Close())
	}
	l.scripts = nil
	return errors.Join(errs...)
}
