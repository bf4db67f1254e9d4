package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Hook definition types.
const (
	TypeCommand = "command"
	TypeLua     = "lua"
	TypeLog     = "log"
)

// Settings declares the hooks to load into a registry.
type Settings struct {
	Actions map[string][]HookDefinition `json:"actions,omitempty"`
	Filters map[string][]HookDefinition `json:"filters,omitempty"`
}

// HookDefinition describes a single handler.
type HookDefinition struct {
	Type     string   `json:"type"`
	Command  string   `json:"command,omitempty"`
	Args     []string `json:"args,omitempty"`
	Script   string   `json:"script,omitempty"`   // Path to a Lua file, relative to the settings file
	Source   string   `json:"source,omitempty"`   // Inline Lua source
	Function string   `json:"function,omitempty"` // Lua function to call
	Priority *int     `json:"priority,omitempty"` // Absent means the registry default
	Timeout  int      `json:"timeout,omitempty"`  // Seconds, command hooks only
}

// LoadSettings reads settings from path. A missing file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	settings := &Settings{
		Actions: make(map[string][]HookDefinition),
		Filters: make(map[string][]HookDefinition),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if settings.Actions == nil {
		settings.Actions = make(map[string][]HookDefinition)
	}
	if settings.Filters == nil {
		settings.Filters = make(map[string][]HookDefinition)
	}

	return settings, nil
}

// SaveSettings writes settings to path, creating its directory.
func SaveSettings(path string, settings *Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// GetGlobalSettingsPath returns the per-user settings file.
func GetGlobalSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".hookreg", "settings.json")
}

// GetLocalSettingsPath returns the uncommitted project settings file.
func GetLocalSettingsPath() string {
	return filepath.Join(".", ".hookreg", "settings.local.json")
}

// GetProjectSettingsPath returns the project settings file.
func GetProjectSettingsPath() string {
	return filepath.Join(".", ".hookreg", "settings.json")
}

// Validate checks that the definition has what its type needs.
func (d HookDefinition) Validate() error {
	switch d.Type {
	case TypeCommand:
		if d.Command == "" {
			return fmt.Errorf("command hook requires a command")
		}
	case TypeLua:
		if d.Script == "" && d.Source == "" {
			return fmt.Errorf("lua hook requires a script or source")
		}
	case TypeLog:
	default:
		return fmt.Errorf("unknown hook type %q", d.Type)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// AddHookToPath appends def to the hook name in the settings file at
// settingsPath, creating the file if needed. filter selects the filters
// section instead of the actions section.
func AddHookToPath(settingsPath, name string, filter bool, def HookDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return err
	}

	section := settings.Actions
	if filter {
		section = settings.Filters
	}
	section[name] = append(section[name], def)

	return SaveSettings(settingsPath, settings)
}
