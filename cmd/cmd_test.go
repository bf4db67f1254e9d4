package cmd

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/hooks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestParseArgs(t *testing.T) {
	got := parseArgs([]string{"plain", "42", "true", `{"a":1}`, `"quoted"`, "not json {"})
	want := []any{"plain", 42.0, true, map[string]any{"a": 1.0}, "quoted", "not json {"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseArgs mismatch (-want +got):\n%s", diff)
	}
}

// resetFlags restores every flag to its default so runs don't leak into each other.
func TestLoadRegistryUsesGivenSettings(t *testing.T) {
	saved := envConfig
	t.Cleanup(func() { envConfig = saved })
	envConfig = &config.Env{}

	// The path only sets the loader directory; nothing is read from it.
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	settings := &config.Settings{
		Actions: map[string][]config.HookDefinition{},
		Filters: map[string][]config.HookDefinition{
			"title": {{Type: config.TypeLog}},
		},
	}

	r, loader, err := loadRegistry(path, settings)
	if err != nil {
		t.Fatalf("loadRegistry failed: %v", err)
	}
	defer loader.Close()

	if diff := cmp.Diff([]string{"title"}, r.Names(hooks.Filter)); diff != "" {
		t.Errorf("filter names mismatch (-want +got):\n%s", diff)
	}
	if loader.Dir != filepath.Dir(path) {
		t.Errorf("expected loader dir %s, got %s", filepath.Dir(path), loader.Dir)
	}
	got, err := r.ApplyFilters(context.Background(), "title", "x")
	if err != nil || got != "x" {
		t.Errorf("expected x, got %v (%v)", got, err)
	}
}

func TestPrintHooksOrdersExtremePriorities(t *testing.T) {
	maxP, minP, zero := math.MaxInt, math.MinInt, 0
	section := map[string][]config.HookDefinition{
		"title": {
			{Type: config.TypeCommand, Command: "max", Priority: &maxP},
			{Type: config.TypeCommand, Command: "min", Priority: &minP},
			{Type: config.TypeCommand, Command: "zero", Priority: &zero},
		},
	}

	var out bytes.Buffer
	printHooks(&out, "Filters", []string{"title"}, section)

	got := out.String()
	iMin, iZero, iMax := strings.Index(got, " min"), strings.Index(got, " zero"), strings.Index(got, " max")
	if iMin < 0 || iZero < 0 || iMax < 0 || !(iMin < iZero && iZero < iMax) {
		t.Errorf("expected min, zero, max order, got:\n%s", got)
	}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	script := `function run(v, suffix) return v .. suffix end`
	if err := os.WriteFile(filepath.Join(dir, "suffix.lua"), []byte(script), 0644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	settings := &config.Settings{
		Filters: map[string][]config.HookDefinition{
			"title": {
				{Type: config.TypeLua, Script: "suffix.lua"},
				{Type: config.TypeLog},
			},
		},
	}
	if err := config.SaveSettings(path, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	out, err := run(t, "apply", "--settings", path, "title", "hello", "!")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if strings.TrimSpace(out) != `"hello!"` {
		t.Errorf("expected \"hello!\", got %q", out)
	}
}

func TestApplyWithoutHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	out, err := run(t, "apply", "--settings", path, "missing", `{"k":"v"}`)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !strings.Contains(out, `"k": "v"`) {
		t.Errorf("expected the value back unchanged, got %q", out)
	}
}

func TestDoCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	settings := &config.Settings{
		Actions: map[string][]config.HookDefinition{
			"app/fail": {{Type: config.TypeLua, Source: `function run(v) error("failed with " .. v) end`}},
			"app/ok":   {{Type: config.TypeLog}},
		},
	}
	if err := config.SaveSettings(path, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	if _, err := run(t, "do", "--settings", path, "app/ok", "x"); err != nil {
		t.Errorf("expected app/ok to succeed, got %v", err)
	}

	_, err := run(t, "do", "--settings", path, "app/fail", "boom")
	if err == nil || !strings.Contains(err.Error(), "failed with boom") {
		t.Errorf("expected the lua error to surface, got %v", err)
	}
}

func TestAddAndListCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if _, err := run(t, "add", "--settings", path, "--command", "echo", "--arg", "hi", "--priority", "1", "app/start"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := run(t, "add", "--settings", path, "--log", "app/start"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	loaded, err := config.LoadSettings(path)
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if len(loaded.Actions["app/start"]) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(loaded.Actions["app/start"]))
	}
	if p := loaded.Actions["app/start"][0].Priority; p == nil || *p != 1 {
		t.Errorf("expected priority 1, got %v", p)
	}
	if loaded.Actions["app/start"][1].Priority != nil {
		t.Error("expected no explicit priority on the second definition")
	}

	out, err := run(t, "list", "--settings", path)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	first := strings.Index(out, "echo hi")
	second := strings.Index(out, " log ")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected command before log in execution order, got:\n%s", out)
	}
}

func TestAddRejectsInvalidName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if _, err := run(t, "add", "--settings", path, "--log", "bad name!"); err == nil {
		t.Error("expected error for invalid hook name")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("settings file should not have been created")
	}
}
