package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/imjasonh/hookreg/internal/hooks"
)

// Executor defines the interface for running external commands
type Executor interface {
	Execute(ctx context.Context, dir string, stdin []byte, name string, args ...string) ([]byte, error)
}

// RealExecutor is the default implementation that runs actual commands
type RealExecutor struct{}

// Execute runs a command with stdin and returns its stdout
func (e *RealExecutor) Execute(ctx context.Context, dir string, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(stdin)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return output, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return output, err
	}
	return output, nil
}

// CommandInput is the JSON document written to a command hook's stdin.
type CommandInput struct {
	Hook string `json:"hook"`
	Kind string `json:"kind"`
	Args []any  `json:"args"`
}

func commandCallback(executor Executor, dir string, kind hooks.Kind, name, command string, args []string, timeout time.Duration) hooks.Callback {
	return func(ctx context.Context, hookArgs ...any) (any, error) {
		if hookArgs == nil {
			hookArgs = []any{}
		}
		stdin, err := json.Marshal(CommandInput{Hook: name, Kind: kind.String(), Args: hookArgs})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal hook input: %w", err)
		}

		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		output, err := executor.Execute(ctx, dir, stdin, command, args...)
		if err != nil {
			return nil, fmt.Errorf("command %s failed: %w", command, err)
		}

		slog.Debug("command hook completed",
			"hook", name,
			"command", command,
			"duration", time.Since(start),
			"output_bytes", len(output))

		if kind != hooks.Filter {
			return nil, nil
		}
		return parseFilterOutput(output, hookArgs), nil
	}
}

// parseFilterOutput turns a filter command's stdout into the next value.
// Empty output keeps the current value; JSON output is decoded; anything else
// is used as a string.
func parseFilterOutput(output []byte, args []any) any {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		if len(args) > 0 {
			return args[0]
		}
		return nil
	}

	if json.Valid(trimmed) {
		var v any
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v
		}
	}
	return string(trimmed)
}
