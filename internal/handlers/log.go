package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/imjasonh/hookreg/internal/hooks"
)

// logCallback logs every dispatch of the hook. As a filter it passes the
// value through unchanged.
func logCallback(kind hooks.Kind, name string) hooks.Callback {
	return func(ctx context.Context, args ...any) (any, error) {
		slog.InfoContext(ctx, "hook fired",
			"hook", name,
			"kind", kind.String(),
			"args", args,
			"timestamp", time.Now().Unix())

		if kind == hooks.Filter && len(args) > 0 {
			return args[0], nil
		}
		return nil, nil
	}
}
