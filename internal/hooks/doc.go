// Package hooks provides a registry of named extension points.
//
// Callbacks are attached to a hook name with a priority and run in ascending
// priority order, ties in registration order. There are two kinds of hooks:
//
//   - Actions: every callback receives the same arguments and its return
//     value is discarded (DoAction).
//   - Filters: the first argument is a value piped through each callback in
//     turn; every callback's result replaces it for the next one
//     (ApplyFilters).
//
// Callbacks run one at a time. A callback may return an Awaiter (see Go and
// Async) and the dispatcher waits for it before starting the next callback.
// The first callback error stops the chain and is returned to the caller.
//
// Example usage:
//
//	r := hooks.New()
//	r.AddFilter("post/title", func(ctx context.Context, args ...any) (any, error) {
//		return strings.ToUpper(args[0].(string)), nil
//	}, hooks.WithPriority(5))
//
//	title, err := r.ApplyFilters(ctx, "post/title", "hello")
//
// The package-level functions operate on Default, a single process-wide
// registry for code that has no Registry passed to it.
package hooks
