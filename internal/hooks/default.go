package hooks

import (
	"context"
	"sync"
)

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry used by the package-level
// functions. It is created on first use and lives until the process exits.
// Code that is handed a *Registry should use that instead.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// AddAction registers cb on the action hook name of the default registry.
func AddAction(name string, cb Callback, opts ...AddOption) error {
	return Default().AddAction(name, cb, opts...)
}

// AddFilter registers cb on the filter hook name of the default registry.
func AddFilter(name string, cb Callback, opts ...AddOption) error {
	return Default().AddFilter(name, cb, opts...)
}

// DoAction runs the action hook name on the default registry.
func DoAction(ctx context.Context, name string, args ...any) error {
	return Default().DoAction(ctx, name, args...)
}

// ApplyFilters runs the filter hook name on the default registry.
func ApplyFilters(ctx context.Context, name string, args ...any) (any, error) {
	return Default().ApplyFilters(ctx, name, args...)
}
