package hooks

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPriority is the priority of handlers registered without WithPriority.
const DefaultPriority = 10

const tracerName = "github.com/imjasonh/hookreg/internal/hooks"

// Callback is invoked when its hook is dispatched. For filters args[0] is
// the current value and the returned value replaces it; for actions the
// returned value is ignored. A returned Awaiter is waited on.
type Callback func(ctx context.Context, args ...any) (any, error)

// Handler is a callback registered on a hook.
type Handler struct {
	Callback Callback
	Priority int
}

// Kind selects between the action and filter hook lists.
type Kind int

const (
	Action Kind = iota
	Filter
)

func (k Kind) String() string {
	switch k {
	case Action:
		return "action"
	case Filter:
		return "filter"
	default:
		return "unknown"
	}
}

// Registry holds the handlers registered for each action and filter hook.
// It is safe for concurrent use. Callbacks run without the lock held, so a
// callback may register further handlers.
type Registry struct {
	mu      sync.RWMutex
	actions map[string][]Handler
	filters map[string][]Handler

	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger.With("component", "hooks")
		}
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		actions: make(map[string][]Handler),
		filters: make(map[string][]Handler),
		logger:  slog.Default().With("component", "hooks"),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddOption configures a single registration.
type AddOption func(*Handler)

// WithPriority sets the handler priority. Lower values run first.
func WithPriority(priority int) AddOption {
	return func(h *Handler) {
		h.Priority = priority
	}
}

// AddAction registers cb on the action hook name.
func (r *Registry) AddAction(name string, cb Callback, opts ...AddOption) error {
	return r.add(Action, name, cb, opts)
}

// AddFilter registers cb on the filter hook name.
func (r *Registry) AddFilter(name string, cb Callback, opts ...AddOption) error {
	return r.add(Filter, name, cb, opts)
}

func (r *Registry) add(kind Kind, name string, cb Callback, opts []AddOption) error {
	if err := ValidateName(name); err != nil {
		r.logger.Error("invalid hook name", "kind", kind.String(), "name", name, "error", err)
		return err
	}
	if cb == nil {
		return ErrNilCallback
	}

	h := Handler{Callback: cb, Priority: DefaultPriority}
	for _, opt := range opts {
		opt(&h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.list(kind)
	handlers := append(slices.Clone(list[name]), h)
	slices.SortStableFunc(handlers, func(a, b Handler) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	list[name] = handlers
	return nil
}

// list returns the map for kind. Callers must hold r.mu.
func (r *Registry) list(kind Kind) map[string][]Handler {
	if kind == Filter {
		return r.filters
	}
	return r.actions
}

// snapshot returns a copy of the handlers for name so that registrations made
// during a dispatch do not affect it.
func (r *Registry) snapshot(kind Kind, name string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.list(kind)[name])
}

// DoAction runs every handler registered on the action hook name with args,
// one after another in priority order. It stops at the first error, which is
// returned as a *HandlerError.
func (r *Registry) DoAction(ctx context.Context, name string, args ...any) error {
	handlers := r.snapshot(Action, name)
	if len(handlers) == 0 {
		return nil
	}

	ctx, span := r.startSpan(ctx, Action, name, len(handlers))
	defer span.End()

	r.logger.Debug("running action", "name", name, "handlers", len(handlers))
	for i, h := range handlers {
		if _, err := call(ctx, h.Callback, args); err != nil {
			return r.fail(span, Action, name, i, h, err)
		}
	}
	return nil
}

// ApplyFilters pipes args[0] through every handler registered on the filter
// hook name in priority order. Each handler is called with the current value
// followed by args[1:], and its result becomes the current value. With no
// handlers args[0] is returned unchanged.
func (r *Registry) ApplyFilters(ctx context.Context, name string, args ...any) (any, error) {
	var value any
	if len(args) > 0 {
		value = args[0]
	}

	handlers := r.snapshot(Filter, name)
	if len(handlers) == 0 {
		return value, nil
	}

	ctx, span := r.startSpan(ctx, Filter, name, len(handlers))
	defer span.End()

	r.logger.Debug("applying filters", "name", name, "handlers", len(handlers))
	current := make([]any, max(len(args), 1))
	copy(current, args)
	for i, h := range handlers {
		ret, err := call(ctx, h.Callback, current)
		if err != nil {
			return nil, r.fail(span, Filter, name, i, h, err)
		}
		current[0] = ret
	}
	return current[0], nil
}

// call invokes cb and waits on the result while it is an Awaiter.
func call(ctx context.Context, cb Callback, args []any) (any, error) {
	ret, err := cb(ctx, args...)
	for err == nil {
		a, ok := ret.(Awaiter)
		if !ok {
			break
		}
		ret, err = a.Await(ctx)
	}
	return ret, err
}

func (r *Registry) startSpan(ctx context.Context, kind Kind, name string, n int) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "hooks."+kind.String(),
		trace.WithAttributes(
			attribute.String("hook.name", name),
			attribute.String("hook.kind", kind.String()),
			attribute.Int("hook.handlers", n),
		))
}

func (r *Registry) fail(span trace.Span, kind Kind, name string, i int, h Handler, err error) error {
	herr := &HandlerError{Hook: name, Kind: kind, Index: i, Priority: h.Priority, Err: err}
	span.RecordError(herr)
	span.SetStatus(codes.Error, herr.Error())
	return herr
}

// Names returns the sorted names of hooks of the given kind that have at
// least one handler.
func (r *Registry) Names(kind Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.list(kind)))
	for name, handlers := range r.list(kind) {
		if len(handlers) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Handlers returns a copy of the handlers registered on name, in the order
// they run.
func (r *Registry) Handlers(kind Kind, name string) []Handler {
	return r.snapshot(kind, name)
}
