package hooks

import "context"

// Awaiter is a result that completes later. When a callback returns an
// Awaiter, the dispatcher waits for it before running the next callback and
// uses its result in place of the Awaiter itself.
type Awaiter interface {
	Await(ctx context.Context) (any, error)
}

// Promise is an Awaiter backed by a goroutine.
type Promise struct {
	done  chan struct{}
	value any
	err   error
}

// Go runs fn in a new goroutine and returns a Promise for its result.
func Go(fn func() (any, error)) *Promise {
	p := &Promise{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.value, p.err = fn()
	}()
	return p
}

// Await blocks until the goroutine finishes or ctx is done.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel that is closed once the result is available.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Async wraps cb so that it runs in its own goroutine and returns a Promise.
// Registering an Async callback does not change dispatch order: the
// dispatcher still waits for it before starting the next callback.
func Async(cb Callback) Callback {
	return func(ctx context.Context, args ...any) (any, error) {
		return Go(func() (any, error) {
			return cb(ctx, args...)
		}), nil
	}
}
