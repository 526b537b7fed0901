// Package future provides a single-assignment completion cell. It backs both
// the per-write completion handles and the connect outcome, whose contract
// requires exactly-once completion with idempotent later attempts.
package future

import (
	"context"

	"go.uber.org/atomic"
)

type Future struct {
	completed atomic.Bool
	done      chan struct{}

	value any
	err   error
}

func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete fulfils the future. Only the first Complete or Fail wins;
// the return value reports whether this call was the one that completed it.
func (f *Future) Complete(value any) bool {
	if !f.completed.CompareAndSwap(false, true) {
		return false
	}
	f.value = value
	close(f.done)
	return true
}

// Fail fails the future. Idempotent in the same way as Complete.
func (f *Future) Fail(err error) bool {
	if !f.completed.CompareAndSwap(false, true) {
		return false
	}
	f.err = err
	close(f.done)
	return true
}

// Completed reports whether the future has been resolved either way.
func (f *Future) Completed() bool {
	return f.completed.Load()
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves or ctx is cancelled.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Failed returns a future already resolved with err.
func Failed(err error) *Future {
	f := New()
	f.Fail(err)
	return f
}

// CompletedWith returns a future already resolved with value.
func CompletedWith(value any) *Future {
	f := New()
	f.Complete(value)
	return f
}
