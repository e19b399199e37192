// Package stream provides the sequential object-stream stage every lint
// pipeline stage is built on, and a runner that chains stages with channels.
//
// A Transform calls its handler for one item at a time, in arrival order,
// and forwards the item only after the handler returns. When the input
// closes it runs its flush handler before closing its output. The first
// failure stops the stage: nothing more is forwarded and the output is left
// open, so downstream stages never see a normal end of stream.
package stream

import (
	"context"
	"runtime/debug"
)

// Handler processes one item, mutating it in place if it needs to.
type Handler[T any] func(ctx context.Context, item T) error

// Flusher runs once after the last item.
type Flusher func(ctx context.Context) error

// Stage is one element of a pipeline.
type Stage[T any] interface {
	Name() string
	Run(ctx context.Context, in <-chan T, out chan<- T) error
}

// Transform is a sequential Stage built from a handler and an optional flusher.
type Transform[T any] struct {
	name   string
	handle Handler[T]
	flush  Flusher
}

// New creates a Transform. handle may be nil to forward items unchanged.
func New[T any](name string, handle Handler[T], flush Flusher) *Transform[T] {
	return &Transform[T]{name: name, handle: handle, flush: flush}
}

// Name returns the stage name used in errors.
func (t *Transform[T]) Name() string {
	return t.name
}

// Run consumes in until it is closed or ctx is done. out is closed only when
// the stage completes successfully. Errors are returned as *PluginError.
func (t *Transform[T]) Run(ctx context.Context, in <-chan T, out chan<- T) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-in:
			if !ok {
				if err := t.Flush(ctx); err != nil {
					return err
				}
				close(out)
				return nil
			}
			if err := t.Handle(ctx, item); err != nil {
				return err
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Handle runs the item handler once, converting panics to errors.
func (t *Transform[T]) Handle(ctx context.Context, item T) (err error) {
	if t.handle == nil {
		return nil
	}
	defer t.recoverPanic(&err)
	return Wrap(t.name, t.handle(ctx, item))
}

// Flush runs the end-of-stream handler once, converting panics to errors.
func (t *Transform[T]) Flush(ctx context.Context) (err error) {
	if t.flush == nil {
		return nil
	}
	defer t.recoverPanic(&err)
	return Wrap(t.name, t.flush(ctx))
}

func (t *Transform[T]) recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = Wrap(t.name, &PanicError{Value: r, Stack: debug.Stack()})
	}
}
