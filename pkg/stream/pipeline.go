package stream

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pipeline chains stages so that each stage's output feeds the next.
type Pipeline[T any] struct {
	stages []Stage[T]
	buffer int
}

// NewPipeline creates a pipeline over stages, in order.
func NewPipeline[T any](stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages}
}

// WithBuffer sets the channel capacity between stages. The default of zero
// hands items over one at a time.
func (p *Pipeline[T]) WithBuffer(n int) *Pipeline[T] {
	p.buffer = n
	return p
}

// Run feeds items through the pipeline and returns the items that left the
// last stage. The first stage failure cancels every other stage and is
// returned; no stage flushes after a failure upstream of it.
func (p *Pipeline[T]) Run(ctx context.Context, items []T) ([]T, error) {
	var out []T
	err := p.RunFunc(ctx, FromSlice(items), func(item T) {
		out = append(out, item)
	})
	return out, err
}

// RunFunc feeds items from src through the pipeline, calling sink for every
// item that leaves the last stage. src must be closed by its producer.
func (p *Pipeline[T]) RunFunc(ctx context.Context, src func(ctx context.Context, out chan<- T) error, sink func(T)) error {
	g, ctx := errgroup.WithContext(ctx)

	head := make(chan T, p.buffer)
	g.Go(func() error {
		return src(ctx, head)
	})

	var in <-chan T = head
	for _, stage := range p.stages {
		stage := stage
		out := make(chan T, p.buffer)
		stageIn := in
		g.Go(func() error {
			return stage.Run(ctx, stageIn, out)
		})
		in = out
	}

	tail := in
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case item, ok := <-tail:
				if !ok {
					return nil
				}
				if sink != nil {
					sink(item)
				}
			}
		}
	})

	return g.Wait()
}

// FromSlice returns a source that emits items in order and then closes.
func FromSlice[T any](items []T) func(ctx context.Context, out chan<- T) error {
	return func(ctx context.Context, out chan<- T) error {
		for _, item := range items {
			select {
			case out <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		close(out)
		return nil
	}
}
