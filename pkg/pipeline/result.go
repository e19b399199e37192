package pipeline

import (
	"context"

	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// Result runs action for every file that carries a lint result, in arrival
// order. Files without a result pass through without a call.
func Result(action Action[*lint.Result], opts ...Option) (*stream.Transform[*vfile.File], error) {
	if err := action.validate(); err != nil {
		return nil, err
	}
	return resultTransform("result", action, opts), nil
}

// resultTransform builds the stage for an action that is already valid.
func resultTransform(name string, action Action[*lint.Result], opts []Option) *stream.Transform[*vfile.File] {
	s := newSettings(opts)
	return s.transform(name, func(ctx context.Context, f *vfile.File) error {
		if f.LintResult == nil {
			return nil
		}
		return action.call(ctx, f.LintResult)
	}, nil)
}

// Results runs action once at end of stream with every lint result seen,
// in arrival order.
func Results(action Action[*lint.AggregatedResults], opts ...Option) (*stream.Transform[*vfile.File], error) {
	if err := action.validate(); err != nil {
		return nil, err
	}
	return resultsTransform("results", action, opts), nil
}

// resultsTransform builds the stage for an action that is already valid.
func resultsTransform(name string, action Action[*lint.AggregatedResults], opts []Option) *stream.Transform[*vfile.File] {
	s := newSettings(opts)
	results := lint.NewAggregatedResults()
	return s.transform(name,
		func(_ context.Context, f *vfile.File) error {
			if f.LintResult != nil {
				results.Add(f.LintResult)
			}
			return nil
		},
		func(ctx context.Context) error {
			return action.call(ctx, results)
		})
}
