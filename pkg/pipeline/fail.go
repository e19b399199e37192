package pipeline

import (
	"fmt"

	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// FailOnError fails the stream at the first file whose result holds an error.
func FailOnError(opts ...Option) *stream.Transform[*vfile.File] {
	return resultTransform("failOnError", Sync(func(r *lint.Result) error {
		for _, m := range r.Messages {
			if lint.IsError(m) {
				return &LintError{
					Kind:       LintErrorKind,
					FileName:   r.FilePath,
					LineNumber: m.Line,
					Message:    m.Message,
				}
			}
		}
		return nil
	}), opts)
}

// FailAfterError fails the stream at its end if any result held an error.
func FailAfterError(opts ...Option) *stream.Transform[*vfile.File] {
	return resultsTransform("failAfterError", Sync(func(results *lint.AggregatedResults) error {
		n := results.ErrorCount
		if n == 0 {
			return nil
		}
		noun := "errors"
		if n == 1 {
			noun = "error"
		}
		return &LintError{
			Kind:    LintErrorKind,
			Message: fmt.Sprintf("Failed with %d %s", n, noun),
		}
	}), opts)
}
