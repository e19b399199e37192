package pipeline

import (
	"errors"
)

var (
	// ErrUnsupportedContent is returned when a file's contents are an
	// unread stream.
	ErrUnsupportedContent = errors.New("streaming file contents are not supported")

	// ErrMultipleEngineInstances is returned by Format when results come
	// from more than one lint stage.
	ErrMultipleEngineInstances = errors.New("the files in the stream were not processed by the same instance of the engine")

	// ErrUnboundResult is returned by FormatEach and Format for a lint
	// result that no lint stage produced.
	ErrUnboundResult = errors.New("lint result is not bound to an engine instance")

	// ErrInvalidArgument is returned by stage constructors given an unusable
	// action or formatter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// LintErrorKind identifies errors raised by the failure-gating stages.
const LintErrorKind = "ESLintError"

// LintError is raised once lint errors are observed by FailOnError or
// FailAfterError. FileName and LineNumber are set only by FailOnError.
type LintError struct {
	Kind       string
	FileName   string
	LineNumber int
	Message    string
}

func (e *LintError) Error() string {
	return e.Message
}
