package pipeline

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/options"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// Option configures a stage constructor.
type Option func(*settings)

type settings struct {
	library     engine.Library
	libraryName string
	organizer   []options.Option
	logger      *slog.Logger
	metrics     *Metrics
	destination Destination
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:      slog.Default(),
		destination: DiskDestination{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLibrary sets the engine library Lint constructs its engine from.
func WithLibrary(lib engine.Library) Option {
	return func(s *settings) {
		s.library = lib
	}
}

// WithLibraryName opens a registered engine library by name when no library
// is given with WithLibrary.
func WithLibraryName(name string) Option {
	return func(s *settings) {
		s.libraryName = name
	}
}

// WithOrganizerOptions configures how Lint organizes raw options.
func WithOrganizerOptions(opts ...options.Option) Option {
	return func(s *settings) {
		s.organizer = append(s.organizer, opts...)
	}
}

// WithLogger sets the logger for warnings and debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records stage activity.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithDestination sets where Fix writes fixed files.
func WithDestination(d Destination) Option {
	return func(s *settings) {
		if d != nil {
			s.destination = d
		}
	}
}

// transform builds a stage whose failures are counted per stage name.
func (s *settings) transform(name string, handle stream.Handler[*vfile.File], flush stream.Flusher) *stream.Transform[*vfile.File] {
	var h stream.Handler[*vfile.File]
	if handle != nil {
		h = func(ctx context.Context, f *vfile.File) error {
			err := handle(ctx, f)
			if err != nil {
				s.metrics.stageError(name)
			}
			return err
		}
	}
	var fl stream.Flusher
	if flush != nil {
		fl = func(ctx context.Context) error {
			err := flush(ctx)
			if err != nil {
				s.metrics.stageError(name)
			}
			return err
		}
	}
	return stream.New(name, h, fl)
}
