package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// Destination writes fixed files.
type Destination interface {
	Write(ctx context.Context, f *vfile.File) error
}

// DestinationFunc adapts a function to a Destination.
type DestinationFunc func(ctx context.Context, f *vfile.File) error

// Write calls fn.
func (fn DestinationFunc) Write(ctx context.Context, f *vfile.File) error {
	return fn(ctx, f)
}

// DiskDestination writes a file back under its own base directory.
type DiskDestination struct{}

// Write implements Destination.
func (DiskDestination) Write(_ context.Context, f *vfile.File) error {
	target := filepath.Join(f.Base, f.Relative())
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	perm := f.Mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(target, f.Contents, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// Fix writes files whose contents the lint stage replaced with fixed output.
// Other files pass through untouched.
func Fix(opts ...Option) *stream.Transform[*vfile.File] {
	s := newSettings(opts)
	var warnOnce sync.Once

	return s.transform("fix", func(ctx context.Context, f *vfile.File) error {
		if f.LintResult == nil {
			return nil
		}
		if !f.Binding.FixEnabled() {
			warnOnce.Do(func() {
				s.logger.Warn(`fix stage has no effect unless the lint stage is given "fix: true"`,
					slog.String("stage", "fix"))
			})
		}
		if !f.LintResult.Fixed {
			return nil
		}
		if err := s.destination.Write(ctx, f); err != nil {
			return err
		}
		s.metrics.file(OutcomeFixed)
		s.logger.Debug("fixed file written", slog.String("path", f.Path))
		return nil
	}, nil)
}
