// Package pipeline provides the lint pipeline stages: Lint attaches engine
// results to files, and the other stages report, gate, format and write
// back those results.
//
// Every stage is a stream.Transform over *vfile.File and is composed with
// stream.Pipeline:
//
//	lintStage, err := pipeline.Lint(ctx, map[string]any{"rules": map[string]any{"semi": 2}})
//	p := stream.NewPipeline[*vfile.File](lintStage, pipeline.FailAfterError())
//	_, err = p.Run(ctx, files)
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/options"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// Messages for files the engine ignores, by reason.
const (
	IgnoredHiddenMessage      = `File ignored by default. Use a negated ignore pattern (like "!<relative/path/to/filename>") to override.`
	IgnoredNodeModulesMessage = `File ignored by default. Use a negated ignore pattern like "!node_modules/*" to override.`
	IgnoredByPatternMessage   = `File ignored because of a matching ignore pattern. Set "ignore" option to false to override.`
	lintStageName             = "lint"
)

// Lint organizes raw options (nil, a config file path or an option map),
// constructs an engine and returns the lint stage. Option errors are
// returned here, before any file is read.
func Lint(ctx context.Context, input any, opts ...Option) (*stream.Transform[*vfile.File], error) {
	s := newSettings(opts)
	lib := s.library
	if lib == nil {
		var err error
		lib, err = engine.Open(ctx, s.libraryName, s.logger)
		if err != nil {
			return nil, err
		}
	}
	organized, err := options.New(lib, s.organizer...).Organize(input)
	if err != nil {
		return nil, err
	}
	return LintOrganized(ctx, organized, opts...)
}

// LintOrganized constructs an engine from already organized options and
// returns the lint stage.
func LintOrganized(ctx context.Context, organized *options.Organized, opts ...Option) (*stream.Transform[*vfile.File], error) {
	s := newSettings(opts)
	if organized == nil || organized.Constructor == nil {
		return nil, fmt.Errorf("%w: organized options carry no engine constructor", ErrInvalidArgument)
	}
	organized.LogMigrations(s.logger)

	eng, err := organized.Constructor(ctx, organized.EngineOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	cwd, err := engineCwd(organized.EngineOptions)
	if err != nil {
		return nil, err
	}

	binding := engine.NewBinding(eng, organized.Variant, cwd, organized.EngineOptions["fix"])
	l := &linter{
		settings:    s,
		binding:     binding,
		quiet:       organized.Quiet,
		warnIgnored: organized.WarnIgnoredEnabled(),
	}
	s.logger.Debug("lint stage created",
		slog.String("binding", binding.ID.String()),
		slog.String("variant", string(binding.Variant)),
		slog.String("cwd", cwd))
	return s.transform(lintStageName, l.handle, nil), nil
}

func engineCwd(opts map[string]any) (string, error) {
	cwd := engine.GetOption(opts, "cwd", "")
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve cwd %q: %w", cwd, err)
	}
	return abs, nil
}

type linter struct {
	*settings
	binding     *engine.Binding
	quiet       lint.Filter
	warnIgnored bool
}

func (l *linter) handle(ctx context.Context, f *vfile.File) error {
	if f.IsNull() || f.IsDirectory() {
		l.metrics.file(OutcomeSkipped)
		return nil
	}
	if f.IsStream() {
		return fmt.Errorf("%s: %w", f.Path, ErrUnsupportedContent)
	}

	eng := l.binding.Engine
	ignored, err := eng.IsPathIgnored(ctx, f.Path)
	if err != nil {
		return err
	}
	if ignored {
		l.metrics.file(OutcomeIgnored)
		if !l.warnIgnored {
			l.logger.Debug("file ignored", slog.String("path", f.Path))
			return nil
		}
		f.LintResult = lint.NewResult(f.Path, []lint.Message{{
			Severity: lint.SeverityWarning,
			Message:  ignoredMessage(l.binding.Cwd, f.Path),
		}})
		f.Binding = l.binding
		l.metrics.result(f.LintResult)
		return nil
	}

	results, err := eng.LintText(ctx, string(f.Contents), engine.LintTextOptions{FilePath: f.Path})
	if err != nil {
		return err
	}
	if len(results) != 1 {
		return fmt.Errorf("engine returned %d results for %s, expected 1", len(results), f.Path)
	}
	result := results[0]
	if l.quiet != nil {
		result = lint.FilterResult(result, l.quiet)
	}
	if result.HasOutput() {
		f.Contents = []byte(*result.Output)
		result.Fixed = true
	}

	f.LintResult = result
	f.Binding = l.binding
	l.metrics.file(OutcomeLinted)
	l.metrics.result(result)
	l.logger.Debug("file linted",
		slog.String("path", f.Path),
		slog.Int("errors", result.ErrorCount),
		slog.Int("warnings", result.WarningCount),
		slog.Bool("fixed", result.Fixed))
	return nil
}

// ignoredMessage explains why path was ignored, judged from its path
// relative to cwd.
func ignoredMessage(cwd, path string) string {
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		rel = path
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, seg := range segments {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return IgnoredHiddenMessage
		}
	}
	for _, seg := range segments {
		if seg == "node_modules" {
			return IgnoredNodeModulesMessage
		}
	}
	return IgnoredByPatternMessage
}
