package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
)

// FixDocsURL documents the fix option; the default formatter points here
// instead of the engine's command-line hint.
const FixDocsURL = "https://github.com/leapstack-labs/lintstream#fix"

const (
	engineFixHint  = "with the `--fix` option"
	adapterFixHint = "with the `fix: true` option (" + FixDocsURL + ")"
)

// Writer receives formatted output.
type Writer func(text string) error

// StdoutWriter prints text followed by a newline.
func StdoutWriter(text string) error {
	_, err := fmt.Fprintln(os.Stdout, text)
	return err
}

// checkFormatter rejects formatter values that resolveFormatter cannot use.
func checkFormatter(spec any) error {
	switch spec.(type) {
	case nil, string, formatter.Func, func([]*lint.Result, *formatter.Context) (string, error), formatter.Formatter:
		return nil
	default:
		return fmt.Errorf("%w: formatter must be a name, a formatter.Formatter or a function, got %T", ErrInvalidArgument, spec)
	}
}

// resolveFormatter turns a formatter value into a Formatter for binding.
// Plain functions are wrapped to see results sorted by path.
func resolveFormatter(ctx context.Context, spec any, binding *engine.Binding) (formatter.Formatter, error) {
	switch f := spec.(type) {
	case nil:
		base, err := binding.Engine.LoadFormatter(ctx, "")
		if err != nil {
			return nil, err
		}
		return fixHintFormatter{base}, nil
	case string:
		return binding.Engine.LoadFormatter(ctx, f)
	case formatter.Func:
		return sortedFormatter(f), nil
	case func([]*lint.Result, *formatter.Context) (string, error):
		return sortedFormatter(f), nil
	case formatter.Formatter:
		return f, nil
	default:
		return nil, checkFormatter(spec)
	}
}

func sortedFormatter(fn formatter.Func) formatter.Func {
	return func(results []*lint.Result, fctx *formatter.Context) (string, error) {
		sorted := make([]*lint.Result, len(results))
		copy(sorted, results)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].FilePath < sorted[j].FilePath
		})
		return fn(sorted, fctx)
	}
}

// fixHintFormatter rewrites the engine's "--fix" hint for pipeline users.
type fixHintFormatter struct {
	formatter.Formatter
}

func (f fixHintFormatter) Format(results []*lint.Result, ctx *formatter.Context) (string, error) {
	out, err := f.Formatter.Format(results, ctx)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(out, engineFixHint, adapterFixHint), nil
}

// render formats results with a context whose rule metadata comes from the
// binding's engine on first use.
func render(ctx context.Context, f formatter.Formatter, binding *engine.Binding, results []*lint.Result) (string, error) {
	fctx := formatter.NewContext(binding.Cwd, func() (lint.RulesMeta, error) {
		return binding.Engine.RulesMetaForResults(ctx, results)
	})
	return f.Format(results, fctx)
}

func write(writer Writer, text string) error {
	if text == "" {
		return nil
	}
	return writer(text)
}

// FormatEach renders each file's result on its own and writes it. The
// formatter is resolved once per lint stage. A nil writer prints to stdout.
func FormatEach(spec any, writer Writer, opts ...Option) (*stream.Transform[*vfile.File], error) {
	if err := checkFormatter(spec); err != nil {
		return nil, err
	}
	if writer == nil {
		writer = StdoutWriter
	}
	s := newSettings(opts)
	cache := map[uuid.UUID]formatter.Formatter{}

	return s.transform("formatEach", func(ctx context.Context, f *vfile.File) error {
		if f.LintResult == nil {
			return nil
		}
		if f.Binding == nil {
			return fmt.Errorf("%w: %s", ErrUnboundResult, f.LintResult.FilePath)
		}
		fmtr, ok := cache[f.Binding.ID]
		if !ok {
			var err error
			fmtr, err = resolveFormatter(ctx, spec, f.Binding)
			if err != nil {
				return err
			}
			cache[f.Binding.ID] = fmtr
		}
		out, err := render(ctx, fmtr, f.Binding, []*lint.Result{f.LintResult})
		if err != nil {
			return err
		}
		return write(writer, out)
	}, nil), nil
}

// Format renders every result at end of stream and writes the output once.
// All results must come from the same lint stage. A nil writer prints to
// stdout.
func Format(spec any, writer Writer, opts ...Option) (*stream.Transform[*vfile.File], error) {
	if err := checkFormatter(spec); err != nil {
		return nil, err
	}
	if writer == nil {
		writer = StdoutWriter
	}
	s := newSettings(opts)
	var (
		results []*lint.Result
		common  *engine.Binding
	)

	return s.transform("format",
		func(_ context.Context, f *vfile.File) error {
			if f.LintResult == nil {
				return nil
			}
			if f.Binding == nil {
				return fmt.Errorf("%w: %s", ErrUnboundResult, f.LintResult.FilePath)
			}
			if common == nil {
				common = f.Binding
			} else if !common.Same(f.Binding) {
				return ErrMultipleEngineInstances
			}
			results = append(results, f.LintResult)
			return nil
		},
		func(ctx context.Context) error {
			if len(results) == 0 {
				return nil
			}
			fmtr, err := resolveFormatter(ctx, spec, common)
			if err != nil {
				return err
			}
			out, err := render(ctx, fmtr, common, results)
			if err != nil {
				return err
			}
			return write(writer, out)
		}), nil
}
