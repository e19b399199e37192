package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine counts formatter and metadata lookups.
type fakeEngine struct {
	formatter formatter.Formatter
	loads     []string
	metaCalls int
}

func (e *fakeEngine) IsPathIgnored(context.Context, string) (bool, error) { return false, nil }

func (e *fakeEngine) LintText(_ context.Context, _ string, opts engine.LintTextOptions) ([]*lint.Result, error) {
	return []*lint.Result{lint.NewResult(opts.FilePath, nil)}, nil
}

func (e *fakeEngine) LoadFormatter(_ context.Context, name string) (formatter.Formatter, error) {
	e.loads = append(e.loads, name)
	if e.formatter != nil {
		return e.formatter, nil
	}
	return formatter.Lookup(name)
}

func (e *fakeEngine) RulesMetaForResults(context.Context, []*lint.Result) (lint.RulesMeta, error) {
	e.metaCalls++
	return lint.RulesMeta{"semi": {Type: "layout"}}, nil
}

// jsonObject is a Formatter that is not a plain function.
type jsonObject struct{}

func (jsonObject) Format(results []*lint.Result, ctx *formatter.Context) (string, error) {
	return formatter.JSON(results, ctx)
}

func resultFile(binding *engine.Binding, path string, msgs ...lint.Message) *vfile.File {
	f := vfile.New("/work", "/work", path, []byte{})
	f.LintResult = lint.NewResult(f.Path, msgs)
	f.Binding = binding
	return f
}

func collect(out *[]string) Writer {
	return func(text string) error {
		*out = append(*out, text)
		return nil
	}
}

func TestResult_ActionModes(t *testing.T) {
	binding := engine.NewBinding(&fakeEngine{}, engine.VariantFlat, "/work", nil)
	files := []*vfile.File{
		resultFile(binding, "a.js"),
		vfile.New("/work", "", "plain.js", []byte("x")),
		resultFile(binding, "b.js"),
	}

	tests := []struct {
		name   string
		action func(seen *[]string) Action[*lint.Result]
	}{
		{
			name: "sync",
			action: func(seen *[]string) Action[*lint.Result] {
				return Sync(func(r *lint.Result) error {
					*seen = append(*seen, r.FilePath)
					return nil
				})
			},
		},
		{
			name: "callback",
			action: func(seen *[]string) Action[*lint.Result] {
				return Callback(func(r *lint.Result, done func(error)) {
					go func() {
						time.Sleep(time.Millisecond)
						*seen = append(*seen, r.FilePath)
						done(nil)
					}()
				})
			},
		},
		{
			name: "returning",
			action: func(seen *[]string) Action[*lint.Result] {
				return Returning(func(_ context.Context, r *lint.Result) error {
					*seen = append(*seen, r.FilePath)
					return nil
				})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []string
			stage, err := Result(tt.action(&seen))
			require.NoError(t, err)
			out, err := run(t, files, stage)
			require.NoError(t, err)
			assert.Len(t, out, 3)
			assert.Equal(t, []string{"/work/a.js", "/work/b.js"}, seen)
		})
	}
}

func TestResult_InvalidAction(t *testing.T) {
	_, err := Result(Sync[*lint.Result](nil))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Results(Callback[*lint.AggregatedResults](nil))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Result(Action[*lint.Result]{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResult_ActionFailures(t *testing.T) {
	binding := engine.NewBinding(&fakeEngine{}, engine.VariantFlat, "/work", nil)
	boom := errors.New("boom")

	tests := []struct {
		name   string
		action Action[*lint.Result]
		check  func(t *testing.T, err error)
	}{
		{
			name:   "returned error",
			action: Sync(func(*lint.Result) error { return boom }),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name:   "callback error",
			action: Callback(func(_ *lint.Result, done func(error)) { done(boom) }),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, boom)
			},
		},
		{
			name:   "panic",
			action: Sync(func(*lint.Result) error { panic("kaboom") }),
			check: func(t *testing.T, err error) {
				var panicErr *stream.PanicError
				require.True(t, errors.As(err, &panicErr))
				assert.Equal(t, "kaboom", panicErr.Value)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := Result(tt.action)
			require.NoError(t, err)
			_, err = run(t, []*vfile.File{resultFile(binding, "a.js")}, stage)
			require.Error(t, err)
			var pluginErr *stream.PluginError
			require.True(t, errors.As(err, &pluginErr))
			assert.Equal(t, "result", pluginErr.Stage)
			tt.check(t, err)
		})
	}
}

func TestFormatEach_CachesPerBinding(t *testing.T) {
	eng1, eng2 := &fakeEngine{}, &fakeEngine{}
	b1 := engine.NewBinding(eng1, engine.VariantESLintrc, "/work", nil)
	b2 := engine.NewBinding(eng2, engine.VariantESLintrc, "/work", nil)

	warning := lint.Message{RuleID: "semi", Severity: lint.SeverityWarning, Message: "Missing semicolon.", Line: 1, Column: 10}
	files := []*vfile.File{
		resultFile(b1, "a.js", warning),
		resultFile(b1, "b.js"),
		resultFile(b2, "c.js", warning),
		vfile.New("/work", "", "none.js", []byte("x")),
	}

	var out []string
	stage, err := FormatEach("unix", collect(&out))
	require.NoError(t, err)
	_, err = run(t, files, stage)
	require.NoError(t, err)

	assert.Equal(t, []string{"unix"}, eng1.loads)
	assert.Equal(t, []string{"unix"}, eng2.loads)
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "/work/a.js:1:10: Missing semicolon.")
	assert.Contains(t, out[1], "/work/c.js:1:10")
}

func TestFormat_SingleBinding(t *testing.T) {
	eng := &fakeEngine{}
	binding := engine.NewBinding(eng, engine.VariantESLintrc, "/work", nil)

	var metaSeen int
	fn := func(results []*lint.Result, ctx *formatter.Context) (string, error) {
		for range 2 {
			meta, err := ctx.RulesMeta()
			if err != nil {
				return "", err
			}
			metaSeen = len(meta)
		}
		paths := ""
		for _, r := range results {
			paths += r.FilePath + ";"
		}
		return ctx.Cwd + "|" + paths, nil
	}

	var out []string
	stage, err := Format(fn, collect(&out))
	require.NoError(t, err)

	files := []*vfile.File{resultFile(binding, "b.js"), resultFile(binding, "a.js")}
	_, err = run(t, files, stage)
	require.NoError(t, err)

	assert.Equal(t, []string{"/work|/work/a.js;/work/b.js;"}, out)
	assert.Equal(t, 1, eng.metaCalls)
	assert.Equal(t, 1, metaSeen)
	assert.Empty(t, eng.loads)
}

func TestFormat_MultipleBindings(t *testing.T) {
	b1 := engine.NewBinding(&fakeEngine{}, engine.VariantESLintrc, "/work", nil)
	b2 := engine.NewBinding(&fakeEngine{}, engine.VariantESLintrc, "/work", nil)

	written := false
	stage, err := Format("compact", func(string) error {
		written = true
		return nil
	})
	require.NoError(t, err)

	_, err = run(t, []*vfile.File{resultFile(b1, "a.js"), resultFile(b2, "b.js")}, stage)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleEngineInstances)
	assert.Contains(t, err.Error(), "the files in the stream were not processed by the same instance of the engine")
	assert.False(t, written)
}

func TestFormat_UnboundResult(t *testing.T) {
	binding := engine.NewBinding(&fakeEngine{}, engine.VariantESLintrc, "/work", nil)

	tests := []struct {
		name  string
		stage func(Writer) (*stream.Transform[*vfile.File], error)
		files []*vfile.File
	}{
		{
			name:  "format with only unbound results",
			stage: func(w Writer) (*stream.Transform[*vfile.File], error) { return Format("compact", w) },
			files: []*vfile.File{resultFile(nil, "a.js")},
		},
		{
			name:  "format with unbound result first",
			stage: func(w Writer) (*stream.Transform[*vfile.File], error) { return Format("compact", w) },
			files: []*vfile.File{resultFile(nil, "a.js"), resultFile(binding, "b.js")},
		},
		{
			name:  "format each",
			stage: func(w Writer) (*stream.Transform[*vfile.File], error) { return FormatEach("compact", w) },
			files: []*vfile.File{resultFile(binding, "a.js"), resultFile(nil, "b.js")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []string
			stage, err := tt.stage(collect(&out))
			require.NoError(t, err)

			_, err = run(t, tt.files, stage)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnboundResult)
			assert.Contains(t, err.Error(), ".js")
		})
	}
}

func TestFailStages_Constructed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	for name, stage := range map[string]*stream.Transform[*vfile.File]{
		"failOnError":    FailOnError(),
		"failAfterError": FailAfterError(WithMetrics(m)),
	} {
		require.NotNil(t, stage, name)
		assert.Equal(t, name, stage.Name())
	}
}

func TestFormat_DefaultFormatterRewritesFixHint(t *testing.T) {
	eng := &fakeEngine{formatter: formatter.Func(func([]*lint.Result, *formatter.Context) (string, error) {
		return "1 error and 0 warnings potentially fixable with the `--fix` option.", nil
	})}
	binding := engine.NewBinding(eng, engine.VariantESLintrc, "/work", nil)

	var out []string
	stage, err := Format(nil, collect(&out))
	require.NoError(t, err)
	_, err = run(t, []*vfile.File{resultFile(binding, "a.js")}, stage)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "1 error and 0 warnings potentially fixable with the `fix: true` option ("+FixDocsURL+").", out[0])
	assert.Equal(t, []string{""}, eng.loads)
}

func TestFormat_Values(t *testing.T) {
	binding := engine.NewBinding(&fakeEngine{}, engine.VariantESLintrc, "/work", nil)
	files := []*vfile.File{resultFile(binding, "a.js")}

	t.Run("formatter object", func(t *testing.T) {
		var out []string
		stage, err := Format(jsonObject{}, collect(&out))
		require.NoError(t, err)
		_, err = run(t, files, stage)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Contains(t, out[0], `"filePath":"/work/a.js"`)
	})

	t.Run("empty output is not written", func(t *testing.T) {
		var out []string
		stage, err := Format("stylish", collect(&out))
		require.NoError(t, err)
		_, err = run(t, files, stage)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("no results", func(t *testing.T) {
		var out []string
		stage, err := Format("json", collect(&out))
		require.NoError(t, err)
		_, err = run(t, []*vfile.File{vfile.New("/work", "", "a.js", nil)}, stage)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("formatter error", func(t *testing.T) {
		stage, err := Format(func([]*lint.Result, *formatter.Context) (string, error) {
			return "", fmt.Errorf("render failed")
		}, nil)
		require.NoError(t, err)
		_, err = run(t, files, stage)
		assert.ErrorContains(t, err, "lintstream: format: render failed")
	})

	t.Run("unknown formatter name", func(t *testing.T) {
		stage, err := FormatEach("nope", nil)
		require.NoError(t, err)
		_, err = run(t, files, stage)
		var unknown *formatter.UnknownFormatterError
		assert.True(t, errors.As(err, &unknown))
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Format(42, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = FormatEach(struct{}{}, nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestIgnoredMessage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/work/node_modules/pkg/index.js", want: IgnoredNodeModulesMessage},
		{path: "/work/.hidden/index.js", want: IgnoredHiddenMessage},
		{path: "/work/node_modules/.bin/x.js", want: IgnoredHiddenMessage},
		{path: "/work/dist/index.js", want: IgnoredByPatternMessage},
		{path: "/work/./a/../b.js", want: IgnoredByPatternMessage},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ignoredMessage("/work", tt.path))
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	cwd := t.TempDir()
	lintStage := newLintStage(t, cwd, map[string]any{
		"fix":   true,
		"rules": map[string]any{"semi": 1, "no-undef": 2},
	}, WithMetrics(m))

	files := []*vfile.File{
		vfile.New(cwd, cwd, "a.js", []byte("x = 1\n")),
		vfile.New(cwd, cwd, "node_modules/b.js", []byte("x = 1\n")),
		vfile.New(cwd, cwd, "dir", nil),
	}
	dest := WithDestination(DestinationFunc(func(context.Context, *vfile.File) error { return nil }))
	_, err := run(t, files, lintStage, Fix(dest, WithMetrics(m)), FailAfterError(WithMetrics(m)))
	require.Error(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.files.WithLabelValues(OutcomeLinted)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.files.WithLabelValues(OutcomeIgnored)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.files.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.files.WithLabelValues(OutcomeFixed)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.messages.WithLabelValues("error")))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.messages.WithLabelValues("warning")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.stageErrors.WithLabelValues("failAfterError")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.file(OutcomeLinted) })
}

func TestLintOrganized_RequiresConstructor(t *testing.T) {
	_, err := LintOrganized(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
