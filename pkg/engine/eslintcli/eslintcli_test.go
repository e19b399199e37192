package eslintcli

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/leapstack-labs/lintstream/internal/testutil"
	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers --version and replays a canned lint report.
type fakeRunner struct {
	version string
	report  string
	err     error
	calls   []command
}

func (f *fakeRunner) run(_ context.Context, c command) ([]byte, error) {
	f.calls = append(f.calls, c)
	if len(c.Args) == 1 && c.Args[0] == "--version" {
		return []byte(f.version + "\n"), nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.report), nil
}

func openFake(t *testing.T, f *fakeRunner) *Library {
	t.Helper()
	lib, err := Open(context.Background(),
		WithBinary("/usr/bin/eslint"),
		WithWorkingDir(t.TempDir()),
		WithLogger(testutil.NewTestLogger(t)),
		withRunner(f.run))
	require.NoError(t, err)
	return lib
}

const undefReport = `{
  "results": [{
    "filePath": "/work/invalid.js",
    "messages": [{"ruleId": "no-undef", "severity": 2, "message": "'x' is not defined.", "line": 1, "column": 1, "nodeType": "Identifier"}],
    "suppressedMessages": [],
    "errorCount": 1, "fatalErrorCount": 0, "warningCount": 0, "fixableErrorCount": 0, "fixableWarningCount": 0,
    "source": "x = 1;"
  }],
  "metadata": {"rulesMeta": {"no-undef": {"type": "problem", "docs": {"description": "Disallow undeclared variables", "url": "https://eslint.org/docs/latest/rules/no-undef"}}}}
}`

const ignoredReport = `{
  "results": [{
    "filePath": "/work/node_modules/a.js",
    "messages": [{"ruleId": null, "fatal": false, "severity": 1, "message": "File ignored by default because it is located under the node_modules directory."}],
    "errorCount": 0, "fatalErrorCount": 0, "warningCount": 1, "fixableErrorCount": 0, "fixableWarningCount": 0
  }],
  "metadata": {"rulesMeta": {}}
}`

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "v8.57.0\n", want: "v8.57.0"},
		{in: "9.1.0", want: "v9.1.0"},
		{in: "v10.0.0-alpha.1", want: "v10.0.0-alpha.1"},
		{in: "not a version", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibrary_Supports(t *testing.T) {
	tests := []struct {
		version  string
		eslintrc bool
		flat     bool
	}{
		{version: "v7.32.0", eslintrc: true},
		{version: "v8.20.0", eslintrc: true},
		{version: "v8.21.0", eslintrc: true, flat: true},
		{version: "v9.0.0", eslintrc: true, flat: true},
		{version: "v10.0.0", flat: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			lib := openFake(t, &fakeRunner{version: tt.version})
			assert.Equal(t, tt.version, lib.Version())
			assert.Equal(t, tt.eslintrc, lib.Supports(engine.VariantESLintrc))
			assert.Equal(t, tt.flat, lib.Supports(engine.VariantFlat))

			_, ok := lib.Constructor(engine.VariantFlat)
			assert.Equal(t, tt.flat, ok)
		})
	}
}

func TestEngine_LintText(t *testing.T) {
	f := &fakeRunner{version: "v8.57.0", report: undefReport}
	lib := openFake(t, f)
	ctor, ok := lib.Constructor(engine.VariantESLintrc)
	require.True(t, ok)

	eng, err := ctor(context.Background(), map[string]any{
		"overrideConfig": map[string]any{"rules": map[string]any{"no-undef": 2}},
	})
	require.NoError(t, err)

	results, err := eng.LintText(context.Background(), "x = 1;", engine.LintTextOptions{FilePath: "/work/invalid.js"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "/work/invalid.js", r.FilePath)
	require.Len(t, r.Messages, 1)
	assert.Equal(t, "'x' is not defined.", r.Messages[0].Message)
	assert.Equal(t, lint.SeverityError, r.Messages[0].Severity)
	assert.Equal(t, 1, r.ErrorCount)

	last := f.calls[len(f.calls)-1]
	assert.Equal(t, "x = 1;", last.Stdin)
	assert.Equal(t, []string{"ESLINT_USE_FLAT_CONFIG=false"}, last.Env)
	assert.Equal(t, []string{
		"--rule", `{"no-undef":2}`,
		"--stdin", "--stdin-filename", "/work/invalid.js", "--format", "json-with-metadata",
	}, last.Args)

	meta, err := eng.RulesMetaForResults(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, "problem", meta["no-undef"].Type)
}

func TestEngine_IsPathIgnored(t *testing.T) {
	f := &fakeRunner{version: "v9.0.0", report: ignoredReport}
	lib := openFake(t, f)
	ctor, ok := lib.Constructor(engine.VariantFlat)
	require.True(t, ok)
	eng, err := ctor(context.Background(), nil)
	require.NoError(t, err)

	ignored, err := eng.IsPathIgnored(context.Background(), "/work/node_modules/a.js")
	require.NoError(t, err)
	assert.True(t, ignored)
	assert.Equal(t, []string{"ESLINT_USE_FLAT_CONFIG=true"}, f.calls[len(f.calls)-1].Env)

	f.report = undefReport
	ignored, err = eng.IsPathIgnored(context.Background(), "/work/invalid.js")
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestEngine_RunFailure(t *testing.T) {
	runErr := &RunError{Args: []string{"--stdin"}, ExitCode: 2, Stderr: "Oops! Something went wrong!"}
	lib := openFake(t, &fakeRunner{version: "v8.57.0", err: runErr})
	ctor, _ := lib.Constructor(engine.VariantESLintrc)
	eng, err := ctor(context.Background(), nil)
	require.NoError(t, err)

	_, err = eng.LintText(context.Background(), "", engine.LintTextOptions{FilePath: "/a.js"})
	var target *RunError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 2, target.ExitCode)
	assert.Contains(t, err.Error(), "exit code 2")
	assert.Contains(t, err.Error(), "Oops!")
}

func TestEngine_BadOutput(t *testing.T) {
	lib := openFake(t, &fakeRunner{version: "v8.57.0", report: "not json"})
	ctor, _ := lib.Constructor(engine.VariantESLintrc)
	eng, err := ctor(context.Background(), nil)
	require.NoError(t, err)

	_, err = eng.LintText(context.Background(), "", engine.LintTextOptions{FilePath: "/a.js"})
	assert.ErrorContains(t, err, "failed to parse eslint output")
}

func TestBuildArgs(t *testing.T) {
	no := false
	tests := []struct {
		name    string
		variant engine.Variant
		opts    engine.Options
		want    []string
		skipped []string
	}{
		{
			name:    "empty",
			variant: engine.VariantESLintrc,
		},
		{
			name:    "eslintrc config",
			variant: engine.VariantESLintrc,
			opts: engine.Options{
				OverrideConfigFile: "custom.json",
				UseEslintrc:        &no,
				OverrideConfig: map[string]any{
					"env":           map[string]any{"node": true, "browser": false},
					"globals":       map[string]any{"jQuery": false, "app": true},
					"parser":        "espree",
					"parserOptions": map[string]any{"ecmaVersion": 2022},
					"plugins":       []any{"react"},
					"settings":      map[string]any{},
				},
			},
			want: []string{
				"--config", "custom.json", "--no-eslintrc",
				"--env", "node",
				"--global", "app:true", "--global", "jQuery",
				"--parser", "espree",
				"--parser-options", "ecmaVersion:2022",
				"--plugin", "react",
			},
			skipped: []string{"overrideConfig.settings"},
		},
		{
			name:    "flat config",
			variant: engine.VariantFlat,
			opts: engine.Options{
				OverrideConfig: []any{
					map[string]any{
						"rules":           map[string]any{"semi": []any{"error", "always"}},
						"languageOptions": map[string]any{"globals": map[string]any{"x": "readonly"}, "ecmaVersion": 2022},
					},
				},
				IgnorePatterns: []string{"dist/"},
			},
			want: []string{
				"--global", "x",
				"--rule", `{"semi":["error","always"]}`,
				"--ignore-pattern", "dist/",
			},
			skipped: []string{"overrideConfig.languageOptions.ecmaVersion"},
		},
		{
			name:    "switches",
			variant: engine.VariantESLintrc,
			opts: engine.Options{
				Ignore:                        &no,
				IgnorePath:                    ".gitignore",
				RulePaths:                     []string{"rules"},
				ResolvePluginsRelativeTo:      "/opt",
				AllowInlineConfig:             &no,
				ReportUnusedDisableDirectives: "error",
				Fix:                           true,
				FixTypes:                      []string{"layout", "problem"},
			},
			want: []string{
				"--no-ignore", "--ignore-path", ".gitignore", "--rulesdir", "rules",
				"--resolve-plugins-relative-to", "/opt", "--no-inline-config",
				"--report-unused-disable-directives", "--fix-dry-run", "--fix-type", "layout,problem",
			},
		},
		{
			name:    "fix predicate",
			variant: engine.VariantESLintrc,
			opts:    engine.Options{Fix: func(lint.Message) bool { return true }},
			want:    []string{"--fix-dry-run"},
			skipped: []string{"fix predicate"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, skipped, err := buildArgs(tt.variant, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, args)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}

func TestRealESLint(t *testing.T) {
	if _, err := exec.LookPath("eslint"); err != nil {
		t.Skip("eslint not on PATH")
	}
	lib, err := Open(context.Background(), WithWorkingDir(t.TempDir()), WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	assert.NotEmpty(t, lib.Version())
}
