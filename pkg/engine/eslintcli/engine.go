package eslintcli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Engine lints text by running eslint once per call.
type Engine struct {
	lib     *Library
	variant engine.Variant
	cwd     string
	args    []string
	meta    lint.RulesMeta
}

var _ engine.Engine = (*Engine)(nil)

// report is the json-with-metadata output.
type report struct {
	Results  []*lint.Result `json:"results"`
	Metadata struct {
		RulesMeta lint.RulesMeta `json:"rulesMeta"`
	} `json:"metadata"`
}

func newEngine(lib *Library, variant engine.Variant, raw map[string]any) (*Engine, error) {
	opts, err := engine.DecodeOptions(raw)
	if err != nil {
		return nil, err
	}
	cwd := lib.cwd
	if opts.Cwd != "" {
		if cwd, err = opts.ResolveCwd(); err != nil {
			return nil, err
		}
	}
	args, skipped, err := buildArgs(variant, opts)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		lib.logger.Warn("eslint command line cannot express these options; they are ignored",
			slog.String("options", strings.Join(skipped, ", ")))
	}
	return &Engine{
		lib:     lib,
		variant: variant,
		cwd:     cwd,
		args:    args,
		meta:    lint.RulesMeta{},
	}, nil
}

func (e *Engine) env() []string {
	return []string{"ESLINT_USE_FLAT_CONFIG=" + strconv.FormatBool(e.variant == engine.VariantFlat)}
}

func (e *Engine) lint(ctx context.Context, code, path string) (*lint.Result, error) {
	args := make([]string, 0, len(e.args)+6)
	args = append(args, e.args...)
	args = append(args, "--stdin", "--stdin-filename", path, "--format", "json-with-metadata")

	out, err := e.lib.run(ctx, command{
		Binary: e.lib.binary,
		Args:   args,
		Dir:    e.cwd,
		Env:    e.env(),
		Stdin:  code,
	})
	if err != nil {
		return nil, err
	}

	var rep report
	if err := json.Unmarshal(out, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse eslint output: %w", err)
	}
	if len(rep.Results) != 1 {
		return nil, fmt.Errorf("eslint returned %d results for one text, expected 1", len(rep.Results))
	}
	for id, m := range rep.Metadata.RulesMeta {
		e.meta[id] = m
	}

	r := rep.Results[0]
	if r.Messages == nil {
		r.Messages = []lint.Message{}
	}
	return r, nil
}

// IsPathIgnored implements engine.Engine. eslint reports an ignored stdin
// path as a single "File ignored" warning.
func (e *Engine) IsPathIgnored(ctx context.Context, path string) (bool, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.cwd, path)
	}
	r, err := e.lint(ctx, "", path)
	if err != nil {
		return false, err
	}
	return len(r.Messages) == 1 &&
		r.Messages[0].Severity == lint.SeverityWarning &&
		strings.HasPrefix(r.Messages[0].Message, "File ignored"), nil
}

// LintText implements engine.Engine.
func (e *Engine) LintText(ctx context.Context, code string, opts engine.LintTextOptions) ([]*lint.Result, error) {
	r, err := e.lint(ctx, code, opts.FilePath)
	if err != nil {
		return nil, err
	}
	return []*lint.Result{r}, nil
}

// LoadFormatter implements engine.Engine.
func (e *Engine) LoadFormatter(_ context.Context, name string) (formatter.Formatter, error) {
	return formatter.Lookup(name)
}

// RulesMetaForResults implements engine.Engine from metadata collected
// while linting.
func (e *Engine) RulesMetaForResults(_ context.Context, results []*lint.Result) (lint.RulesMeta, error) {
	meta := lint.RulesMeta{}
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, m := range r.Messages {
			if rm, ok := e.meta[m.RuleID]; ok {
				meta[m.RuleID] = rm
			}
		}
	}
	return meta, nil
}
