package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"

	"github.com/leapstack-labs/lintstream/pkg/engine"
	"github.com/leapstack-labs/lintstream/pkg/formatter"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Engine is an in-process engine instance.
type Engine struct {
	variant engine.Variant
	cwd     string
	config  *config
	ignore  *ignorer
	fix     lint.Predicate
	logger  *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine builds an engine from organized engine options.
func NewEngine(variant engine.Variant, raw map[string]any, logger *slog.Logger) (*Engine, error) {
	opts, err := engine.DecodeOptions(raw)
	if err != nil {
		return nil, err
	}
	cwd, err := opts.ResolveCwd()
	if err != nil {
		return nil, err
	}
	cfg, err := resolveConfig(variant, opts, cwd)
	if err != nil {
		return nil, err
	}
	ig, err := newIgnorer(cwd, variant, opts, cfg.ignorePatterns)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		variant: variant,
		cwd:     cwd,
		config:  cfg,
		ignore:  ig,
		logger:  logger,
	}
	if keep := engine.FixPredicate(opts.Fix); keep != nil {
		e.fix = fixFilter(keep, opts.FixTypes)
	}
	logger.Debug("builtin engine created",
		slog.String("variant", string(variant)),
		slog.String("cwd", cwd),
		slog.Int("rules", len(cfg.severities)))
	return e, nil
}

// fixFilter narrows keep to rules whose type is listed in types.
func fixFilter(keep lint.Predicate, types []string) lint.Predicate {
	if len(types) == 0 {
		return keep
	}
	return func(m lint.Message) bool {
		r, ok := rules[m.RuleID]
		if !ok || !slices.Contains(types, r.meta.Type) {
			return false
		}
		return keep(m)
	}
}

// IsPathIgnored implements engine.Engine.
func (e *Engine) IsPathIgnored(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.cwd, path)
	}
	return e.ignore.ignored(filepath.Clean(path)), nil
}

// LintText implements engine.Engine.
func (e *Engine) LintText(ctx context.Context, code string, opts engine.LintTextOptions) ([]*lint.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := code
	msgs := e.verify(text, opts.FilePath)
	if e.fix != nil {
		for pass := 0; pass < maxFixPasses; pass++ {
			fixed, applied := applyFixes(text, msgs, e.fix)
			if !applied {
				break
			}
			next := e.verify(fixed, opts.FilePath)
			if hasFatal(next) && !hasFatal(msgs) {
				// Keep the last text that parsed.
				e.logger.Warn("discarding fixes that break parsing",
					slog.String("path", opts.FilePath),
					slog.Int("pass", pass+1))
				break
			}
			text, msgs = fixed, next
		}
	}

	result := lint.NewResult(opts.FilePath, msgs)
	switch {
	case text != code:
		result.Output = &text
	case len(msgs) > 0:
		result.Source = &code
	}
	return []*lint.Result{result}, nil
}

// verify parses and checks text with every enabled rule.
func (e *Engine) verify(text, path string) []lint.Message {
	src := newSource(text)
	if fatal := parse(src, path); fatal != nil {
		return []lint.Message{*fatal}
	}

	rc := &ruleContext{src: src, globals: e.config.globals}
	sc, prog, err := parseScript(src, path)
	rc.tokens = sc.tokens
	rc.fileGlobals = make(map[string]bool, len(sc.globals))
	for _, name := range sc.globals {
		rc.fileGlobals[name] = true
	}
	switch {
	case err != nil:
		e.logger.Debug("skipping syntax tree rules",
			slog.String("path", path),
			slog.String("error", err.Error()))
	case prog != nil:
		rc.tree = analyze(prog, sc)
	}
	var msgs []lint.Message
	ids := make([]string, 0, len(e.config.severities))
	for id := range e.config.severities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		sev := e.config.severities[id]
		if sev == lint.SeverityOff {
			continue
		}
		r, ok := rules[id]
		if !ok {
			msgs = append(msgs, lint.Message{
				RuleID:   id,
				Severity: lint.SeverityError,
				Message:  fmt.Sprintf("Definition for rule '%s' was not found.", id),
				Line:     1,
				Column:   1,
			})
			continue
		}
		for _, p := range r.check(rc) {
			m := lint.Message{
				RuleID:   id,
				Severity: sev,
				Message:  p.message,
				Fix:      p.fix,
			}
			m.Line, m.Column = src.position(p.offset)
			if p.end > p.offset {
				m.EndLine, m.EndColumn = src.position(p.end)
			}
			msgs = append(msgs, m)
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Line != msgs[j].Line {
			return msgs[i].Line < msgs[j].Line
		}
		return msgs[i].Column < msgs[j].Column
	})
	return msgs
}

func hasFatal(msgs []lint.Message) bool {
	return slices.ContainsFunc(msgs, func(m lint.Message) bool { return m.Fatal })
}

// LoadFormatter implements engine.Engine.
func (e *Engine) LoadFormatter(_ context.Context, name string) (formatter.Formatter, error) {
	return formatter.Lookup(name)
}

// RulesMetaForResults implements engine.Engine.
func (e *Engine) RulesMetaForResults(_ context.Context, results []*lint.Result) (lint.RulesMeta, error) {
	meta := lint.RulesMeta{}
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, m := range r.Messages {
			if m.RuleID == "" {
				continue
			}
			if rule, ok := rules[m.RuleID]; ok {
				meta[m.RuleID] = rule.meta
			}
		}
	}
	return meta, nil
}
