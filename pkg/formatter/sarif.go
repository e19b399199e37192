package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	sarifToolName = "lintstream"
	sarifToolURI  = "https://github.com/leapstack-labs/lintstream"
)

// SARIF renders results as a SARIF 2.1.0 log.
func SARIF(results []*lint.Result, ctx *Context) (string, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("failed to create sarif report: %w", err)
	}

	var (
		meta lint.RulesMeta
		cwd  string
	)
	if ctx != nil {
		cwd = ctx.Cwd
		if meta, err = ctx.RulesMeta(); err != nil {
			return "", fmt.Errorf("failed to load rule metadata: %w", err)
		}
	}

	run := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	for _, r := range results {
		uri := artifactURI(cwd, r.FilePath)
		for _, m := range r.Messages {
			ruleID := m.RuleID
			if ruleID == "" {
				ruleID = "parse-error"
			}
			rule := run.AddRule(ruleID)
			if rm, ok := meta[m.RuleID]; ok {
				if rm.Docs.Description != "" {
					rule.WithDescription(rm.Docs.Description)
				}
				if rm.Docs.URL != "" {
					rule.WithHelpURI(rm.Docs.URL)
				}
			}

			level := "warning"
			if m.Fatal || lint.IsError(m) {
				level = "error"
			}

			region := sarif.NewRegion().
				WithStartLine(max(m.Line, 1)).
				WithStartColumn(max(m.Column, 1))
			if m.EndLine > 0 {
				region.WithEndLine(m.EndLine)
			}
			if m.EndColumn > 0 {
				region.WithEndColumn(m.EndColumn)
			}

			run.CreateResultForRule(ruleID).
				WithLevel(level).
				WithMessage(sarif.NewTextMessage(m.Message)).
				AddLocation(sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(uri)).
						WithRegion(region),
				))
		}
	}
	report.AddRun(run)

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return "", fmt.Errorf("failed to write sarif report: %w", err)
	}
	return buf.String(), nil
}

func artifactURI(cwd, path string) string {
	if cwd != "" {
		if rel, err := filepath.Rel(cwd, path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !hasParentPrefix(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
