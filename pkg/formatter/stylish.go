package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

var (
	stylishPath    = color.New(color.Underline)
	stylishError   = color.New(color.FgRed)
	stylishWarning = color.New(color.FgYellow)
	stylishDim     = color.New(color.Faint)
	stylishErrSum  = color.New(color.FgRed, color.Bold)
	stylishWarnSum = color.New(color.FgYellow, color.Bold)
)

type stylishRow struct {
	pos, severity, message, rule string
	isError                      bool
}

// Stylish renders results grouped by file with a summary line.
func Stylish(results []*lint.Result, _ *Context) (string, error) {
	var b strings.Builder
	c := totals(results)

	for _, r := range results {
		if len(r.Messages) == 0 {
			continue
		}

		rows := make([]stylishRow, 0, len(r.Messages))
		var wPos, wSev, wMsg int
		for _, m := range r.Messages {
			row := stylishRow{
				pos:      fmt.Sprintf("%d:%d", m.Line, m.Column),
				severity: "warning",
				message:  strings.TrimSuffix(strings.ReplaceAll(m.Message, "\n", " "), "."),
				rule:     m.RuleID,
			}
			if m.Fatal || lint.IsError(m) {
				row.severity = "error"
				row.isError = true
			}
			wPos = max(wPos, utf8.RuneCountInString(row.pos))
			wSev = max(wSev, utf8.RuneCountInString(row.severity))
			wMsg = max(wMsg, utf8.RuneCountInString(row.message))
			rows = append(rows, row)
		}

		fmt.Fprintf(&b, "\n%s\n", stylishPath.Sprint(r.FilePath))
		for _, row := range rows {
			sev := stylishWarning.Sprint(row.severity)
			if row.isError {
				sev = stylishError.Sprint(row.severity)
			}
			line := fmt.Sprintf("  %s  %s%s  %s",
				pad(row.pos, wPos),
				sev, strings.Repeat(" ", wSev-utf8.RuneCountInString(row.severity)),
				pad(row.message, wMsg))
			if row.rule != "" {
				line += "  " + stylishDim.Sprint(row.rule)
			}
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteByte('\n')
		}
	}

	total := c.Problems()
	if total == 0 {
		return "", nil
	}

	summary := stylishWarnSum
	if c.ErrorCount > 0 {
		summary = stylishErrSum
	}
	b.WriteByte('\n')
	b.WriteString(summary.Sprintf("✖ %d %s (%d %s, %d %s)",
		total, pluralize("problem", total),
		c.ErrorCount, pluralize("error", c.ErrorCount),
		c.WarningCount, pluralize("warning", c.WarningCount)))
	b.WriteByte('\n')

	if c.FixableErrorCount > 0 || c.FixableWarningCount > 0 {
		b.WriteString(summary.Sprintf("  %d %s and %d %s potentially fixable with the `--fix` option.",
			c.FixableErrorCount, pluralize("error", c.FixableErrorCount),
			c.FixableWarningCount, pluralize("warning", c.FixableWarningCount)))
		b.WriteByte('\n')
	}

	return b.String(), nil
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
