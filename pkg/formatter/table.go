package formatter

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// Table renders one table per file with problems, followed by a totals table.
func Table(results []*lint.Result, _ *Context) (string, error) {
	var b strings.Builder
	c := totals(results)
	if c.Problems() == 0 {
		return "", nil
	}

	for _, r := range results {
		if len(r.Messages) == 0 {
			continue
		}
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetTitle(r.FilePath)
		t.AppendHeader(table.Row{"Line", "Column", "Type", "Message", "Rule ID"})
		for _, m := range r.Messages {
			kind := "warning"
			if m.Fatal || lint.IsError(m) {
				kind = "error"
			}
			t.AppendRow(table.Row{m.Line, m.Column, kind, m.Message, m.RuleID})
		}
		b.WriteString(t.Render())
		b.WriteString("\n\n")
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Errors", c.ErrorCount})
	t.AppendRow(table.Row{"Warnings", c.WarningCount})
	b.WriteString(t.Render())
	return b.String(), nil
}
