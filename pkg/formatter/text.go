package formatter

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/lint"
)

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func totals(results []*lint.Result) lint.Counts {
	var c lint.Counts
	for _, r := range results {
		c.Add(r.Counts)
	}
	return c
}

func severityLabel(m lint.Message) string {
	if m.Fatal || lint.IsError(m) {
		return "Error"
	}
	return "Warning"
}

// Compact renders one line per message.
func Compact(results []*lint.Result, _ *Context) (string, error) {
	var b strings.Builder
	total := 0
	for _, r := range results {
		total += len(r.Messages)
		for _, m := range r.Messages {
			fmt.Fprintf(&b, "%s: line %d, col %d, %s - %s", r.FilePath, m.Line, m.Column, severityLabel(m), m.Message)
			if m.RuleID != "" {
				fmt.Fprintf(&b, " (%s)", m.RuleID)
			}
			b.WriteByte('\n')
		}
	}
	if total == 0 {
		return "", nil
	}
	fmt.Fprintf(&b, "\n%d %s", total, pluralize("problem", total))
	return b.String(), nil
}

// Unix renders messages in the path:line:col format understood by editors.
func Unix(results []*lint.Result, _ *Context) (string, error) {
	var b strings.Builder
	total := 0
	for _, r := range results {
		total += len(r.Messages)
		for _, m := range r.Messages {
			label := severityLabel(m)
			if m.RuleID != "" {
				label += "/" + m.RuleID
			}
			fmt.Fprintf(&b, "%s:%d:%d: %s [%s]\n", r.FilePath, m.Line, m.Column, m.Message, label)
		}
	}
	if total == 0 {
		return "", nil
	}
	fmt.Fprintf(&b, "\n%d %s", total, pluralize("problem", total))
	return b.String(), nil
}
