package builtin

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// maxFixPasses bounds how often a text is re-linted after fixing.
const maxFixPasses = 10

// applyFixes applies non-overlapping fixes in range order. Fixes that
// overlap an earlier one are left for the next pass.
func applyFixes(text string, msgs []lint.Message, keep lint.Predicate) (string, bool) {
	var fixes []*lint.Fix
	for _, m := range msgs {
		if m.Fix == nil || (keep != nil && !keep(m)) {
			continue
		}
		fixes = append(fixes, m.Fix)
	}
	if len(fixes) == 0 {
		return text, false
	}
	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Range[0] != fixes[j].Range[0] {
			return fixes[i].Range[0] < fixes[j].Range[0]
		}
		return fixes[i].Range[1] < fixes[j].Range[1]
	})

	var b strings.Builder
	last, lastEnd := 0, -1
	for _, f := range fixes {
		start, end := f.Range[0], f.Range[1]
		if start <= lastEnd || start > end || end > len(text) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(f.Text)
		last, lastEnd = end, end
	}
	if lastEnd < 0 {
		return text, false
	}
	b.WriteString(text[last:])
	return b.String(), true
}
