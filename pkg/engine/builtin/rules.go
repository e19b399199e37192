package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/tdewolff/parse/v2/js"
)

const docsBase = "https://eslint.org/docs/latest/rules/"

// problem is a rule finding before severity is attached.
type problem struct {
	offset  int
	end     int
	message string
	fix     *lint.Fix
}

// ruleContext is what a rule sees while checking a file. tree is nil when
// the source could not be parsed as an ECMAScript script.
type ruleContext struct {
	src         *source
	tokens      []lexeme
	tree        *analysis
	globals     map[string]bool
	fileGlobals map[string]bool
}

func (ctx *ruleContext) isGlobal(name string) bool {
	return ctx.globals[name] || ctx.fileGlobals[name]
}

type rule struct {
	id          string
	meta        lint.RuleMeta
	recommended bool
	check       func(ctx *ruleContext) []problem
}

var rules = map[string]*rule{}

func defineRule(r *rule) {
	r.meta.Docs.URL = docsBase + r.id
	r.meta.Docs.Recommended = r.recommended
	rules[r.id] = r
}

func ruleIDs() []string {
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	defineRule(&rule{
		id:          "no-undef",
		recommended: true,
		meta: lint.RuleMeta{
			Type: "problem",
			Docs: lint.RuleDocs{Description: "Disallow the use of undeclared variables unless mentioned in /*global */ comments"},
		},
		check: checkNoUndef,
	})
	defineRule(&rule{
		id:          "no-debugger",
		recommended: true,
		meta: lint.RuleMeta{
			Type: "problem",
			Docs: lint.RuleDocs{Description: "Disallow the use of debugger"},
		},
		check: checkNoDebugger,
	})
	defineRule(&rule{
		id: "no-console",
		meta: lint.RuleMeta{
			Type: "suggestion",
			Docs: lint.RuleDocs{Description: "Disallow the use of console"},
		},
		check: checkNoConsole,
	})
	defineRule(&rule{
		id: "semi",
		meta: lint.RuleMeta{
			Type:    "layout",
			Docs:    lint.RuleDocs{Description: "Require or disallow semicolons instead of ASI"},
			Fixable: "code",
		},
		check: checkSemi,
	})
	defineRule(&rule{
		id: "no-trailing-spaces",
		meta: lint.RuleMeta{
			Type:    "layout",
			Docs:    lint.RuleDocs{Description: "Disallow trailing whitespace at the end of lines"},
			Fixable: "whitespace",
		},
		check: checkTrailingSpaces,
	})
	defineRule(&rule{
		id: "eol-last",
		meta: lint.RuleMeta{
			Type:    "layout",
			Docs:    lint.RuleDocs{Description: "Require or disallow newline at the end of files"},
			Fixable: "whitespace",
		},
		check: checkEOLLast,
	})
}

// =============================================================================
// no-undef
// =============================================================================

func checkNoUndef(ctx *ruleContext) []problem {
	if ctx.tree == nil {
		return nil
	}
	var out []problem
	for _, ref := range ctx.tree.references {
		if ref.typeof || ref.scope.resolves(ref.name) || ctx.isGlobal(ref.name) {
			continue
		}
		out = append(out, problem{
			offset:  ref.span.start,
			end:     ref.span.end,
			message: fmt.Sprintf("'%s' is not defined.", ref.name),
		})
	}
	return out
}

// =============================================================================
// no-debugger, no-console
// =============================================================================

func checkNoDebugger(ctx *ruleContext) []problem {
	if ctx.tree == nil {
		return nil
	}
	var out []problem
	for _, sp := range ctx.tree.debuggers {
		out = append(out, problem{offset: sp.start, end: ctx.statementEnd(sp.end), message: "Unexpected 'debugger' statement."})
	}
	return out
}

func checkNoConsole(ctx *ruleContext) []problem {
	if ctx.tree == nil {
		return nil
	}
	var out []problem
	for _, use := range ctx.tree.consoles {
		if use.scope.resolves("console") {
			continue
		}
		out = append(out, problem{offset: use.span.start, end: use.span.end, message: "Unexpected console statement."})
	}
	return out
}

// =============================================================================
// semi
// =============================================================================

func checkSemi(ctx *ruleContext) []problem {
	if ctx.tree == nil {
		return nil
	}
	seen := map[int]bool{}
	var out []problem
	for _, end := range ctx.tree.statementEnds {
		at, ok := ctx.missingSemicolon(end)
		if !ok || seen[at] {
			continue
		}
		seen[at] = true
		out = append(out, problem{
			offset:  at,
			end:     at,
			message: "Missing semicolon.",
			fix:     &lint.Fix{Range: [2]int{at, at}, Text: ";"},
		})
	}
	return out
}

// missingSemicolon looks at the tokens after the statement ending at end.
// Closing parentheses around the statement's expression belong to it. It
// returns the insertion point when no semicolon follows.
func (ctx *ruleContext) missingSemicolon(end int) (int, bool) {
	toks := ctx.tokens
	i := tokenAt(toks, end-1)
	if i >= len(toks) {
		return 0, false
	}
	at := toks[i].end
	for i++; i < len(toks); i++ {
		t := toks[i]
		switch {
		case !t.significant():
		case t.tt == js.CloseParenToken:
			at = t.end
		case t.tt == js.SemicolonToken:
			return 0, false
		default:
			return at, true
		}
	}
	return at, true
}

// statementEnd extends end over a directly following semicolon.
func (ctx *ruleContext) statementEnd(end int) int {
	toks := ctx.tokens
	for i := tokenAt(toks, end); i < len(toks); i++ {
		if t := toks[i]; t.significant() {
			if t.tt == js.SemicolonToken {
				return t.end
			}
			break
		}
	}
	return end
}

// =============================================================================
// no-trailing-spaces, eol-last
// =============================================================================

func checkTrailingSpaces(ctx *ruleContext) []problem {
	src := ctx.src
	var out []problem
	for n := 1; n <= src.lines(); n++ {
		text := src.line(n)
		trimmed := strings.TrimRight(text, " \t")
		if len(trimmed) == len(text) {
			continue
		}
		start := src.offset(n, len(trimmed))
		end := src.offset(n, len(text))
		out = append(out, problem{
			offset:  start,
			end:     end,
			message: "Trailing spaces not allowed.",
			fix:     &lint.Fix{Range: [2]int{start, end}, Text: ""},
		})
	}
	return out
}

func checkEOLLast(ctx *ruleContext) []problem {
	text := ctx.src.text
	if text == "" || strings.HasSuffix(text, "\n") {
		return nil
	}
	end := len(text)
	return []problem{{
		offset:  end,
		end:     end,
		message: "Newline required at end of file but not found.",
		fix:     &lint.Fix{Range: [2]int{end, end}, Text: "\n"},
	}}
}
