package builtin

import (
	"sort"
	"strings"

	tdparse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// lexeme is one lexical token of a source text, with byte offsets.
type lexeme struct {
	tt    js.TokenType
	start int
	end   int
	text  string
}

// significant reports whether t is neither whitespace nor a comment.
func (t lexeme) significant() bool {
	switch t.tt {
	case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
		return false
	}
	return true
}

// tokenize splits text into tokens. A slash is read as a regular expression
// wherever an expression may start. Lexing stops at the first error.
func tokenize(text string) []lexeme {
	l := js.NewLexer(tdparse.NewInputString(text))
	var (
		toks    []lexeme
		prev    js.TokenType
		hasPrev bool
		offset  int
	)
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			break
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && regexpAllowed(prev, hasPrev) {
			if tt, data = l.RegExp(); tt == js.ErrorToken {
				break
			}
		}
		t := lexeme{tt: tt, start: offset, end: offset + len(data), text: string(data)}
		offset = t.end
		toks = append(toks, t)
		if t.significant() {
			prev, hasPrev = tt, true
		}
	}
	return toks
}

func regexpAllowed(prev js.TokenType, hasPrev bool) bool {
	if !hasPrev {
		return true
	}
	switch prev {
	case js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken, js.PrivateIdentifierToken,
		js.IncrToken, js.DecrToken, js.ThisToken, js.SuperToken, js.NullToken, js.TrueToken, js.FalseToken:
		return false
	}
	return !js.IsNumeric(prev) && !js.IsIdentifier(prev)
}

// tokenAt returns the index of the token covering offset, or len(toks).
func tokenAt(toks []lexeme, offset int) int {
	return sort.Search(len(toks), func(i int) bool { return toks[i].end > offset })
}

// ident is a name at a byte offset.
type ident struct {
	name  string
	start int
}

// script is a source text prepared for the ECMAScript script parser.
// Module declarations are blanked or rewritten in code without moving any
// other byte, so parser offsets are offsets into the original text.
type script struct {
	code    string
	tokens  []lexeme
	imports []string
	// exports are local names listed in `export { ... }` clauses.
	exports []ident
	// moduleEnds are end offsets of blanked declarations that take a
	// semicolon.
	moduleEnds []int
	// declarations holds the start offset of each `export default`
	// declaration rewritten as an expression statement.
	declarations map[int]bool
	globals      []string
}

func prepareScript(text string) *script {
	buf := []byte(text)
	if strings.HasPrefix(text, "#!") {
		end := strings.IndexAny(text, "\r\n")
		if end < 0 {
			end = len(text)
		}
		blank(buf, 0, end)
	}

	sc := &script{
		tokens:       tokenize(string(buf)),
		declarations: map[int]bool{},
	}
	sig := make([]int, 0, len(sc.tokens))
	for i, t := range sc.tokens {
		if t.significant() {
			sig = append(sig, i)
		} else if t.tt == js.CommentToken || t.tt == js.CommentLineTerminatorToken {
			sc.globals = append(sc.globals, globalComment(t.text)...)
		}
	}

	m := &moduleScanner{sc: sc, sig: sig, buf: buf}
	m.scan()
	sc.code = string(buf)
	return sc
}

// blank replaces buf[start:end] with spaces, keeping line breaks.
func blank(buf []byte, start, end int) {
	for i := start; i < end && i < len(buf); i++ {
		if buf[i] != '\n' && buf[i] != '\r' {
			buf[i] = ' '
		}
	}
}

// globalComment returns the names a `/* global a, b:writable */` comment
// declares. Names set to "off" are skipped.
func globalComment(text string) []string {
	if !strings.HasPrefix(text, "/*") {
		return nil
	}
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/"))
	fields := strings.Fields(body)
	if len(fields) == 0 || (fields[0] != "global" && fields[0] != "globals") {
		return nil
	}
	rest := strings.Join(fields[1:], " ")
	rest = strings.ReplaceAll(strings.ReplaceAll(rest, " :", ":"), ": ", ":")

	var names []string
	for _, item := range strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' }) {
		name, value, _ := strings.Cut(item, ":")
		if name != "" && value != "off" {
			names = append(names, name)
		}
	}
	return names
}

// moduleScanner finds top-level import and export declarations.
type moduleScanner struct {
	sc  *script
	sig []int // indexes of significant tokens
	buf []byte
}

func (m *moduleScanner) tok(i int) lexeme {
	return m.sc.tokens[m.sig[i]]
}

func (m *moduleScanner) is(i int, tt js.TokenType) bool {
	return i < len(m.sig) && m.tok(i).tt == tt
}

func (m *moduleScanner) scan() {
	depth := 0
	for i := 0; i < len(m.sig); i++ {
		switch t := m.tok(i); t.tt {
		case js.OpenBraceToken, js.OpenParenToken, js.OpenBracketToken, js.TemplateStartToken:
			depth++
		case js.CloseBraceToken, js.CloseParenToken, js.CloseBracketToken, js.TemplateEndToken:
			depth--
		case js.ImportToken:
			if depth == 0 && !m.is(i+1, js.OpenParenToken) && !m.is(i+1, js.DotToken) {
				i = m.importDecl(i)
			}
		case js.ExportToken:
			if depth == 0 {
				i = m.exportDecl(i)
			}
		}
	}
}

// specifierEnd returns the last token index of a module specifier starting
// at i, including a trailing `with { ... }` or `assert { ... }` clause.
func (m *moduleScanner) specifierEnd(i int) int {
	if i+1 < len(m.sig) && (m.tok(i+1).text == "with" || m.tok(i+1).text == "assert") && m.is(i+2, js.OpenBraceToken) {
		return m.closing(i + 2)
	}
	return i
}

// closing returns the index of the token closing the bracket at i.
func (m *moduleScanner) closing(i int) int {
	depth := 0
	for j := i; j < len(m.sig); j++ {
		switch m.tok(j).tt {
		case js.OpenBraceToken, js.OpenParenToken, js.OpenBracketToken:
			depth++
		case js.CloseBraceToken, js.CloseParenToken, js.CloseBracketToken:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(m.sig) - 1
}

// remove blanks tokens from..to and records the declaration end.
func (m *moduleScanner) remove(from, to int) int {
	end := m.tok(to).end
	blank(m.buf, m.tok(from).start, end)
	m.sc.moduleEnds = append(m.sc.moduleEnds, end)
	return to
}

// importDecl handles `import ... from "m"` and `import "m"`.
func (m *moduleScanner) importDecl(i int) int {
	var part []lexeme
	flush := func() {
		for k := len(part) - 1; k >= 0; k-- {
			if js.IsIdentifierName(part[k].tt) {
				m.sc.imports = append(m.sc.imports, part[k].text)
				break
			}
		}
		part = part[:0]
	}
	for j := i + 1; j < len(m.sig); j++ {
		t := m.tok(j)
		switch {
		case t.tt == js.StringToken && len(part) == 0 && j == i+1:
			return m.remove(i, m.specifierEnd(j))
		case t.tt == js.FromToken && m.is(j+1, js.StringToken):
			flush()
			return m.remove(i, m.specifierEnd(j+1))
		case t.tt == js.CommaToken:
			flush()
		case t.tt == js.OpenBraceToken || t.tt == js.CloseBraceToken:
		default:
			part = append(part, t)
		}
	}
	return i
}

// exportDecl handles the export forms. Declarations keep their body,
// export lists are blanked and `export default <expression>` becomes an
// expression statement.
func (m *moduleScanner) exportDecl(i int) int {
	if i+1 >= len(m.sig) {
		return i
	}
	switch next := m.tok(i + 1); next.tt {
	case js.DefaultToken:
		return m.exportDefault(i)
	case js.VarToken, js.LetToken, js.ConstToken, js.FunctionToken, js.ClassToken, js.AsyncToken:
		blank(m.buf, m.tok(i).start, m.tok(i).end)
		return i
	case js.MulToken:
		for j := i + 2; j < len(m.sig); j++ {
			if m.tok(j).tt == js.FromToken && m.is(j+1, js.StringToken) {
				return m.remove(i, m.specifierEnd(j+1))
			}
		}
	case js.OpenBraceToken:
		end := m.closing(i + 1)
		if m.is(end+1, js.FromToken) && m.is(end+2, js.StringToken) {
			return m.remove(i, m.specifierEnd(end+2))
		}
		first := true
		for j := i + 2; j < end; j++ {
			t := m.tok(j)
			if t.tt == js.CommaToken {
				first = true
				continue
			}
			if first && js.IsIdentifier(t.tt) {
				m.sc.exports = append(m.sc.exports, ident{name: t.text, start: t.start})
			}
			first = false
		}
		return m.remove(i, end)
	}
	return i
}

func (m *moduleScanner) exportDefault(i int) int {
	j := i + 2
	start, end := m.tok(i).start, m.tok(i+1).end
	if m.namedDeclaration(j) {
		blank(m.buf, start, end)
		return i + 1
	}
	if m.is(j, js.FunctionToken) || m.is(j, js.ClassToken) || (m.is(j, js.AsyncToken) && m.is(j+1, js.FunctionToken)) {
		m.sc.declarations[start] = true
	}
	blank(m.buf, start, end)
	copy(m.buf[start:], "0,")
	return i + 1
}

// namedDeclaration reports whether tokens from j form `function name`,
// `async function name`, `function* name` or `class name`.
func (m *moduleScanner) namedDeclaration(j int) bool {
	switch {
	case m.is(j, js.ClassToken):
		return j+1 < len(m.sig) && js.IsIdentifier(m.tok(j+1).tt) && m.tok(j+1).tt != js.ExtendsToken
	case m.is(j, js.AsyncToken):
		j++
		if !m.is(j, js.FunctionToken) {
			return false
		}
		fallthrough
	case m.is(j, js.FunctionToken):
		j++
		if m.is(j, js.MulToken) {
			j++
		}
		return j < len(m.sig) && js.IsIdentifier(m.tok(j).tt)
	}
	return false
}
