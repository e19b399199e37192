package builtin

import (
	"path/filepath"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/leapstack-labs/lintstream/pkg/lint"
)

var loaders = map[string]api.Loader{
	".js":  api.LoaderJS,
	".cjs": api.LoaderJS,
	".mjs": api.LoaderJS,
	".jsx": api.LoaderJSX,
	".ts":  api.LoaderTS,
	".cts": api.LoaderTS,
	".mts": api.LoaderTS,
	".tsx": api.LoaderTSX,
}

// loaderFor picks the esbuild loader for a file path; unknown extensions
// parse as plain JavaScript.
func loaderFor(path string) api.Loader {
	if l, ok := loaders[strings.ToLower(filepath.Ext(path))]; ok {
		return l
	}
	return api.LoaderJS
}

// parse reports the first syntax error in code as a fatal message, or nil.
func parse(src *source, path string) *lint.Message {
	result := api.Transform(src.text, api.TransformOptions{
		Loader:     loaderFor(path),
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	first := result.Errors[0]
	msg := &lint.Message{
		Fatal:    true,
		Severity: lint.SeverityError,
		Message:  "Parsing error: " + first.Text,
		Line:     1,
		Column:   1,
	}
	if loc := first.Location; loc != nil && loc.Line >= 1 && loc.Line <= src.lines() {
		// esbuild columns are 0-based byte offsets within the line.
		line := src.line(loc.Line)
		col := loc.Column
		if col > len(line) {
			col = len(line)
		}
		msg.Line, msg.Column = src.position(src.offset(loc.Line, col))
	}
	return msg
}

// parseScript builds the syntax tree the AST rules walk. Only JavaScript
// loaders are parsed; TypeScript and JSX sources return a nil program.
func parseScript(src *source, path string) (*script, *ast.Program, error) {
	sc := prepareScript(src.text)
	if loaderFor(path) != api.LoaderJS {
		return sc, nil, nil
	}
	prog, err := parser.ParseFile(nil, path, sc.code, parser.IgnoreRegExpErrors, parser.WithDisableSourceMaps)
	if err != nil {
		return sc, nil, err
	}
	return sc, prog, nil
}
