// Package output renders human-facing CLI output.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"golang.org/x/term"
)

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// NewStyles creates styles rendering to w. Without color every style is
// plain.
func NewStyles(w io.Writer, color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{Error: plain, Warning: plain, Success: plain, Muted: plain, Bold: plain}
	}
	r := lipgloss.NewRenderer(w)
	return &Styles{
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    r.NewStyle().Bold(true),
	}
}

// Renderer writes reports to stdout and status lines to stderr.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	color  bool
	styles *Styles
}

// NewRenderer creates a renderer. Color is used only when errOut is a
// terminal and noColor is false.
func NewRenderer(out, errOut io.Writer, noColor bool) *Renderer {
	return NewRendererWithColor(out, errOut, !noColor && IsTerminal(errOut))
}

// NewRendererWithColor creates a renderer with color forced on or off.
func NewRendererWithColor(out, errOut io.Writer, color bool) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		color:  color,
		styles: NewStyles(errOut, color),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the report writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the status writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Color reports whether the renderer uses color.
func (r *Renderer) Color() bool { return r.color }

// Println writes a line to the report writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the report writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Report writes formatter output followed by a newline.
func (r *Renderer) Report(text string) error {
	_, err := fmt.Fprintln(r.out, text)
	return err
}

// Summary writes a one-line summary of agg to the status writer.
func (r *Renderer) Summary(agg *lint.AggregatedResults) {
	if agg == nil {
		return
	}
	problems := agg.ErrorCount + agg.WarningCount
	files := agg.Len()
	var line string
	switch {
	case agg.ErrorCount > 0:
		line = r.styles.Error.Render(fmt.Sprintf("✖ %s (%s, %s) in %s",
			plural(problems, "problem"), plural(agg.ErrorCount, "error"),
			plural(agg.WarningCount, "warning"), plural(files, "file")))
	case agg.WarningCount > 0:
		line = r.styles.Warning.Render(fmt.Sprintf("⚠ %s in %s",
			plural(agg.WarningCount, "warning"), plural(files, "file")))
	default:
		line = r.styles.Success.Render(fmt.Sprintf("✔ no problems in %s", plural(files, "file")))
	}
	if fixable := agg.FixableErrorCount + agg.FixableWarningCount; fixable > 0 {
		line += r.styles.Muted.Render(fmt.Sprintf(" (%d fixable with --fix)", fixable))
	}
	_, _ = fmt.Fprintln(r.errOut, line)
}

// Status writes a muted status line to the status writer.
func (r *Renderer) Status(format string, a ...any) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Muted.Render(fmt.Sprintf(format, a...)))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
