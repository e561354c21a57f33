// Package console holds the launcher's user-facing terminal output: the
// completion report, warnings and the final key-press pause.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
)

// styles are bound to the writer they render for, so colour is only used
// when that writer is a terminal.
type styles struct {
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	hint    lipgloss.Style
}

func stylesFor(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Bold(true).Foreground(colorGreen),
		failure: r.NewStyle().Bold(true).Foreground(colorRed),
		warning: r.NewStyle().Bold(true).Foreground(colorYellow),
		hint:    r.NewStyle().Foreground(colorDim),
	}
}

func (st styles) status(code int) string {
	s := fmt.Sprintf("RC=%d", code)
	if code == 0 {
		return st.success.Render(s)
	}
	return st.failure.Render(s)
}

// Report prints the completion line for a finished run: "RC=<code>", green
// for zero and red otherwise, then the log path.
func Report(w io.Writer, code int, logPath string) {
	st := stylesFor(w)
	fmt.Fprintf(w, "Done. %s  %s\n", st.status(code), st.hint.Render("log: "+logPath))
}

// Warn prints a non-fatal problem.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, stylesFor(w).warning.Render("warning: ")+fmt.Sprintf(format, args...))
}

// Error prints a terminal problem.
func Error(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, stylesFor(w).failure.Render("error: ")+fmt.Sprintf(format, args...))
}

// Hint prints dimmed guidance text.
func Hint(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, stylesFor(w).hint.Render(fmt.Sprintf(format, args...)))
}
