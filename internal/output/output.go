// Package output provides consistent CLI status lines, optionally colored
// when writing to a terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool

	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

// New creates a plain output Writer.
func New(out io.Writer) *Writer {
	return &Writer{
		out:     out,
		label:   lipgloss.NewStyle(),
		success: lipgloss.NewStyle(),
		warning: lipgloss.NewStyle(),
		failure: lipgloss.NewStyle(),
	}
}

// NewAuto creates a Writer that colors its output when out is a terminal
// and NO_COLOR is unset.
func NewAuto(out io.Writer) *Writer {
	w := New(out)
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		if _, noColor := os.LookupEnv("NO_COLOR"); !noColor {
			w.useColor = true
			w.label = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
			w.success = lipgloss.NewStyle().Foreground(lipgloss.Color("154"))
			w.warning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
			w.failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		}
	}
	return w
}

// Color reports whether the writer emits ANSI styling.
func (w *Writer) Color() bool { return w.useColor }

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.failure.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// KeyValue prints an indented "label: value" line with labels padded to
// width.
func (w *Writer) KeyValue(label string, value any, width int) {
	pad := width - len(label)
	if pad < 0 {
		pad = 0
	}
	_, _ = fmt.Fprintf(w.out, "   %s%s %v\n", w.label.Render(label+":"), strings.Repeat(" ", pad), value)
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
