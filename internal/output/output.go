// Package output prints styled status messages for the command line.
//
// Messages are colored with lipgloss when the destination is a terminal and
// written as plain text otherwise, so redirected output stays greppable.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Printer writes status messages to one destination
type Printer struct {
	w       io.Writer
	styled  bool
	verbose bool
}

// New creates a printer for w. Styling is enabled when w is a terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// Stderr returns a printer for standard error
func Stderr() *Printer {
	return New(os.Stderr)
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetVerbose enables Verbose messages
func (p *Printer) SetVerbose(v bool) {
	p.verbose = v
}

// SetStyled forces styling on or off
func (p *Printer) SetStyled(v bool) {
	p.styled = v
}

// Success reports a completed operation
func (p *Printer) Success(msg string) {
	p.print(successStyle, "✔ ", msg)
}

// Error reports a failure
func (p *Printer) Error(msg string) {
	p.print(errorStyle, "✖ ", msg)
}

// Warn reports a problem that did not stop the operation
func (p *Printer) Warn(msg string) {
	p.print(warnStyle, "! ", msg)
}

// Info reports status
func (p *Printer) Info(msg string) {
	p.print(infoStyle, "i ", msg)
}

// Step prints an indented sub-item
func (p *Printer) Step(msg string) {
	p.print(stepStyle, "   ", msg)
}

// Verbose prints msg only in verbose mode
func (p *Printer) Verbose(msg string) {
	if p.verbose {
		p.print(stepStyle, "· ", msg)
	}
}

func (p *Printer) print(style lipgloss.Style, prefix, msg string) {
	if p == nil || p.w == nil {
		return
	}
	line := prefix + msg
	if p.styled {
		line = style.Render(line)
	}
	fmt.Fprintln(p.w, line)
}
