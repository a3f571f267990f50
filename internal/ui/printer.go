// Package ui renders command output: status lines, task tables and panels.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes themed output. Each stream gets its own renderer so color
// is decided by what that stream is attached to.
type Printer struct {
	out, errOut     io.Writer
	theme, errTheme Theme
}

func NewPrinter(out, errOut io.Writer, themeName string) *Printer {
	return &Printer{
		out:      out,
		errOut:   errOut,
		theme:    NewTheme(themeName, lipgloss.NewRenderer(out)),
		errTheme: NewTheme(themeName, lipgloss.NewRenderer(errOut)),
	}
}

func (p *Printer) Out() io.Writer    { return p.out }
func (p *Printer) ErrOut() io.Writer { return p.errOut }
func (p *Printer) Theme() Theme      { return p.theme }

// OK prints a success line on stdout.
func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.out, p.theme.Success.Render(prefixed(p.theme.SymOK, msg)))
}

// Fail prints an error line on stderr.
func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.errOut, p.errTheme.Error.Render(prefixed(p.errTheme.SymFail, "Error: "+msg)))
}

// Hint prints a muted line on stderr.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.errOut, p.errTheme.Muted.Render(msg))
}

// Println writes plain text on stdout.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.out, s)
}

func prefixed(sym, msg string) string {
	if sym == "" {
		return msg
	}
	return sym + " " + msg
}
