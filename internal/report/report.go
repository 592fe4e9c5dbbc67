// Package report writes the console output of a check run.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/moritzketzer/nix-openclaw/internal/validation"
)

const (
	// OKLine is printed to stdout when the config passes.
	OKLine = "openclaw config validation: ok"
	// FailedHeader precedes the issue lines on stderr.
	FailedHeader = "OpenClaw config validation failed:"
)

// Printer sends success output to out and everything else to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer

	okStyle   lipgloss.Style
	failStyle lipgloss.Style
	styled    bool
}

// NewPrinter builds a printer. When styled is false the output is plain text
// with no escape sequences at all.
func NewPrinter(out, errOut io.Writer, styled bool) *Printer {
	p := &Printer{out: out, errOut: errOut, styled: styled}
	if styled {
		outRenderer := lipgloss.NewRenderer(out)
		outRenderer.SetColorProfile(termenv.ANSI)
		errRenderer := lipgloss.NewRenderer(errOut)
		errRenderer.SetColorProfile(termenv.ANSI)
		p.okStyle = outRenderer.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
		p.failStyle = errRenderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	}
	return p
}

// OK prints the single success line.
func (p *Printer) OK() {
	fmt.Fprintln(p.out, p.render(p.okStyle, OKLine))
}

// Failed prints the header and one line per issue, in the order given.
func (p *Printer) Failed(issues []validation.Issue) {
	fmt.Fprintln(p.errOut, p.render(p.failStyle, FailedHeader))
	for _, issue := range issues {
		fmt.Fprintln(p.errOut, IssueLine(issue))
	}
}

// Diagnostic prints one line to errOut.
func (p *Printer) Diagnostic(format string, args ...any) {
	fmt.Fprintf(p.errOut, format+"\n", args...)
}

// IssueLine formats an issue as "- <path>: <message>"; a missing path leaves
// the label empty.
func IssueLine(issue validation.Issue) string {
	return fmt.Sprintf("- %s: %s", issue.Path, issue.Message)
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}
