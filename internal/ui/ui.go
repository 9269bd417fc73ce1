// Package ui prints user-facing progress and results.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess = lipgloss.Color("#22C55E")
	ColorDanger  = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#EAB308")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorPrimary = lipgloss.Color("#A78BFA")
)

// Printer writes messages to out and errors to errOut. Styling is applied
// only when color is enabled; quiet drops everything except errors.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	color  bool
	quiet  bool

	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

// Options configures a Printer.
type Options struct {
	Color bool
	Quiet bool
}

// NewPrinter creates a printer.
func NewPrinter(out, errOut io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(out)

	return &Printer{
		out:     out,
		errOut:  errOut,
		color:   opts.Color,
		quiet:   opts.Quiet,
		success: r.NewStyle().Bold(true).Foreground(ColorSuccess),
		failure: lipgloss.NewRenderer(errOut).NewStyle().Bold(true).Foreground(ColorDanger),
		warning: r.NewStyle().Foreground(ColorWarning),
		muted:   r.NewStyle().Foreground(ColorMuted),
		title:   r.NewStyle().Bold(true).Foreground(ColorPrimary),
	}
}

// Info prints a plain progress line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.out, nil, format, args...)
}

// Success prints a line in the success style.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.out, &p.success, format, args...)
}

// Warn prints a line in the warning style.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line(p.out, &p.warning, format, args...)
}

// Detail prints a muted line, e.g. a URL or a path.
func (p *Printer) Detail(format string, args ...interface{}) {
	p.line(p.out, &p.muted, format, args...)
}

// Title prints a heading line.
func (p *Printer) Title(format string, args ...interface{}) {
	p.line(p.out, &p.title, format, args...)
}

// Plain prints a line that is never styled, for output meant to be piped
// (product lists, versions).
func (p *Printer) Plain(format string, args ...interface{}) {
	p.line(p.out, nil, format, args...)
}

// Error prints to the error writer. Never suppressed by quiet.
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.color {
		msg = p.failure.Render(msg)
	}
	fmt.Fprintln(p.errOut, msg)
}

func (p *Printer) line(w io.Writer, style *lipgloss.Style, format string, args ...interface{}) {
	if p.quiet {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if p.color && style != nil {
		msg = style.Render(msg)
	}
	fmt.Fprintln(w, msg)
}
