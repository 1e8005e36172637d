// Package ui prints colored status lines: green for progress, yellow for
// things the user should notice, red for failures.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes status lines to an output stream.
type Printer struct {
	out    io.Writer
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	bold   *color.Color
}

// New returns a Printer writing to out. Colors follow fatih/color's
// terminal detection and the NO_COLOR convention.
func New(out io.Writer) *Printer {
	return &Printer{
		out:    out,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
}

// NewPlain returns a Printer that never emits color codes.
func NewPlain(out io.Writer) *Printer {
	p := New(out)
	for _, c := range []*color.Color{p.green, p.yellow, p.red, p.bold} {
		c.DisableColor()
	}
	return p
}

// Info prints a green line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.green, format, args...)
}

// Warn prints a yellow line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.yellow, format, args...)
}

// Fail prints a red line.
func (p *Printer) Fail(format string, args ...any) {
	p.line(p.red, format, args...)
}

// List prints a red heading followed by one yellow "- item" line per item.
func (p *Printer) List(heading string, items []string) {
	p.line(p.red, "%s", heading)
	for _, item := range items {
		_, _ = fmt.Fprintf(p.out, "- %s\n", p.yellow.Sprint(item))
	}
}

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Bold prints a bold line.
func (p *Printer) Bold(format string, args ...any) {
	p.line(p.bold, format, args...)
}

func (p *Printer) line(c *color.Color, format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, c.Sprintf(format, args...))
}
