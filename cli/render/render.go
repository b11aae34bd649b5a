// Package render formats diagnostics for a terminal.
package render

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/identstr/lang"
)

// Styles are the lipgloss styles of each part of a rendered diagnostic.
type Styles struct {
	Severity lipgloss.Style
	Message  lipgloss.Style
	Location lipgloss.Style
	Gutter   lipgloss.Style
	Caret    lipgloss.Style
	Hint     lipgloss.Style
}

// NewStyles returns the default styles for output written through r.
// Colors are dropped when r does not write to a terminal.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Severity: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Message:  r.NewStyle().Bold(true),
		Location: r.NewStyle().Foreground(lipgloss.Color("8")),
		Gutter:   r.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		Caret:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Hint:     r.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// Printer writes diagnostics with a source excerpt and a caret line under
// the offending tokens:
//
//	error: unknown placeholder `#nme` (did you mean `#name`?)
//	  --> lib.rs:3:12 [undefined placeholder]
//	   |
//	 3 |     fn get_#nme() {}
//	   |            ^^^^
//	   = help: if you intended to literally use `#nme`, add ...
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter returns a Printer writing to w, styled for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

// Print writes each diagnostic in diags, whose spans refer to src.
func (p *Printer) Print(src string, diags lang.Diagnostics) error {
	for i, d := range diags {
		text := Diagnostic(p.styles, src, d)
		if i > 0 {
			text = "\n" + text
		}

		if _, err := io.WriteString(p.w, text); err != nil {
			return err
		}
	}

	return nil
}

// Diagnostic renders d against the source text src.
func Diagnostic(s Styles, src string, d *lang.Diagnostic) string {
	var sb strings.Builder

	sb.WriteString(s.Severity.Render("error"))
	sb.WriteString(s.Message.Render(": " + d.Message))
	sb.WriteByte('\n')

	line := d.Span.Start.Line
	width := len(strconv.Itoa(max(line, 1)))
	pad := strings.Repeat(" ", width)

	sb.WriteString(pad)
	sb.WriteString(s.Gutter.Render("--> "))
	sb.WriteString(s.Location.Render(d.Span.String() + " [" + d.Kind.String() + "]"))
	sb.WriteByte('\n')

	if text, ok := sourceLine(src, d.Span.Start.Offset); ok && d.Span.IsValid() {
		bar := s.Gutter.Render(pad + " |")

		sb.WriteString(bar)
		sb.WriteByte('\n')
		sb.WriteString(s.Gutter.Render(strconv.Itoa(line) + " |"))
		sb.WriteString(" " + expandTabs(text))
		sb.WriteByte('\n')
		sb.WriteString(bar)
		sb.WriteString(" " + caretLine(text, d))
		sb.WriteString(s.Caret.Render(strings.Repeat("^", caretWidth(text, d))))
		sb.WriteByte('\n')
	}

	if d.Hint != "" {
		sb.WriteString(s.Gutter.Render(pad + " = "))
		sb.WriteString(s.Hint.Render("help: " + d.Hint))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// sourceLine returns the line of src containing the byte offset.
func sourceLine(src string, offset int) (string, bool) {
	if offset < 0 || offset > len(src) {
		return "", false
	}

	start := strings.LastIndexByte(src[:offset], '\n') + 1

	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}

	return strings.TrimRight(src[start:end], "\r"), true
}

// caretLine returns the blanks that precede the caret, with tabs kept so
// the caret lines up with the excerpt.
func caretLine(text string, d *lang.Diagnostic) string {
	col := d.Span.Start.Column - 1

	var sb strings.Builder

	for i, r := range []rune(text) {
		if i >= col {
			break
		}

		if r == '\t' {
			sb.WriteString("    ")
		} else {
			sb.WriteByte(' ')
		}
	}

	return sb.String()
}

// caretWidth is the number of columns of the span on its first line, at
// least one.
func caretWidth(text string, d *lang.Diagnostic) int {
	n := d.Span.End.Column - d.Span.Start.Column
	if d.Span.End.Line != d.Span.Start.Line {
		n = utf8.RuneCountInString(text) - (d.Span.Start.Column - 1)
	}

	return max(n, 1)
}

func expandTabs(s string) string { return strings.ReplaceAll(s, "\t", "    ") }
