package token

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// String returns the canonical spelling of the stream: trees separated by a
// single space, except after a joint punctuation character. This is the text
// produced by stringify!.
func (s Stream) String() string {
	var sb strings.Builder

	writeCanonical(&sb, s)

	return sb.String()
}

// TreeString returns the canonical spelling of a single tree.
func TreeString(t Tree) string {
	return Stream{t}.String()
}

func writeCanonical(sb *strings.Builder, s Stream) {
	joint := false

	for i, t := range s {
		if i > 0 && !joint {
			sb.WriteByte(' ')
		}

		joint = false

		switch t := t.(type) {
		case *Ident:
			sb.WriteString(t.Name)

		case *Literal:
			sb.WriteString(t.Text)

		case *Punct:
			sb.WriteRune(t.Char)

			joint = t.Spacing == Joint

		case *Group:
			sb.WriteString(t.Delim.Open())

			if t.Delim == Brace && len(t.Stream) > 0 {
				sb.WriteByte(' ')
				writeCanonical(sb, t.Stream)
				sb.WriteByte(' ')
			} else {
				writeCanonical(sb, t.Stream)
			}

			sb.WriteString(t.Delim.Close())
		}
	}
}

// Layout returns the text of s with the line breaks and indentation recorded
// in its spans. Tokens on the same source line are separated by one space when
// the source separated them, runs of blank lines collapse to one, and
// indentation is copied from src (the text the spans refer to) when given.
//
// The first token is written without any leading separator so the result can
// replace the text of the invocation it came from.
func Layout(s Stream, src string) string {
	p := &layout{src: src}
	p.stream(s)

	return p.sb.String()
}

// Segment relates a run of text written by LayoutMap to the source range of
// the token written there.
type Segment struct {
	Out   int // offset of the text in the output
	Len   int // length of the text in bytes
	Start int // source offset of the token
	End   int // source offset just past the token
}

// LayoutMap is Layout that also returns, in output order, one Segment for
// every token that has a source span.
func LayoutMap(s Stream, src string) (string, []Segment) {
	p := &layout{src: src, record: true}
	p.stream(s)

	return p.sb.String(), p.segs
}

type layout struct {
	sb        strings.Builder
	segs      []Segment
	src       string
	lastStart Pos
	last      Pos
	tail      rune
	started   bool
	record    bool
}

func (p *layout) stream(s Stream) {
	for _, t := range s {
		switch t := t.(type) {
		case *Ident:
			start := t.Span.Start
			if t.Origin.IsValid() {
				start = t.Origin.Start
			}

			p.place(start, t.Span.End, t.Name)

		case *Literal:
			p.place(t.Span.Start, t.Span.End, t.Text)

		case *Punct:
			p.place(t.Span.Start, t.Span.End, string(t.Char))

		case *Group:
			if t.Delim == None {
				p.stream(t.Stream)

				continue
			}

			openEnd := t.Span.Start
			if openEnd.IsValid() {
				openEnd.Offset++
				openEnd.Column++
			}

			p.place(t.Span.Start, openEnd, t.Delim.Open())
			p.stream(t.Stream)

			closeStart := t.Span.End
			if closeStart.IsValid() {
				closeStart.Offset--
				closeStart.Column--
			}

			p.place(closeStart, t.Span.End, t.Delim.Close())
		}
	}
}

func (p *layout) place(start, end Pos, text string) {
	switch {
	case !p.started:
		p.started = true

	case !start.IsValid() || !p.last.IsValid():
		p.sb.WriteByte(' ')

	case start.Before(p.lastStart):
		// Tokens placed out of source order, such as appended compile_error!
		// calls, start a new line.
		p.sb.WriteByte('\n')
		p.sb.WriteString(p.lineIndent(start))

	case start.Line > p.last.Line:
		p.sb.WriteString(strings.Repeat("\n", min(start.Line-p.last.Line, 2)))
		p.sb.WriteString(p.indent(start))

	case p.last.Before(start), glued(p.tail, text):
		p.sb.WriteByte(' ')
	}

	if p.record && start.IsValid() {
		p.segs = append(p.segs, Segment{
			Out:   p.sb.Len(),
			Len:   len(text),
			Start: start.Offset,
			End:   end.Offset,
		})
	}

	p.sb.WriteString(text)
	p.lastStart = start
	p.last = end
	p.tail, _ = utf8.DecodeLastRuneInString(text)
}

// glued reports whether writing next directly after a token ending in tail
// would lex as a single token.
func glued(tail rune, next string) bool {
	head, _ := utf8.DecodeRuneInString(next)

	return isIdentifierContinue(tail) &&
		(isIdentifierContinue(head) || head == '"' || head == '\'' || head == '#')
}

// lineIndent returns the leading whitespace of the line containing start.
func (p *layout) lineIndent(start Pos) string {
	if start.Offset > len(p.src) {
		return ""
	}

	line := p.src[strings.LastIndexByte(p.src[:start.Offset], '\n')+1:]

	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// indent returns the whitespace that precedes column start on its line.
// Non-blank source characters before the column are replaced by spaces.
func (p *layout) indent(start Pos) string {
	if start.Offset > len(p.src) {
		return strings.Repeat(" ", start.Column-1)
	}

	line := p.src[strings.LastIndexByte(p.src[:start.Offset], '\n')+1 : start.Offset]

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}

		return ' '
	}, line)
}
