package token

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Pos is a location in a source text.
// Line and Column are 1-based; Column counts runes, Offset counts bytes.
type Pos struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position was produced by the lexer.
func (p Pos) IsValid() bool { return p.Line > 0 }

// String formats the position as "line:column".
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// PosAt returns the position of the byte offset in src. Offsets outside src
// are clamped to it.
func PosAt(src string, offset int) Pos {
	offset = min(max(offset, 0), len(src))
	head := src[:offset]
	lineStart := strings.LastIndexByte(head, '\n') + 1

	return Pos{
		Offset: offset,
		Line:   strings.Count(head, "\n") + 1,
		Column: utf8.RuneCountInString(head[lineStart:]) + 1,
	}
}

// Before reports whether p precedes q in the same source.
func (p Pos) Before(q Pos) bool { return p.Offset < q.Offset }

// Span is the half-open source range [Start, End) covered by a token.
// The transformer never interprets spans; it only copies them.
type Span struct {
	File  string
	Start Pos
	End   Pos
}

// IsValid reports whether the span refers to lexed source.
func (s Span) IsValid() bool { return s.Start.IsValid() }

// String formats the span as "file:line:column", omitting an empty file.
func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}

	var sb strings.Builder

	if s.File != "" {
		sb.WriteString(s.File)
		sb.WriteByte(':')
	}

	sb.WriteString(s.Start.String())

	return sb.String()
}

// Range formats the span as "line:column-line:column".
func (s Span) Range() string {
	if !s.IsValid() {
		return "-"
	}

	return s.Start.String() + "-" + s.End.String()
}

// Len returns the number of source bytes covered by the span.
func (s Span) Len() int { return s.End.Offset - s.Start.Offset }

// Join returns the smallest span covering both a and b.
// An invalid span is absorbed by the other.
func Join(a, b Span) Span {
	switch {
	case !a.IsValid():
		return b
	case !b.IsValid():
		return a
	}

	out := a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}

	if out.End.Before(b.End) {
		out.End = b.End
	}

	return out
}
