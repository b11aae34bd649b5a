package lang

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/identstr/token"
)

// MaxPasses bounds how many times ExpandSource re-expands its own output to
// reach invocations produced by other invocations.
const MaxPasses = 16

// SourceExpansion is the result of expanding every invocation in a file.
type SourceExpansion struct {
	// Output is the source text with each expanded invocation replaced.
	Output string

	// Diagnostics from all invocations, in source order.
	Diagnostics Diagnostics

	// Count is the number of invocations expanded.
	Count int

	// Skipped is the number of invocations left untouched in Output because
	// their input contains macro metavariables ($name).
	Skipped int
}

// ExpandString lexes input as the input of a single invocation and expands it.
func ExpandString(ctx context.Context, file, input string, opts ...Option) (*Expansion, error) {
	stream, err := token.Lex(file, input)
	if err != nil {
		return nil, ErrLex.Wrap(err).With(slog.String("file", file))
	}

	return Expand(ctx, stream, opts...), nil
}

// ExpandSource finds every "ident_str! { ... }" invocation in src, including
// path-qualified ones such as "ident_str::ident_str!" and those nested in
// other groups, and replaces each with its expansion. Text outside the
// invocations, comments included, is kept byte for byte. An invocation whose
// body is suppressed by a diagnostic is left as written, unless compile
// errors are enabled.
//
// Invocations produced by an expansion are expanded in a further pass. Passes
// stop when one expands nothing, reports a diagnostic, or after MaxPasses.
// Diagnostics always refer to src, whichever pass reported them.
func ExpandSource(ctx context.Context, file, src string, opts ...Option) (*SourceExpansion, error) {
	o := makeOptions(opts...)
	out := &SourceExpansion{Output: src}

	var passes [][]edit

	for pass := range MaxPasses {
		edits, diags, err := expandPass(ctx, file, out, o, opts)
		if err != nil {
			return nil, err
		}

		out.Diagnostics = append(out.Diagnostics, relocate(diags, passes, src)...)
		passes = append(passes, edits)

		o.logger.DebugContext(ctx, "expansion pass",
			slog.String("file", file),
			slog.Int("pass", pass),
			slog.Int("expanded", len(edits)))

		if len(edits) == 0 || len(out.Diagnostics) > 0 {
			break
		}
	}

	return out, nil
}

// edit replaces src[start:end] with text. Each segment locates a token of
// text in src.
type edit struct {
	start, end int
	text       string
	segs       []token.Segment
}

// expandPass expands the invocations in out.Output and returns the edits it
// applied, sorted by offset, with the diagnostics of the pass in terms of the
// pass input.
func expandPass(
	ctx context.Context,
	file string,
	out *SourceExpansion,
	o options,
	opts []Option,
) ([]edit, Diagnostics, error) {
	src := out.Output
	out.Skipped = 0

	stream, err := token.Lex(file, src)
	if err != nil {
		return nil, nil, ErrLex.Wrap(err).With(slog.String("file", file))
	}

	var (
		edits []edit
		diags Diagnostics
	)

	for _, call := range findInvocations(stream) {
		if err := context.Cause(ctx); err != nil {
			return nil, nil, ErrCanceled.Wrap(err).With(slog.String("file", file))
		}

		if hasMetavariable(call.group.Stream) {
			out.Skipped++

			o.logger.DebugContext(ctx, "skipped template invocation",
				slog.String("span", call.span.String()))

			continue
		}

		x := Expand(ctx, call.group.Stream, opts...)
		diags = append(diags, x.Diagnostics...)

		result := x.Body

		switch {
		case o.compileErrors:
			result = x.Tokens()

		case x.Diagnostics.Fatal():
			o.logger.DebugContext(ctx, "left failing invocation",
				slog.String("span", call.span.String()),
				slog.Int("diagnostics", len(x.Diagnostics)))

			continue
		}

		text, segs := token.LayoutMap(result, src)

		edits = append(edits, edit{
			start: call.span.Start.Offset,
			end:   call.span.End.Offset,
			text:  text,
			segs:  segs,
		})

		out.Count++
	}

	slices.SortFunc(edits, func(a, b edit) int { return cmp.Compare(a.start, b.start) })

	out.Output = applyEdits(src, edits)

	return edits, diags, nil
}

// relocate moves the spans of diags, which refer to the output of the given
// passes, back to src, the input of the first pass.
func relocate(diags Diagnostics, passes [][]edit, src string) Diagnostics {
	if len(passes) == 0 {
		return diags
	}

	span := func(s token.Span) token.Span {
		if !s.IsValid() {
			return s
		}

		start, end := s.Start.Offset, s.End.Offset

		for i := len(passes) - 1; i >= 0; i-- {
			start = origin(passes[i], start, false)
			end = origin(passes[i], end, true)
		}

		end = max(end, start)

		return token.Span{File: s.File, Start: token.PosAt(src, start), End: token.PosAt(src, end)}
	}

	for _, d := range diags {
		d.Span = span(d.Span)

		if d.Related.IsValid() {
			prev := d.Related.String()
			d.Related = span(d.Related)
			d.Hint = strings.ReplaceAll(d.Hint, prev, d.Related.String())
		}
	}

	return diags
}

// origin maps offset off in the output of edits, sorted by offset, back to
// their input. An offset inside replaced text maps into the token written
// there. With end set, off is the exclusive end of a range.
func origin(edits []edit, off int, end bool) int {
	delta := 0

	for _, e := range edits {
		outStart := e.start + delta
		outEnd := outStart + len(e.text)

		switch {
		case off < outStart, end && off == outStart:
			return off - delta

		case off < outEnd, end && off == outEnd:
			return e.origin(off-outStart, end)
		}

		delta += len(e.text) - (e.end - e.start)
	}

	return off - delta
}

// origin maps offset rel in e.text to the input. Offsets between tokens map
// to the next token start, or with end set to the previous token end.
func (e edit) origin(rel int, end bool) int {
	for _, s := range e.segs {
		switch {
		case end && rel == s.Out+s.Len:
			return s.End

		case !end && rel == s.Out:
			return s.Start

		case rel > s.Out && rel < s.Out+s.Len:
			return min(s.Start+rel-s.Out, s.End)
		}
	}

	if end {
		at := e.start

		for _, s := range e.segs {
			if s.Out+s.Len <= rel {
				at = s.End
			}
		}

		return at
	}

	for _, s := range e.segs {
		if s.Out >= rel {
			return s.Start
		}
	}

	return e.end
}

// invocation locates one "path::ident_str ! (...)" in a stream.
type invocation struct {
	group *token.Group
	span  token.Span // from the first path segment to the closing delimiter
}

// findInvocations returns the invocations in s in source order. Groups that
// are not an invocation's input are searched recursively.
func findInvocations(s token.Stream) []invocation {
	var out []invocation

	for i := 0; i < len(s); i++ {
		if token.IsIdent(s[i], Name) && i+2 < len(s) && token.IsPunct(s[i+1], '!') {
			if g, ok := s[i+2].(*token.Group); ok && g.Delim != token.None {
				start := pathStart(s, i)
				out = append(out, invocation{
					group: g,
					span:  token.Join(token.SpanOf(s[start]), g.Span),
				})
				i += 2

				continue
			}
		}

		if g, ok := s[i].(*token.Group); ok {
			out = append(out, findInvocations(g.Stream)...)
		}
	}

	return out
}

// pathStart returns the index of the first segment of the path ending at
// s[i], so that "::ident_str::ident_str" is replaced as a whole.
func pathStart(s token.Stream, i int) int {
	for i >= 2 && token.IsPunct(s[i-1], ':') && token.IsPunct(s[i-2], ':') {
		i -= 2

		if i >= 1 {
			if _, ok := s[i-1].(*token.Ident); ok {
				i--

				continue
			}
		}

		break
	}

	return i
}

// hasMetavariable reports whether s contains a '$' punctuation character,
// which marks the body of a declarative macro that is not yet instantiated.
func hasMetavariable(s token.Stream) bool {
	for _, t := range s {
		switch t := t.(type) {
		case *token.Punct:
			if t.Char == '$' {
				return true
			}

		case *token.Group:
			if hasMetavariable(t.Stream) {
				return true
			}
		}
	}

	return false
}

// applyEdits returns src with the edits, sorted by offset, applied.
func applyEdits(src string, edits []edit) string {
	if len(edits) == 0 {
		return src
	}

	var sb strings.Builder

	last := 0

	for _, e := range edits {
		sb.WriteString(src[last:e.start])
		sb.WriteString(e.text)

		last = e.end
	}

	sb.WriteString(src[last:])

	return sb.String()
}
