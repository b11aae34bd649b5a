package lang

import (
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/identstr/token"
)

// Rewrite replaces every placeholder reference "#name" in body according to
// bindings and returns the new stream with the diagnostics it produced.
//
// A resolved placeholder becomes a single identifier carrying the span of
// the name it replaces. An absent placeholder is copied unchanged. A name
// with no binding is reported as Undefined and dropped from the output. All
// other tokens, including '#' not followed by an identifier, are copied
// with their spans; groups are rebuilt with their delimiter and span after
// their contents are rewritten.
func Rewrite(body token.Stream, bindings Bindings) (token.Stream, Diagnostics) {
	r := &rewriter{bindings: bindings}
	out := r.stream(body)

	return out, r.diags
}

type rewriter struct {
	bindings Bindings
	diags    Diagnostics
	names    []string // sorted binding names, computed on first use
}

func (r *rewriter) stream(in token.Stream) token.Stream {
	out := make(token.Stream, 0, len(in))

	for i := 0; i < len(in); i++ {
		switch t := in[i].(type) {
		case *token.Ident, *token.Literal:
			out = append(out, t)

		case *token.Group:
			out = append(out, &token.Group{
				Delim:  t.Delim,
				Stream: r.stream(t.Stream),
				Span:   t.Span,
			})

		case *token.Punct:
			var name *token.Ident

			if t.Char == '#' && i+1 < len(in) {
				name, _ = in[i+1].(*token.Ident)
			}

			if name == nil {
				out = append(out, t)

				continue
			}

			i++

			out = append(out, r.placeholder(t, name)...)
		}
	}

	return out
}

// placeholder returns the replacement of the reference "#name".
func (r *rewriter) placeholder(hash *token.Punct, name *token.Ident) token.Stream {
	b, ok := r.bindings[name.Name]

	switch {
	case !ok:
		r.diags = append(r.diags, r.undefined(hash, name))

		return nil

	case b.Absent:
		return token.Stream{hash, name}

	default:
		return token.Stream{&token.Ident{
			Name:   b.Ident,
			Span:   name.Span,
			Origin: token.Join(hash.Span, name.Span),
		}}
	}
}

func (r *rewriter) undefined(hash *token.Punct, name *token.Ident) *Diagnostic {
	k := name.Name
	d := diagnose(Undefined, token.Join(hash.Span, name.Span),
		"unknown placeholder `#"+k+"`")
	d.Hint = "if you intended to literally use `#" + k + "`, add `#" + k +
		" = None` to the declarations"

	if s := r.suggest(k); s != "" {
		d.Message += " (did you mean `#" + s + "`?)"
	}

	return d
}

// suggest returns the declared name closest to k, or "" if none is close.
func (r *rewriter) suggest(k string) string {
	if r.names == nil {
		r.names = r.bindings.Names()
	}

	for _, m := range fuzzy.Find(k, r.names) {
		if similarLength(k, m.Str) {
			return m.Str
		}
	}

	// k may be a declared name with extra characters, as in "#names" for
	// "#name"; match the other way around.
	best, score := "", 0

	for _, name := range r.names {
		m := fuzzy.Find(name, []string{k})
		if len(m) > 0 && similarLength(k, name) && (best == "" || m[0].Score > score) {
			best, score = name, m[0].Score
		}
	}

	return best
}

// similarLength reports whether two names are close enough in length for one
// to be a misspelling of the other.
func similarLength(a, b string) bool {
	short, long := min(len(a), len(b)), max(len(a), len(b))

	return 2*short >= long
}
