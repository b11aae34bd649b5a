package lang

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/ardnew/identstr/token"
)

// Expansion is the result of one invocation.
type Expansion struct {
	// Invocation is the parsed input, or nil if the input was malformed.
	Invocation *Invocation

	// Bindings holds every placeholder that was declared and evaluated.
	Bindings Bindings

	// Body is the rewritten body. It is empty when a fatal diagnostic
	// prevented rewriting.
	Body token.Stream

	Diagnostics Diagnostics
}

// Tokens returns the body followed by one compile_error! invocation per
// diagnostic, the complete output of a transformer invocation.
func (x *Expansion) Tokens() token.Stream {
	out := make(token.Stream, 0, len(x.Body))
	out = append(out, x.Body...)

	return append(out, x.Diagnostics.Tokens()...)
}

// Err returns the diagnostics combined into one error, or nil.
func (x *Expansion) Err() error { return x.Diagnostics.Err() }

// Expand runs the transformer on the input of one invocation: it parses the
// declarations, evaluates each value in source order, validates the
// resulting identifiers and rewrites the body.
//
// Parse failures, evaluation failures and invalid identifiers suppress the
// body. Redefinitions and undefined placeholders are reported alongside the
// rewritten body.
func Expand(ctx context.Context, input token.Stream, opts ...Option) *Expansion {
	o := makeOptions(opts...)
	x := &Expansion{Bindings: make(Bindings)}

	inv, err := Parse(input)
	if err != nil {
		x.Diagnostics = append(x.Diagnostics, asDiagnostic(err, input.Span()))

		o.logger.TraceContext(ctx, "parse failed",
			slog.Any("diagnostic", x.Diagnostics[0]))

		return x
	}

	x.Invocation = inv

	o.logger.TraceContext(ctx, "parsed invocation",
		slog.Int("decls", len(inv.Decls)),
		slog.Int("body", len(inv.Body)),
		slog.Bool("braced", inv.Braced))

	ev := o.evaluator()
	first := make(map[string]*Decl, len(inv.Decls))

	for _, decl := range inv.Decls {
		k := decl.Key()

		prev, repeated := first[k]
		if repeated {
			d := diagnose(Redefinition, decl.Span, "redefinition of `#"+k+"`")
			d.Related = prev.Span
			d.Hint = "`#" + k + "` was first declared at " + prev.Span.String()

			x.Diagnostics = append(x.Diagnostics, d)
		} else {
			first[k] = decl
		}

		// A repeated declaration is still evaluated and validated; only the
		// first one is bound.
		b, d := bind(ctx, ev, o.grammar, decl)
		if d != nil {
			x.Diagnostics = append(x.Diagnostics, d)

			continue
		}

		if repeated {
			continue
		}

		x.Bindings[k] = b

		o.logger.TraceContext(ctx, "bound placeholder",
			slog.String("name", k),
			slog.String("ident", b.Ident),
			slog.Bool("absent", b.Absent))
	}

	if x.Diagnostics.Fatal() {
		o.logger.TraceContext(ctx, "body suppressed",
			slog.Int("diagnostics", len(x.Diagnostics)))

		return x
	}

	body, diags := Rewrite(inv.Body, x.Bindings)

	x.Body = body
	x.Diagnostics = append(x.Diagnostics, diags...)

	o.logger.TraceContext(ctx, "rewrote body",
		slog.Int("tokens", len(body)),
		slog.Int("diagnostics", len(x.Diagnostics)))

	return x
}

// bind evaluates one declaration and validates its identifier.
func bind(
	ctx context.Context,
	ev *Evaluator,
	grammar token.Grammar,
	decl *Decl,
) (Binding, *Diagnostic) {
	if decl.Value.IsAbsent() {
		return Binding{Decl: decl, Absent: true}, nil
	}

	s, err := ev.Eval(ctx, decl.Value.Expr)
	if err != nil {
		return Binding{}, asDiagnostic(err, decl.Value.Span)
	}

	if !grammar.IsIdent(s) {
		d := diagnose(Invalid, decl.Span, "invalid identifier: "+strconv.Quote(s))
		d.Hint = "`#" + decl.Key() + "` must evaluate to a " + grammar.Name() + " identifier"

		return Binding{}, d
	}

	return Binding{Decl: decl, Ident: s}, nil
}

// asDiagnostic converts err to a *Diagnostic, attaching span to errors that
// are not diagnostics already.
func asDiagnostic(err error, span token.Span) *Diagnostic {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}

	return diagnose(Unresolvable, span, err.Error())
}
