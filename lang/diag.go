package lang

import (
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/identstr/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// Malformed input: the declaration list or body shape is not recognized.
	Malformed Kind = iota

	// Unrecognized value expression.
	Unrecognized

	// Unresolvable value: an unset environment variable or unreadable file.
	Unresolvable

	// Redefinition of a placeholder name.
	Redefinition

	// Invalid identifier produced by a declaration value.
	Invalid

	// Undefined placeholder referenced in the body.
	Undefined
)

// String returns a short description of the kind.
func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed input"
	case Unrecognized:
		return "unrecognized value"
	case Unresolvable:
		return "unresolvable value"
	case Redefinition:
		return "redefinition"
	case Invalid:
		return "invalid identifier"
	case Undefined:
		return "undefined placeholder"
	default:
		return "unknown"
	}
}

// Fatal reports whether a diagnostic of this kind prevents rewriting.
func (k Kind) Fatal() bool {
	switch k {
	case Redefinition, Undefined:
		return false
	default:
		return true
	}
}

// Diagnostic is a problem found in an invocation, attached to the span of
// the offending tokens.
type Diagnostic struct {
	Kind    Kind
	Span    token.Span
	Message string
	Hint    string

	// Related is a second location the hint refers to, such as the first
	// declaration of a redefined placeholder. It is the zero span if unused.
	Related token.Span
}

func diagnose(kind Kind, span token.Span, msg string) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Message: msg}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if !d.Span.IsValid() {
		return d.Text()
	}

	return d.Span.String() + ": " + d.Text()
}

// Text returns the message followed by the hint, if any.
func (d *Diagnostic) Text() string {
	if d.Hint == "" {
		return d.Message
	}

	return d.Message + "; " + d.Hint
}

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.String("span", d.Span.String()),
		slog.String("message", d.Message),
	}

	if d.Hint != "" {
		attrs = append(attrs, slog.String("hint", d.Hint))
	}

	return slog.GroupValue(attrs...)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []*Diagnostic

// Fatal reports whether any diagnostic prevents rewriting.
func (ds Diagnostics) Fatal() bool {
	for _, d := range ds {
		if d.Kind.Fatal() {
			return true
		}
	}

	return false
}

// Err combines the diagnostics into a single error, or returns nil if there
// are none.
func (ds Diagnostics) Err() error {
	var result *multierror.Error

	for _, d := range ds {
		result = multierror.Append(result, d)
	}

	if result != nil {
		result.ErrorFormat = formatDiagnostics
	}

	return result.ErrorOrNil()
}

func formatDiagnostics(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}

	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}

	return strings.Join(lines, "\n")
}

// Tokens encodes each diagnostic as "::core::compile_error! { "message" }"
// carrying the diagnostic's span, so a host compiler reports each one as a
// separate error at the right location.
func (ds Diagnostics) Tokens() token.Stream {
	var out token.Stream

	for _, d := range ds {
		call := token.Stream{
			token.NewPunct(':', token.Joint),
			token.NewPunct(':', token.Alone),
			token.NewIdent("core"),
			token.NewPunct(':', token.Joint),
			token.NewPunct(':', token.Alone),
			token.NewIdent("compile_error"),
			token.NewPunct('!', token.Alone),
			&token.Group{
				Delim: token.Brace,
				Stream: token.Stream{&token.Literal{
					Kind: token.LitString,
					Text: quote(d.Text()),
				}},
			},
		}

		out = append(out, call.WithSpan(d.Span)...)
	}

	return out
}

// quote returns s as a double-quoted string literal using only escapes that
// both Rust and Go accept.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\x`)
				sb.WriteByte("0123456789abcdef"[r>>4])
				sb.WriteByte("0123456789abcdef"[r&0xf])
			} else {
				sb.WriteRune(r)
			}
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
