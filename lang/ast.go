package lang

import (
	"slices"

	"github.com/ardnew/identstr/token"
)

// Name is the name under which the transformer is invoked in source files.
const Name = "ident_str"

// Invocation is the parsed input of one transformer invocation: a list of
// placeholder declarations followed by the body they apply to.
type Invocation struct {
	Decls []*Decl
	Body  token.Stream

	// Braced reports whether the body was written inside a single brace
	// group, which is stripped from Body.
	Braced bool
}

// Decl is one placeholder declaration: "#name = value".
type Decl struct {
	Hash  *token.Punct
	Name  *token.Ident
	Value Value

	// Span covers the whole declaration, from the '#' to the end of the value.
	Span token.Span
}

// Key returns the lookup key of the declared placeholder.
func (d *Decl) Key() string { return d.Name.Name }

// NameSpan returns the span of the "#name" part of the declaration.
func (d *Decl) NameSpan() token.Span { return token.Join(d.Hash.Span, d.Name.Span) }

// Value is a declaration's value: the absent sentinel, spelled None, or a
// string-producing expression.
type Value struct {
	Expr Expr // nil when absent
	Span token.Span
}

// IsAbsent reports whether the value is the None sentinel.
func (v Value) IsAbsent() bool { return v.Expr == nil }

// Binding is the evaluated state of one placeholder.
type Binding struct {
	Decl *Decl

	// Ident is the identifier spelling that replaces the placeholder. It is
	// empty when Absent is set.
	Ident  string
	Absent bool
}

// Bindings maps placeholder names to their evaluated state.
type Bindings map[string]Binding

// Names returns the bound placeholder names in sorted order.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
