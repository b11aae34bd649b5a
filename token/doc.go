// Package token implements the token-tree model shared by the identifier
// synthesizer and its command-line front end.
//
// A source text is lexed into a [Stream] of trees. Each tree is an [*Ident],
// a [*Literal], a [*Punct] or a delimited [*Group]; every tree carries the
// [Span] it was read from, and that span is copied unchanged through any
// rewriting so diagnostics and hygiene stay attached to the user's text.
//
// Two printers are provided. [Stream.String] gives the canonical spelling
// (one space between trees, none after a joint punctuation character), and
// [Layout] reproduces the line structure recorded in the spans.
//
// A [Grammar] decides which strings are identifiers of the host language.
package token
