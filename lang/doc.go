// Package lang implements ident_str, a source transformer that synthesizes
// identifiers from strings.
//
// An invocation declares placeholders, then gives a body that refers to them:
//
//	ident_str! {
//	    #name_a = concat!(stringify!(foo), "_a"),
//	    #name_b = concat!(stringify!(foo), "_b"),
//	    => {
//	        fn #name_a() {}
//	        fn #name_b() {}
//	    }
//	}
//
// expands to
//
//	fn foo_a() {}
//	fn foo_b() {}
//
// # Grammar
//
//	Input    → DeclList '=>' Body
//	DeclList → Decl (',' Decl)* ','?
//	Decl     → '#' Ident '=' Value
//	Value    → 'None' | StringExpr
//	Body     → '{' Tokens '}' | Tokens
//
// A StringExpr is a string literal or one of concat!, stringify!, env!,
// include! and include_str!, possibly nested. Nothing else is evaluated.
//
// # Absent placeholders
//
// A reference to an undeclared placeholder is an error. Declaring
// "#name = None" keeps every "#name" in the body as written.
//
// # Pipeline
//
// [Parse] builds an [Invocation]; an [Evaluator] reduces each value to a
// string, which must be an identifier of the configured [token.Grammar];
// [Rewrite] substitutes the placeholders. [Expand] runs all three and
// collects [Diagnostics]. [ExpandSource] applies [Expand] to every
// invocation found in a source file.
package lang
