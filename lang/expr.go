package lang

import "github.com/ardnew/identstr/token"

// Expr is a string-producing expression in a declaration value. The set of
// forms is closed:
//
//	"literal"                    *LitExpr
//	concat!(e, ...)              *ConcatExpr
//	stringify!(tokens)           *StringifyExpr
//	env!("NAME") env!("NAME", "message")
//	                             *EnvExpr
//	include!("path") include_str!("path")
//	                             *IncludeExpr
//
// Arguments of concat! may also be char, integer, float and bool literals
// (*LitExpr, *BoolExpr).
type Expr interface {
	Span() token.Span
	expr()
}

// LitExpr is a literal whose value was decoded when it was parsed.
type LitExpr struct {
	Lit *token.Literal
	Neg *token.Punct // leading '-' of a negative number, or nil

	// Value is the decoded content: unescaped text of a string or char, or
	// the canonical rendering of a number.
	Value string
}

// BoolExpr is the literal true or false.
type BoolExpr struct {
	Ident *token.Ident
}

// ConcatExpr concatenates its arguments left to right.
type ConcatExpr struct {
	Args []Expr
	span token.Span
}

// StringifyExpr spells its tokens in canonical form.
type StringifyExpr struct {
	Tokens token.Stream
	span   token.Span
}

// EnvExpr reads an environment variable when evaluated.
type EnvExpr struct {
	Name    Expr
	Message Expr // custom error message, or nil
	span    token.Span
}

// IncludeExpr reads the content of a file when evaluated.
type IncludeExpr struct {
	Path Expr
	Str  bool // spelled include_str!
	span token.Span
}

func (e *LitExpr) Span() token.Span {
	if e.Neg != nil {
		return token.Join(e.Neg.Span, e.Lit.Span)
	}

	return e.Lit.Span
}

func (e *BoolExpr) Span() token.Span      { return e.Ident.Span }
func (e *ConcatExpr) Span() token.Span    { return e.span }
func (e *StringifyExpr) Span() token.Span { return e.span }
func (e *EnvExpr) Span() token.Span       { return e.span }
func (e *IncludeExpr) Span() token.Span   { return e.span }

func (*LitExpr) expr()       {}
func (*BoolExpr) expr()      {}
func (*ConcatExpr) expr()    {}
func (*StringifyExpr) expr() {}
func (*EnvExpr) expr()       {}
func (*IncludeExpr) expr()   {}
