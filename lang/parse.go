package lang

import (
	"slices"

	"github.com/ardnew/identstr/token"
)

// Parse parses the input of one invocation:
//
//	Input    → DeclList '=>' Body
//	DeclList → Decl (',' Decl)* ','?
//	Decl     → '#' Ident '=' Value
//	Value    → 'None' | StringExpr
//	Body     → '{' Tokens '}' | Tokens
//
// The returned error is a *Diagnostic of kind Malformed or Unrecognized.
func Parse(input token.Stream) (*Invocation, error) {
	p := newParser(input, token.Span{})
	inv := new(Invocation)

	for {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}

		inv.Decls = append(inv.Decls, decl)

		if p.atArrow() {
			p.next()
			p.next()

			break
		}

		if !token.IsPunct(p.peek(), ',') {
			return nil, p.malformed("expected `,` or `=>`")
		}

		p.next()

		if p.atArrow() {
			p.next()
			p.next()

			break
		}
	}

	rest := p.rest()
	if len(rest) == 1 {
		if g, ok := rest[0].(*token.Group); ok && g.Delim == token.Brace {
			inv.Body = g.Stream
			inv.Braced = true

			return inv, nil
		}
	}

	inv.Body = rest

	return inv, nil
}

// parser is a cursor over a token stream with arbitrary lookahead.
type parser struct {
	input token.Stream
	pos   int

	// end locates errors reported at the end of input: the span of the
	// enclosing group, or of the last token.
	end token.Span
}

func newParser(input token.Stream, end token.Span) *parser {
	if !end.IsValid() && len(input) > 0 {
		end = token.SpanOf(input[len(input)-1])
	}

	return &parser{input: input, end: end}
}

// parseDecl parses: '#' Ident '=' Value.
func (p *parser) parseDecl() (*Decl, error) {
	hash, ok := p.peek().(*token.Punct)
	if !ok || hash.Char != '#' {
		return nil, p.malformed("expected `#`")
	}

	p.next()

	name, ok := p.peek().(*token.Ident)
	if !ok {
		return nil, p.malformed("expected placeholder name after `#`")
	}

	p.next()

	if !token.IsPunct(p.peek(), '=') {
		return nil, p.malformed("expected `=` after `#" + name.Name + "`")
	}

	p.next()

	if p.eof() {
		return nil, p.malformed("expected value for `#" + name.Name + "`")
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &Decl{
		Hash:  hash,
		Name:  name,
		Value: value,
		Span:  token.Join(hash.Span, value.Span),
	}, nil
}

// parseValue parses: 'None' | StringExpr.
func (p *parser) parseValue() (Value, error) {
	if id, ok := p.peek().(*token.Ident); ok && id.Name == "None" {
		p.next()

		return Value{Span: id.Span}, nil
	}

	e, err := p.parseStringExpr()
	if err != nil {
		return Value{}, err
	}

	return Value{Expr: e, Span: e.Span()}, nil
}

// parseStringExpr parses a string literal or a recognized macro call.
func (p *parser) parseStringExpr() (Expr, error) {
	if lit, ok := p.peek().(*token.Literal); ok &&
		(lit.Kind == token.LitString || lit.Kind == token.LitRawString) {
		return p.parseLiteral(nil)
	}

	if e, ok, err := p.parseMacro(); ok || err != nil {
		return e, err
	}

	return nil, p.unrecognized("expected string or None")
}

// parseConcatArg parses an argument of concat!: a string expression or a
// char, number or bool literal.
func (p *parser) parseConcatArg() (Expr, error) {
	switch t := p.peek().(type) {
	case *token.Literal:
		return p.parseLiteral(nil)

	case *token.Ident:
		if t.Name == "true" || t.Name == "false" {
			p.next()

			return &BoolExpr{Ident: t}, nil
		}

	case *token.Punct:
		if lit, ok := p.peekAt(1).(*token.Literal); ok && t.Char == '-' &&
			(lit.Kind == token.LitInteger || lit.Kind == token.LitFloat) {
			p.next()

			return p.parseLiteral(t)
		}
	}

	if e, ok, err := p.parseMacro(); ok || err != nil {
		return e, err
	}

	return nil, p.unrecognized("expected a literal")
}

func (p *parser) parseLiteral(neg *token.Punct) (Expr, error) {
	lit := p.next().(*token.Literal)

	v, err := literalValue(lit)
	if err != nil {
		return nil, diagnose(Unrecognized, lit.Span, err.Error())
	}

	if neg != nil {
		v = "-" + v
	}

	return &LitExpr{Lit: lit, Neg: neg, Value: v}, nil
}

// macroNames lists the recognized string-producing macros.
var macroNames = []string{"concat", "stringify", "env", "include", "include_str"}

// parseMacro parses a recognized macro call, optionally qualified by
// std:: or core::. It reports ok=false without consuming anything when the
// input does not start with one.
func (p *parser) parseMacro() (Expr, bool, error) {
	start := p.pos

	if p.atPathSep() {
		p.pos += 2
	}

	if id, ok := p.peek().(*token.Ident); ok &&
		(id.Name == "std" || id.Name == "core") && p.atPathSepAt(1) {
		p.pos += 3
	}

	name, ok := p.peek().(*token.Ident)
	if !ok || !slices.Contains(macroNames, name.Name) ||
		!token.IsPunct(p.peekAt(1), '!') {
		p.pos = start

		return nil, false, nil
	}

	group, ok := p.peekAt(2).(*token.Group)
	if !ok || group.Delim == token.None {
		p.pos = start

		return nil, false, nil
	}

	p.pos += 3

	span := token.Join(token.SpanOf(p.input[start]), group.Span)
	args := newParser(group.Stream, group.Span)

	var (
		e   Expr
		err error
	)

	switch name.Name {
	case "concat":
		e, err = args.parseConcat(span)
	case "stringify":
		e = &StringifyExpr{Tokens: group.Stream, span: span}
	case "env":
		e, err = args.parseEnv(span)
	default:
		e, err = args.parseInclude(span, name.Name == "include_str")
	}

	return e, true, err
}

func (p *parser) parseConcat(span token.Span) (Expr, error) {
	e := &ConcatExpr{span: span}

	for !p.eof() {
		arg, err := p.parseConcatArg()
		if err != nil {
			return nil, err
		}

		e.Args = append(e.Args, arg)

		if err := p.parseSeparator(); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (p *parser) parseEnv(span token.Span) (Expr, error) {
	if p.eof() {
		return nil, p.unrecognized("env! takes 1 or 2 arguments")
	}

	e := &EnvExpr{span: span}

	name, err := p.parseStringExpr()
	if err != nil {
		return nil, err
	}

	e.Name = name

	if err := p.parseSeparator(); err != nil {
		return nil, err
	}

	if p.eof() {
		return e, nil
	}

	msg, err := p.parseStringExpr()
	if err != nil {
		return nil, err
	}

	e.Message = msg

	if err := p.parseSeparator(); err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.unrecognized("env! takes 1 or 2 arguments")
	}

	return e, nil
}

func (p *parser) parseInclude(span token.Span, str bool) (Expr, error) {
	if p.eof() {
		return nil, p.unrecognized("expected a file path")
	}

	path, err := p.parseStringExpr()
	if err != nil {
		return nil, err
	}

	if err := p.parseSeparator(); err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.unrecognized("expected a single file path")
	}

	return &IncludeExpr{Path: path, Str: str, span: span}, nil
}

// parseSeparator consumes the ',' between macro arguments. A trailing ','
// is allowed.
func (p *parser) parseSeparator() error {
	if p.eof() {
		return nil
	}

	if !token.IsPunct(p.peek(), ',') {
		return p.unrecognized("expected `,`")
	}

	p.next()

	return nil
}

// Helper methods

func (p *parser) peek() token.Tree { return p.peekAt(0) }

func (p *parser) peekAt(n int) token.Tree {
	if p.pos+n >= len(p.input) {
		return nil
	}

	return p.input[p.pos+n]
}

func (p *parser) next() token.Tree {
	t := p.peek()
	if t != nil {
		p.pos++
	}

	return t
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) rest() token.Stream { return p.input[p.pos:] }

// atArrow reports whether the cursor is on "=>".
func (p *parser) atArrow() bool {
	eq, ok := p.peek().(*token.Punct)

	return ok && eq.Char == '=' && eq.Spacing == token.Joint &&
		token.IsPunct(p.peekAt(1), '>')
}

func (p *parser) atPathSep() bool { return p.atPathSepAt(0) }

// atPathSepAt reports whether "::" starts n trees ahead of the cursor.
func (p *parser) atPathSepAt(n int) bool {
	c, ok := p.peekAt(n).(*token.Punct)

	return ok && c.Char == ':' && c.Spacing == token.Joint &&
		token.IsPunct(p.peekAt(n+1), ':')
}

// span returns the span of the current token, or of the end of input.
func (p *parser) span() token.Span {
	if t := p.peek(); t != nil {
		return token.SpanOf(t)
	}

	return p.end
}

func (p *parser) malformed(msg string) *Diagnostic {
	return diagnose(Malformed, p.span(), msg)
}

func (p *parser) unrecognized(msg string) *Diagnostic {
	return diagnose(Unrecognized, p.span(), msg)
}
