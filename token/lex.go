package token

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxDepth bounds group nesting accepted by the lexer. The rewriter recurses
// once per nesting level, so this also bounds its stack use.
const MaxDepth = 256

// punctChars lists every character lexed as a Punct.
const punctChars = "~!@#$%^&*-=+|;:,.<>?/"

// Lex splits src into token trees. File names the source in every span and
// is used to resolve relative include paths; it may be empty.
//
// Whitespace and comments (line, and nestable block) are discarded.
// Unbalanced delimiters and unterminated literals are reported as *Error.
func Lex(file, src string) (Stream, error) {
	l := &lexer{
		file:  file,
		input: []byte(src),
		line:  1,
		col:   1,
	}

	return l.run()
}

// lexer holds the lexer state.
type lexer struct {
	file  string
	input []byte
	pos   int
	line  int
	col   int
}

// frame is an open group on the lexer stack.
type frame struct {
	delim  Delim
	open   Pos
	stream Stream
}

func (l *lexer) run() (Stream, error) {
	stack := []*frame{{delim: None}}

	for {
		err := l.skipTrivia()
		if err != nil {
			return nil, err
		}

		if l.eof() {
			break
		}

		start := l.position()
		top := stack[len(stack)-1]

		switch ch := l.peek(); ch {
		case '(', '[', '{':
			if len(stack) > MaxDepth {
				return nil, errorf(l.spanFrom(start),
					"groups nested deeper than the supported limit")
			}

			l.advance()

			stack = append(stack, &frame{delim: openDelim(ch), open: start})

		case ')', ']', '}':
			l.advance()

			delim := closeDelim(ch)

			if len(stack) == 1 {
				return nil, errorf(l.spanFrom(start),
					"unexpected closing delimiter `"+string(ch)+"`")
			}

			if top.delim != delim {
				return nil, errorf(l.spanFrom(start),
					"mismatched closing delimiter `"+string(ch)+
						"`, expected `"+top.delim.Close()+
						"` to close `"+top.delim.Open()+"` at "+top.open.String())
			}

			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.stream = append(parent.stream, &Group{
				Delim:  delim,
				Stream: top.stream,
				Span:   l.spanFrom(top.open),
			})

		default:
			t, err := l.lexLeaf()
			if err != nil {
				return nil, err
			}

			top.stream = append(top.stream, t)
		}
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		end := top.open
		end.Offset++
		end.Column++

		return nil, errorf(Span{File: l.file, Start: top.open, End: end},
			"unclosed delimiter `"+top.delim.Open()+"`")
	}

	return stack[0].stream, nil
}

// lexLeaf lexes one identifier, literal or punctuation token.
func (l *lexer) lexLeaf() (Tree, error) {
	start := l.position()
	ch := l.peek()
	next := l.peekAt(1)

	switch {
	case ch == 'r' && next == '#' && isIdentifierStart(l.peekAt(2)):
		l.advance() // r
		l.advance() // #
		l.scanIdent()

		return &Ident{Name: l.text(start), Span: l.spanFrom(start)}, nil

	case ch == 'r' && (next == '"' || next == '#'):
		l.advance()

		return l.lexRawString(start, LitRawString)

	case ch == 'b' && next == 'r' && (l.peekAt(2) == '"' || l.peekAt(2) == '#'):
		l.advance()
		l.advance()

		return l.lexRawString(start, LitByteString)

	case ch == 'b' && next == '"':
		l.advance()

		return l.lexQuoted(start, '"', LitByteString)

	case ch == 'b' && next == '\'':
		l.advance()

		return l.lexQuoted(start, '\'', LitByte)

	case isIdentifierStart(ch):
		l.scanIdent()

		return &Ident{Name: l.text(start), Span: l.spanFrom(start)}, nil

	case isDigit(ch):
		return l.lexNumber(start), nil

	case ch == '"':
		return l.lexQuoted(start, '"', LitString)

	case ch == '`':
		return l.lexBacktick(start)

	case ch == '\'':
		return l.lexQuote(start)

	case strings.ContainsRune(punctChars, ch):
		l.advance()

		spacing := Alone
		if strings.ContainsRune(punctChars, l.peek()) {
			spacing = Joint
		}

		return &Punct{Char: ch, Spacing: spacing, Span: l.spanFrom(start)}, nil

	default:
		l.advance()

		return nil, errorf(l.spanFrom(start),
			"unexpected character "+quoteRune(ch))
	}
}

// lexQuote lexes either a character literal or the quote of a lifetime.
func (l *lexer) lexQuote(start Pos) (Tree, error) {
	next := l.peekAt(1)

	if isIdentifierStart(next) && l.peekAt(2) != '\'' {
		l.advance()

		return &Punct{Char: '\'', Spacing: Joint, Span: l.spanFrom(start)}, nil
	}

	return l.lexQuoted(start, '\'', LitChar)
}

// lexQuoted lexes a literal delimited by quote with backslash escapes. The
// cursor is on the opening quote; any prefix has been consumed.
func (l *lexer) lexQuoted(start Pos, quote rune, kind LitKind) (Tree, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()
		l.advance()

		switch ch {
		case '\\':
			if !l.eof() {
				l.advance()
			}

		case quote:
			l.scanSuffix()

			return &Literal{Kind: kind, Text: l.text(start), Span: l.spanFrom(start)}, nil
		}
	}

	return nil, errorf(l.spanFrom(start), "unterminated "+kind.String()+" literal")
}

// lexRawString lexes r"...", r#"..."#, br"..." and friends. The cursor is on
// the first '#' or the opening quote.
func (l *lexer) lexRawString(start Pos, kind LitKind) (Tree, error) {
	hashes := 0
	for l.peek() == '#' {
		hashes++

		l.advance()
	}

	if l.peek() != '"' {
		return nil, errorf(l.spanFrom(start), "expected `\"` in raw string literal")
	}

	l.advance()

	closing := "\"" + strings.Repeat("#", hashes)

	for !l.eof() {
		if l.peekN(len(closing)) == closing {
			for range closing {
				l.advance()
			}

			l.scanSuffix()

			return &Literal{Kind: kind, Text: l.text(start), Span: l.spanFrom(start)}, nil
		}

		l.advance()
	}

	return nil, errorf(l.spanFrom(start), "unterminated raw string literal")
}

// lexBacktick lexes a back-quoted raw string as written in Go sources.
func (l *lexer) lexBacktick(start Pos) (Tree, error) {
	l.advance()

	for !l.eof() {
		ch := l.peek()
		l.advance()

		if ch == '`' {
			return &Literal{Kind: LitRawString, Text: l.text(start), Span: l.spanFrom(start)}, nil
		}
	}

	return nil, errorf(l.spanFrom(start), "unterminated raw string literal")
}

// lexNumber lexes an integer or float literal including any type suffix.
func (l *lexer) lexNumber(start Pos) Tree {
	radix := l.peek() == '0' && strings.ContainsRune("xXoObB", l.peekAt(1))

	var dot, exp bool

	prev := rune(0)

scan:
	for !l.eof() {
		ch := l.peek()

		switch {
		case ch == '.' && !radix && !dot && !exp && isDigit(l.peekAt(1)):
			dot = true
		case (ch == 'e' || ch == 'E') && !radix && !exp &&
			(isDigit(prev) || prev == '_') &&
			(isDigit(l.peekAt(1)) ||
				((l.peekAt(1) == '+' || l.peekAt(1) == '-') && isDigit(l.peekAt(2)))):
			exp = true

			l.advance()

			if p := l.peek(); p == '+' || p == '-' {
				l.advance()
			}

			prev = ch

			continue
		case isIdentifierContinue(ch):
		default:
			break scan
		}

		prev = ch

		l.advance()
	}

	text := l.text(start)
	kind := LitInteger

	if dot || exp ||
		(!radix && (strings.HasSuffix(text, "f32") || strings.HasSuffix(text, "f64"))) {
		kind = LitFloat
	}

	return &Literal{Kind: kind, Text: text, Span: l.spanFrom(start)}
}

func (l *lexer) scanIdent() {
	l.advance()

	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}
}

// scanSuffix consumes a literal suffix such as the "u8" in 1u8.
func (l *lexer) scanSuffix() {
	if !l.eof() && isIdentifierStart(l.peek()) {
		l.scanIdent()
	}
}

// skipTrivia discards whitespace and comments.
func (l *lexer) skipTrivia() error {
	for !l.eof() {
		switch {
		case unicode.IsSpace(l.peek()):
			l.advance()

		case l.peekN(2) == "//":
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case l.peekN(2) == "/*":
			err := l.skipBlockComment()
			if err != nil {
				return err
			}

		default:
			return nil
		}
	}

	return nil
}

// skipBlockComment skips a possibly nested block comment.
func (l *lexer) skipBlockComment() error {
	start := l.position()
	depth := 0

	for !l.eof() {
		switch l.peekN(2) {
		case "/*":
			depth++

			l.advance()
			l.advance()

		case "*/":
			depth--

			l.advance()
			l.advance()

			if depth == 0 {
				return nil
			}

		default:
			l.advance()
		}
	}

	return errorf(l.spanFrom(start), "unterminated block comment")
}

// Helper methods

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])

	return r
}

// peekAt returns the rune n runes ahead of the cursor, or 0 past the end.
func (l *lexer) peekAt(n int) rune {
	pos := l.pos

	for ; n > 0; n-- {
		if pos >= len(l.input) {
			return 0
		}

		_, size := utf8.DecodeRune(l.input[pos:])
		pos += size
	}

	if pos >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[pos:])

	return r
}

func (l *lexer) peekN(n int) string {
	if l.pos+n > len(l.input) {
		return string(l.input[l.pos:])
	}

	return string(l.input[l.pos : l.pos+n])
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Pos {
	return Pos{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) spanFrom(start Pos) Span {
	return Span{File: l.file, Start: start, End: l.position()}
}

func (l *lexer) text(start Pos) string {
	return string(l.input[start.Offset:l.pos])
}

func openDelim(ch rune) Delim {
	switch ch {
	case '(':
		return Paren
	case '[':
		return Bracket
	default:
		return Brace
	}
}

func closeDelim(ch rune) Delim {
	switch ch {
	case ')':
		return Paren
	case ']':
		return Bracket
	default:
		return Brace
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "(invalid UTF-8)"
	}

	return "'" + string(r) + "'"
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}
