package token

// Tree is a single token tree: an *Ident, *Literal, *Punct or *Group.
//
// The set of variants is closed. Code that inspects a Tree uses a type switch
// over the four pointer types; the unexported marker method keeps other
// packages from adding variants.
type Tree interface {
	tree()
}

// Stream is an ordered sequence of token trees.
type Stream []Tree

// Ident is an identifier or keyword.
type Ident struct {
	Name string
	Span Span

	// Origin is the span of the whole "#name" reference an identifier was
	// synthesized from. It is zero for lexed identifiers and is only used to
	// lay out output text.
	Origin Span
}

// LitKind classifies a literal.
type LitKind int

const (
	LitString     LitKind = iota // string
	LitRawString                 // raw string
	LitByteString                // byte string
	LitChar                      // char
	LitByte                      // byte
	LitInteger                   // integer
	LitFloat                     // float
)

// String returns the name of the literal kind.
func (k LitKind) String() string {
	switch k {
	case LitString:
		return "string"
	case LitRawString:
		return "raw string"
	case LitByteString:
		return "byte string"
	case LitChar:
		return "char"
	case LitByte:
		return "byte"
	case LitInteger:
		return "integer"
	case LitFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Literal is a string, character or numeric literal.
// Text holds the exact source spelling, including quotes, prefixes and
// suffixes.
type Literal struct {
	Kind LitKind
	Text string
	Span Span
}

// Spacing tells whether a punctuation character is immediately followed by
// another punctuation character, forming a multi-character operator.
type Spacing int

const (
	Alone Spacing = iota // alone
	Joint                // joint
)

// String returns the name of the spacing.
func (s Spacing) String() string {
	if s == Joint {
		return "joint"
	}

	return "alone"
}

// Punct is a single punctuation character.
type Punct struct {
	Char    rune
	Spacing Spacing
	Span    Span
}

// Delim is the delimiter kind of a Group.
type Delim int

const (
	Paren   Delim = iota // ( )
	Bracket              // [ ]
	Brace                // { }
	None                 // invisible
)

// String returns the name of the delimiter.
func (d Delim) String() string {
	switch d {
	case Paren:
		return "paren"
	case Bracket:
		return "bracket"
	case Brace:
		return "brace"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// Open returns the opening delimiter text, empty for None.
func (d Delim) Open() string {
	switch d {
	case Paren:
		return "("
	case Bracket:
		return "["
	case Brace:
		return "{"
	default:
		return ""
	}
}

// Close returns the closing delimiter text, empty for None.
func (d Delim) Close() string {
	switch d {
	case Paren:
		return ")"
	case Bracket:
		return "]"
	case Brace:
		return "}"
	default:
		return ""
	}
}

// Group is a delimited token stream. Span covers both delimiters.
type Group struct {
	Delim  Delim
	Stream Stream
	Span   Span
}

func (*Ident) tree()   {}
func (*Literal) tree() {}
func (*Punct) tree()   {}
func (*Group) tree()   {}

// SpanOf returns the span of any token tree.
func SpanOf(t Tree) Span {
	switch t := t.(type) {
	case *Ident:
		return t.Span
	case *Literal:
		return t.Span
	case *Punct:
		return t.Span
	case *Group:
		return t.Span
	default:
		return Span{}
	}
}

// Span returns the span covering every tree in the stream.
func (s Stream) Span() Span {
	if len(s) == 0 {
		return Span{}
	}

	return Join(SpanOf(s[0]), SpanOf(s[len(s)-1]))
}

// NewIdent returns an identifier without a source location.
func NewIdent(name string) *Ident { return &Ident{Name: name} }

// NewPunct returns a punctuation token without a source location.
func NewPunct(ch rune, spacing Spacing) *Punct {
	return &Punct{Char: ch, Spacing: spacing}
}

// IsIdent reports whether t is an identifier spelled name.
func IsIdent(t Tree, name string) bool {
	id, ok := t.(*Ident)

	return ok && id.Name == name
}

// IsPunct reports whether t is the punctuation character ch.
func IsPunct(t Tree, ch rune) bool {
	p, ok := t.(*Punct)

	return ok && p.Char == ch
}

// WithSpan returns a copy of the stream in which every token, recursively,
// carries span. It is used to attribute synthesized tokens to one location.
func (s Stream) WithSpan(span Span) Stream {
	out := make(Stream, len(s))

	for i, t := range s {
		switch t := t.(type) {
		case *Ident:
			out[i] = &Ident{Name: t.Name, Span: span}
		case *Literal:
			out[i] = &Literal{Kind: t.Kind, Text: t.Text, Span: span}
		case *Punct:
			out[i] = &Punct{Char: t.Char, Spacing: t.Spacing, Span: span}
		case *Group:
			out[i] = &Group{Delim: t.Delim, Stream: t.Stream.WithSpan(span), Span: span}
		}
	}

	return out
}

// Equal reports whether two streams have the same shape and spelling,
// ignoring spans.
func Equal(a, b Stream) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !equalTree(a[i], b[i]) {
			return false
		}
	}

	return true
}

func equalTree(a, b Tree) bool {
	switch a := a.(type) {
	case *Ident:
		b, ok := b.(*Ident)

		return ok && a.Name == b.Name
	case *Literal:
		b, ok := b.(*Literal)

		return ok && a.Kind == b.Kind && a.Text == b.Text
	case *Punct:
		b, ok := b.(*Punct)

		return ok && a.Char == b.Char && a.Spacing == b.Spacing
	case *Group:
		b, ok := b.(*Group)

		return ok && a.Delim == b.Delim && Equal(a.Stream, b.Stream)
	default:
		return false
	}
}
