package token

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape renders a stream as a compact kind-tagged string for comparisons.
func shape(s Stream) []string {
	out := make([]string, 0, len(s))

	for _, t := range s {
		switch t := t.(type) {
		case *Ident:
			out = append(out, "ident:"+t.Name)
		case *Literal:
			out = append(out, t.Kind.String()+":"+t.Text)
		case *Punct:
			out = append(out, "punct:"+string(t.Char)+":"+t.Spacing.String())
		case *Group:
			out = append(out, "group:"+t.Delim.String())
			out = append(out, shape(t.Stream)...)
			out = append(out, "end:"+t.Delim.String())
		}
	}

	return out
}

func TestLex_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "placeholder",
			input: "#name",
			want:  []string{"punct:#:alone", "ident:name"},
		},
		{
			name:  "fat arrow",
			input: "=> x",
			want:  []string{"punct:=:joint", "punct:>:alone", "ident:x"},
		},
		{
			name:  "raw identifier",
			input: "r#type",
			want:  []string{"ident:r#type"},
		},
		{
			name:  "string with escaped quote",
			input: `"a\"b"`,
			want:  []string{`string:"a\"b"`},
		},
		{
			name:  "raw string",
			input: `r#"say "hi""#`,
			want:  []string{`raw string:r#"say "hi""#`},
		},
		{
			name:  "byte string and byte",
			input: `b"ab" b'c'`,
			want:  []string{`byte string:b"ab"`, "byte:b'c'"},
		},
		{
			name:  "char literal",
			input: `'a' '\n'`,
			want:  []string{"char:'a'", `char:'\n'`},
		},
		{
			name:  "lifetime",
			input: "&'static str",
			want:  []string{"punct:&:alone", "punct:':joint", "ident:static", "ident:str"},
		},
		{
			name:  "numbers",
			input: "1 0x1f 1.5f32 2e10 3u8 7f64",
			want: []string{
				"integer:1", "integer:0x1f", "float:1.5f32",
				"float:2e10", "integer:3u8", "float:7f64",
			},
		},
		{
			name:  "range is not a float",
			input: "1..2",
			want:  []string{"integer:1", "punct:.:joint", "punct:.:alone", "integer:2"},
		},
		{
			name:  "path separator",
			input: "a::b",
			want:  []string{"ident:a", "punct:::joint", "punct:::alone", "ident:b"},
		},
		{
			name:  "go raw string",
			input: "`a\\b`",
			want:  []string{"raw string:`a\\b`"},
		},
		{
			name:  "comments are discarded",
			input: "a // line\n/* outer /* inner */ still */ b",
			want:  []string{"ident:a", "ident:b"},
		},
		{
			name:  "groups",
			input: "f(x, [y]) { }",
			want: []string{
				"ident:f", "group:paren", "ident:x", "punct:,:alone",
				"group:bracket", "ident:y", "end:bracket", "end:paren",
				"group:brace", "end:brace",
			},
		},
		{
			name:  "unicode identifier",
			input: "réussi",
			want:  []string{"ident:réussi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex("test.rs", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, shape(got))
		})
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unexpected close", "a )", "test.rs:1:3: unexpected closing delimiter `)`"},
		{"mismatched close", "( ]", "test.rs:1:3: mismatched closing delimiter `]`, expected `)` to close `(` at 1:1"},
		{"unclosed", "x {", "test.rs:1:3: unclosed delimiter `{`"},
		{"unterminated string", `"abc`, "test.rs:1:1: unterminated string literal"},
		{"unterminated raw string", `r#"abc"`, "test.rs:1:1: unterminated raw string literal"},
		{"unterminated comment", "/* a", "test.rs:1:1: unterminated block comment"},
		{"unexpected character", "a \\ b", `test.rs:1:3: unexpected character '\'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex("test.rs", tt.input)
			require.Error(t, err)

			var lexErr *Error
			require.True(t, errors.As(err, &lexErr))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestLex_Spans(t *testing.T) {
	s, err := Lex("a.rs", "x\n  #y")
	require.NoError(t, err)
	require.Len(t, s, 3)

	hash := s[1].(*Punct)
	assert.Equal(t, Pos{Offset: 4, Line: 2, Column: 3}, hash.Span.Start)
	assert.Equal(t, "a.rs:2:3", hash.Span.String())

	y := s[2].(*Ident)
	assert.Equal(t, Pos{Offset: 5, Line: 2, Column: 4}, y.Span.Start)
	assert.Equal(t, Pos{Offset: 6, Line: 2, Column: 5}, y.Span.End)
	assert.Equal(t, 1, y.Span.Len())

	assert.Equal(t, Join(s[0].(*Ident).Span, y.Span), s.Span())
}

func TestLex_MaxDepth(t *testing.T) {
	deep := ""
	for range MaxDepth + 1 {
		deep += "("
	}

	_, err := Lex("", deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestEqual(t *testing.T) {
	a, err := Lex("a", "f(x) + 1")
	require.NoError(t, err)

	b, err := Lex("b", "f (\n x )+1")
	require.NoError(t, err)

	c, err := Lex("c", "f[x] + 1")
	require.NoError(t, err)

	assert.True(t, Equal(a, b), "spans and whitespace are ignored")
	assert.False(t, Equal(a, c), "delimiters differ")
}

func TestWithSpan(t *testing.T) {
	s, err := Lex("a", "x (y)")
	require.NoError(t, err)

	span := Span{File: "z", Start: Pos{Line: 9, Column: 1}, End: Pos{Line: 9, Column: 2}}
	out := s.WithSpan(span)

	require.True(t, Equal(s, out))
	assert.Equal(t, span, SpanOf(out[0]))
	assert.Equal(t, span, SpanOf(out[1].(*Group).Stream[0]))
	assert.NotEqual(t, span, SpanOf(s[0]), "input is not modified")
}
