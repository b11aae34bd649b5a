package lang

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/identstr/token"
)

var (
	errBadEscape  = errors.New("invalid escape sequence")
	errBadLiteral = errors.New("malformed literal")
	errSuffix     = errors.New("literal suffixes are not allowed here")
)

// literalValue decodes a literal to the text concat! renders for it.
// Byte and byte string literals are rejected.
func literalValue(lit *token.Literal) (string, error) {
	switch lit.Kind {
	case token.LitString:
		return unquoteString(lit.Text)
	case token.LitRawString:
		return unquoteRaw(lit.Text)
	case token.LitChar:
		return unquoteChar(lit.Text)
	case token.LitInteger:
		return integerValue(lit.Text)
	case token.LitFloat:
		return floatValue(lit.Text), nil
	default:
		return "", errors.New("cannot concatenate a " + lit.Kind.String() + " literal")
	}
}

// unquoteString decodes a double-quoted string literal. Rust escapes are
// tried first; Go escapes such as \u00e9 are accepted as a fallback.
func unquoteString(text string) (string, error) {
	if !strings.HasPrefix(text, `"`) || !strings.HasSuffix(text, `"`) || len(text) < 2 {
		return "", errSuffix
	}

	s, err := unescape(text[1:len(text)-1], '"')
	if err == nil {
		return s, nil
	}

	if g, gerr := strconv.Unquote(text); gerr == nil {
		return g, nil
	}

	return "", err
}

// unquoteRaw decodes r"...", r#"..."# and Go back-quoted strings.
func unquoteRaw(text string) (string, error) {
	if strings.HasPrefix(text, "`") {
		return strings.ReplaceAll(text[1:len(text)-1], "\r", ""), nil
	}

	body := strings.TrimPrefix(text, "r")
	hashes := len(body) - len(strings.TrimLeft(body, "#"))
	closing := `"` + strings.Repeat("#", hashes)

	if !strings.HasSuffix(body, closing) || len(body) < 2*hashes+2 {
		return "", errSuffix
	}

	return body[hashes+1 : len(body)-len(closing)], nil
}

func unquoteChar(text string) (string, error) {
	if !strings.HasPrefix(text, "'") || !strings.HasSuffix(text, "'") || len(text) < 3 {
		return "", errSuffix
	}

	s, err := unescape(text[1:len(text)-1], '\'')
	if err != nil {
		return "", err
	}

	if utf8.RuneCountInString(s) != 1 {
		return "", errors.New("character literal may only contain one codepoint")
	}

	return s, nil
}

// unescape processes the escape sequences of a quoted literal body.
func unescape(s string, quote byte) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		if strings.IndexByte(s, quote) >= 0 {
			return "", errBadLiteral
		}

		return s, nil
	}

	var sb strings.Builder

	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++

			continue
		}

		if i+1 >= len(s) {
			return "", errBadEscape
		}

		i += 2

		switch s[i-1] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '0':
			sb.WriteByte(0)
		case '\'':
			sb.WriteByte('\'')
		case '"':
			sb.WriteByte('"')

		case 'x':
			if i+2 > len(s) {
				return "", errBadEscape
			}

			n, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil || n > 0x7f {
				return "", errBadEscape
			}

			sb.WriteByte(byte(n))

			i += 2

		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if !strings.HasPrefix(s[i:], "{") || end < 2 {
				return "", errBadEscape
			}

			digits := strings.ReplaceAll(s[i+1:i+end], "_", "")

			n, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || len(digits) > 6 || !utf8.ValidRune(rune(n)) {
				return "", errBadEscape
			}

			sb.WriteRune(rune(n))

			i += end + 1

		case '\n':
			i += len(s[i:]) - len(strings.TrimLeft(s[i:], " \t\r\n"))

		default:
			return "", errBadEscape
		}
	}

	return sb.String(), nil
}

// integerSuffixes lists the type suffixes of integer literals.
var integerSuffixes = []string{
	"i128", "u128", "isize", "usize",
	"i16", "i32", "i64", "u16", "u32", "u64",
	"i8", "u8",
}

// integerValue renders an integer literal in decimal, as concat! does.
func integerValue(text string) (string, error) {
	for _, suffix := range integerSuffixes {
		if s, ok := strings.CutSuffix(text, suffix); ok {
			text = s

			break
		}
	}

	text = strings.ReplaceAll(text, "_", "")
	base := 10

	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 10 {
			text = text[2:]
		}
	}

	n, ok := new(big.Int).SetString(text, base)
	if !ok {
		return "", errBadLiteral
	}

	return n.String(), nil
}

// floatValue renders a float literal without its type suffix.
func floatValue(text string) string {
	for _, suffix := range []string{"f32", "f64"} {
		if s, ok := strings.CutSuffix(text, suffix); ok {
			return s
		}
	}

	return text
}
