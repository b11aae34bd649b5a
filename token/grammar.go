package token

import (
	"go/token"
	"slices"
	"strings"
)

// Grammar decides which strings are valid identifiers of the host language.
type Grammar interface {
	Name() string
	IsIdent(s string) bool
}

// Rust is the identifier grammar of Rust sources. Keywords are rejected unless
// written as raw identifiers ("r#type"); the path keywords and "_" are rejected
// in both forms.
var Rust Grammar = rustGrammar{}

// Go is the identifier grammar of Go sources. Keywords are rejected.
var Go Grammar = goGrammar{}

// Grammars lists every supported grammar in the order shown to users.
var Grammars = []Grammar{Rust, Go}

// GrammarByName returns the grammar with the given name (case-insensitive).
func GrammarByName(name string) (Grammar, bool) {
	for _, g := range Grammars {
		if strings.EqualFold(g.Name(), name) {
			return g, true
		}
	}

	return nil, false
}

// GrammarNames returns the names of all supported grammars.
func GrammarNames() []string {
	names := make([]string, len(Grammars))
	for i, g := range Grammars {
		names[i] = g.Name()
	}

	return names
}

type rustGrammar struct{}

// rustKeywords holds strict, reserved and weak keywords that cannot name an
// ordinary identifier.
var rustKeywords = []string{
	"_", "abstract", "as", "async", "await", "become", "box", "break",
	"const", "continue", "crate", "do", "dyn", "else", "enum", "extern",
	"false", "final", "fn", "for", "if", "impl", "in", "let", "loop",
	"macro", "match", "mod", "move", "mut", "override", "priv", "pub",
	"ref", "return", "Self", "self", "static", "struct", "super", "trait",
	"true", "try", "type", "typeof", "unsafe", "unsized", "use", "virtual",
	"where", "while", "yield",
}

// rustPathKeywords may not be raw identifiers.
var rustPathKeywords = []string{"_", "crate", "self", "super", "Self"}

func (rustGrammar) Name() string { return "rust" }

func (rustGrammar) IsIdent(s string) bool {
	if raw, ok := strings.CutPrefix(s, "r#"); ok {
		return isWord(raw) && !slices.Contains(rustPathKeywords, raw)
	}

	return isWord(s) && !slices.Contains(rustKeywords, s)
}

type goGrammar struct{}

func (goGrammar) Name() string { return "go" }

func (goGrammar) IsIdent(s string) bool { return token.IsIdentifier(s) }

// isWord reports whether s is a non-empty XID_Start XID_Continue* word.
func isWord(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) {
			return false
		}

		if i > 0 && !isIdentifierContinue(r) {
			return false
		}
	}

	return s != ""
}
