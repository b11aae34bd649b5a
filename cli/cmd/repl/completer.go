package repl

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "clear", "quit"}

// valueWords are the words that may begin a placeholder value.
var valueWords = []string{
	"concat!", "stringify!", "env!", "include!", "include_str!",
	"None", "true", "false",
}

// declPattern matches the name of each "#name = ..." declaration, but not
// "#name =>" or "#name ==".
var declPattern = regexp.MustCompile(`#\s*((?:r#)?[\p{L}_][\p{L}\p{N}_]*)\s*=(?:[^=>]|$)`)

// declared returns the placeholder names declared in input, each prefixed
// with '#', in order of first appearance.
func declared(input string) []string {
	var names []string

	for _, m := range declPattern.FindAllStringSubmatch(input, -1) {
		if name := "#" + m[1]; !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	return names
}

func isWordRune(r rune) bool {
	return r == '_' || r == '!' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. A word is a run of identifier characters,
// optionally ending in '!' and optionally preceded by a '#' that becomes
// part of it.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	if start > 0 && input[start-1] == '#' {
		start--
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidatesFor returns the completion candidates of word in the given
// mode. Placeholders are offered only where a '#' has been typed; value
// words everywhere else.
func candidatesFor(mode inputMode, input, word string) []string {
	switch {
	case mode == modeCtrl:
		return ctrlCommands
	case strings.HasPrefix(word, "#"):
		return declared(input)
	default:
		return valueWords
	}
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. A lone '#' lists every declared placeholder.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, ws, we := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, nil, ws, we
	}

	candidates = candidatesFor(m.mode, input, word)
	if len(candidates) == 0 {
		return nil, nil, ws, we
	}

	if word == "#" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, ws, we
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, ws, we
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, highlight = selectedStyle, selectedStyle.Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
