package repl

import (
	"slices"
	"testing"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"placeholder", "fn #na", 6, "#na", 3, 6},
		{"lone_hash", "fn #", 4, "#", 3, 4},
		{"macro", "#a = con", 8, "con", 5, 8},
		{"macro_bang", "#a = concat!", 12, "concat!", 5, 12},
		{"after_paren", "concat!(#a, st", 14, "st", 12, 14},
		{"after_arrow", "=> #get", 7, "#get", 3, 7},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "#foobar", 3, "#foobar", 0, 7},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 9, "foo", 0, 3},
		{"unicode", "#größe", 8, "#größe", 0, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDeclared(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"none", `fn x() {}`, nil},
		{"one", `#a = "x" => #a`, []string{"#a"}},
		{"several", `#a = "x", # b = None, #r#type = "t" => #a`, []string{"#a", "#b", "#r#type"}},
		{"trailing", `#a = "x", #b =`, []string{"#a", "#b"}},
		{"arrow_is_not_decl", `#a => x`, nil},
		{"comparison_is_not_decl", `#a == b`, nil},
		{"duplicate", `#a = "x", #a = "y"`, []string{"#a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := declared(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("declared(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCandidatesFor(t *testing.T) {
	input := `#name = "x", #get = concat!("get_", "x") => fn #`

	if got := candidatesFor(modeExpand, input, "#"); !slices.Equal(got, []string{"#name", "#get"}) {
		t.Errorf("placeholder candidates = %q", got)
	}

	if got := candidatesFor(modeExpand, input, "con"); !slices.Contains(got, "concat!") {
		t.Errorf("value candidates = %q, want concat!", got)
	}

	if got := candidatesFor(modeCtrl, input, "q"); !slices.Equal(got, ctrlCommands) {
		t.Errorf("command candidates = %q", got)
	}
}

func TestComputeMatches(t *testing.T) {
	m := newModel(t.Context(), NewHistory(""), zeroLogger)

	tests := []struct {
		name  string
		input string
		want  string // best match, or "" for none
	}{
		{"placeholder", `#name = "x" => fn #nm`, "#name"},
		{"lone_hash", `#name = "x" => fn #`, "#name"},
		{"macro", `#a = incl`, "include!"},
		{"empty", `#a = `, ""},
		{"unknown", `#a = "x" => #zz`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			switch {
			case tt.want == "" && len(matches) > 0:
				t.Errorf("unexpected matches %v", matches)
			case tt.want != "" && (len(matches) == 0 || matches[0].Str != tt.want):
				t.Errorf("best match of %q = %v, want %q", tt.input, matches, tt.want)
			}
		})
	}
}
