package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/identstr/cli/render"
	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/log"
)

var zeroLogger log.Logger

func plainStyles() render.Styles {
	return render.NewStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		names  []string
		errors int
	}{
		{
			name:  "invocation",
			input: `#a = "foo" => fn #a() {}`,
			want:  "fn foo() {}",
			names: []string{"a"},
		},
		{
			name:  "concat",
			input: `#get = concat!("get_", 1) => fn #get() {}`,
			want:  "fn get_1() {}",
			names: []string{"get"},
		},
		{
			name:  "source",
			input: `struct S; ident_str!{ #t = "T" => struct #t; }`,
			want:  "struct S; struct T;",
		},
		{
			name:   "undefined",
			input:  `#a = "x" => #a #b`,
			want:   "x #b",
			names:  []string{"a"},
			errors: 1,
		},
		{
			name:   "invalid",
			input:  `#a = "1x" => #a`,
			names:  nil,
			errors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bindings := evaluate(t.Context(), tt.input, plainStyles(),
				lang.WithLogger(zeroLogger))

			if tt.want != "" && !strings.HasPrefix(got, tt.want) {
				t.Errorf("evaluate(%q) = %q, want prefix %q", tt.input, got, tt.want)
			}

			if n := strings.Count(got, "error: "); n != tt.errors {
				t.Errorf("evaluate(%q) rendered %d diagnostics, want %d:\n%s",
					tt.input, n, tt.errors, got)
			}

			var names []string
			if len(bindings) > 0 {
				names = bindings.Names()
			}

			if strings.Join(names, ",") != strings.Join(tt.names, ",") {
				t.Errorf("bindings = %q, want %q", names, tt.names)
			}
		})
	}
}

func TestEvaluate_LexError(t *testing.T) {
	got, bindings := evaluate(t.Context(), `#a = "unterminated => #a`, plainStyles())

	if !strings.HasPrefix(got, "error: ") {
		t.Errorf("evaluate() = %q, want an error", got)
	}

	if bindings != nil {
		t.Errorf("bindings = %v, want nil", bindings)
	}
}

func TestListBindings(t *testing.T) {
	x, err := lang.ExpandString(t.Context(), replFile, `#b = None, #a = "foo" => x`)
	if err != nil {
		t.Fatal(err)
	}

	got := listBindings(x.Bindings)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("listBindings() = %q, want two lines", got)
	}

	if !strings.HasPrefix(lines[0], "  #a ") || !strings.HasSuffix(lines[0], " foo") {
		t.Errorf("line 0 = %q", lines[0])
	}

	if !strings.HasPrefix(lines[1], "  #b ") || !strings.HasSuffix(lines[1], "None") {
		t.Errorf("line 1 = %q", lines[1])
	}

	if got := listBindings(nil); !strings.Contains(got, "no placeholders") {
		t.Errorf("listBindings(nil) = %q", got)
	}
}
