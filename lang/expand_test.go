package lang

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/ardnew/identstr/token"
)

func mustLex(t *testing.T, src string) token.Stream {
	t.Helper()

	s, err := token.Lex("test.rs", src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	return s
}

// expandText expands src and lays out the body against src.
func expandText(t *testing.T, src string, opts ...Option) (string, *Expansion) {
	t.Helper()

	x := Expand(context.Background(), mustLex(t, src), opts...)

	return token.Layout(x.Body, src), x
}

func TestExpand_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic substitution",
			input: `#name = "hello_world" => fn #name() -> &'static str { "x" }`,
			want:  `fn hello_world() -> &'static str { "x" }`,
		},
		{
			name:  "concatenation",
			input: `#na = concat!("foo", "_a"), #nb = concat!("foo", "_b") => fn #na() {} fn #nb() {}`,
			want:  `fn foo_a() {} fn foo_b() {}`,
		},
		{
			name:  "absent literal pass-through",
			input: `#keep = None => const _: &str = stringify!(#keep);`,
			want:  `const _: &str = stringify!(#keep);`,
		},
		{
			name: "placement generality",
			input: `#deriv = "derive", #debug = "Debug", #name = "MyEnum", #t = "T" =>
#[#deriv(#debug)] pub enum #name<#t> { V(#t) }`,
			want: `#[derive(Debug)] pub enum MyEnum<T> { V(T) }`,
		},
		{
			name: "braced body",
			input: `#f = "run", => {
fn #f() {}
}`,
			want: `fn run() {}`,
		},
		{
			name: "generated test name",
			input: `#name = concat!("test_add_", 1, "_", 2, "_eq_", 3), => {
#[test]
fn #name() {
    assert_eq!(add(1, 2), 3);
}
}`,
			want: "#[test]\nfn test_add_1_2_eq_3() {\n    assert_eq!(add(1, 2), 3);\n}",
		},
		{
			name:  "raw identifier",
			input: `#t = "r#type" => let #t = 1;`,
			want:  `let r#type = 1;`,
		},
		{
			name:  "hash before non-identifier",
			input: `#a = "x" => #![allow(dead_code)] # 1 #a`,
			want:  `#![allow(dead_code)] # 1 x`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, x := expandText(t, tt.input)
			if len(x.Diagnostics) > 0 {
				t.Fatalf("unexpected diagnostics: %v", x.Err())
			}

			if got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestExpand_AllPositions(t *testing.T) {
	input := `#derive = "derive",
#derive = "derive",
#debug = "Debug",
#peq = "PartialEq",
#eq = "Eq",
#enumm = "MyEnum",
#variant = "MyVariant",
#variant2 = "MyVariant2",
#generic = "T",
#name = "add",
#std = "std",
#ops = "ops",
#add = "Add",
#output = "Output",
#arg = "arg",
#var = "n",
#left = "left",
#right = "right"
=>
#[#derive(#debug,#peq,#eq)]
pub enum #enumm<#generic> {
    #variant,
    #variant2(#generic),
}

impl<#generic> #enumm<#generic> {
    fn #name(self, #arg: #enumm<#generic>) -> Self
        where #generic: #std::#ops::#add<#generic, #output = #generic>
    {
        use #enumm::*;
        match (self, #arg) {
            (#variant, #variant) => #variant,
            (#variant, #variant2(#var)) => #variant2(#var),
            (#variant2(#var), #variant) => #variant2(#var),
            (#variant2(#left), #variant2(#right)) => #variant2(#left + #right),
        }
    }
}`

	want := `#[derive(Debug,PartialEq,Eq)]
pub enum MyEnum<T> {
    MyVariant,
    MyVariant2(T),
}

impl<T> MyEnum<T> {
    fn add(self, arg: MyEnum<T>) -> Self
        where T: std::ops::Add<T, Output = T>
    {
        use MyEnum::*;
        match (self, arg) {
            (MyVariant, MyVariant) => MyVariant,
            (MyVariant, MyVariant2(n)) => MyVariant2(n),
            (MyVariant2(n), MyVariant) => MyVariant2(n),
            (MyVariant2(left), MyVariant2(right)) => MyVariant2(left + right),
        }
    }
}`

	got, x := expandText(t, input)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	if len(x.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %v", len(x.Diagnostics), x.Err())
	}

	d := x.Diagnostics[0]
	if d.Kind != Redefinition {
		t.Errorf("expected %v, got %v", Redefinition, d.Kind)
	}

	if d.Span.Start.Line != 2 {
		t.Errorf("expected diagnostic on line 2, got %s", d.Span)
	}

	if !strings.Contains(d.Hint, "test.rs:1:1") {
		t.Errorf("expected hint to locate the first declaration, got %q", d.Hint)
	}
}

func TestExpand_Undefined(t *testing.T) {
	got, x := expandText(t, `#a = "x" => fn #b() {}`)

	if got != "fn () {}" {
		t.Errorf("expected the reference to be dropped, got %q", got)
	}

	if len(x.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(x.Diagnostics))
	}

	d := x.Diagnostics[0]

	if d.Kind != Undefined {
		t.Errorf("expected %v, got %v", Undefined, d.Kind)
	}

	if d.Span.Start.Column != 16 || d.Span.End.Column != 18 {
		t.Errorf("expected span over #b, got %s", d.Span.Range())
	}

	if !strings.Contains(d.Message, "`#b`") {
		t.Errorf("expected message to name #b, got %q", d.Message)
	}

	if !strings.Contains(d.Hint, "`#b = None`") {
		t.Errorf("expected hint to suggest #b = None, got %q", d.Hint)
	}

	if strings.Contains(d.Message, "did you mean") {
		t.Errorf("unexpected suggestion in %q", d.Message)
	}
}

func TestExpand_UndefinedAccumulates(t *testing.T) {
	_, x := expandText(t, `#name = "x" => #nme #names (#other)`)

	if len(x.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d: %v", len(x.Diagnostics), x.Err())
	}

	wantSuggest := []string{"`#name`", "`#name`", ""}
	for i, d := range x.Diagnostics {
		switch want := wantSuggest[i]; {
		case want == "" && strings.Contains(d.Message, "did you mean"):
			t.Errorf("diagnostic %d: unexpected suggestion in %q", i, d.Message)
		case want != "" && !strings.Contains(d.Message, "did you mean "+want):
			t.Errorf("diagnostic %d: expected suggestion %s in %q", i, want, d.Message)
		}
	}
}

func TestExpand_Invalid(t *testing.T) {
	got, x := expandText(t, `#a = "1bad" => fn #a() {}`)

	if got != "" || len(x.Body) != 0 {
		t.Errorf("expected body to be suppressed, got %q", got)
	}

	if len(x.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(x.Diagnostics))
	}

	d := x.Diagnostics[0]
	if d.Kind != Invalid {
		t.Errorf("expected %v, got %v", Invalid, d.Kind)
	}

	if d.Message != `invalid identifier: "1bad"` {
		t.Errorf("unexpected message %q", d.Message)
	}

	if d.Span.Start.Column != 1 || d.Span.End.Column != 12 {
		t.Errorf("expected span over the declaration, got %s", d.Span.Range())
	}
}

func TestExpand_InvalidSuppressesUndefined(t *testing.T) {
	_, x := expandText(t, `#a = "a b", #c = "ok" => #a #undefined`)

	if len(x.Diagnostics) != 1 || x.Diagnostics[0].Kind != Invalid {
		t.Fatalf("expected a single invalid identifier diagnostic, got %v", x.Err())
	}
}

func TestExpand_Grammar(t *testing.T) {
	tests := []struct {
		name    string
		grammar token.Grammar
		value   string
		valid   bool
	}{
		{"rust keyword", token.Rust, "fn", false},
		{"rust raw keyword", token.Rust, "r#fn", true},
		{"rust underscore", token.Rust, "_", false},
		{"go accepts fn", token.Go, "fn", true},
		{"go keyword", token.Go, "func", false},
		{"go raw form", token.Go, "r#fn", false},
		{"empty", token.Rust, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, x := expandText(t, `#a = "`+tt.value+`" => #a`, WithGrammar(tt.grammar))

			if valid := len(x.Diagnostics) == 0; valid != tt.valid {
				t.Errorf("expected valid=%v, got diagnostics %v", tt.valid, x.Err())
			}
		})
	}
}

func TestExpand_Redefinition(t *testing.T) {
	noFile := WithReadFile(func(string) ([]byte, error) { return nil, fs.ErrNotExist })

	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
		kinds []Kind
	}{
		{"value then value", `#a = "x", #a = "y" => #a`, nil, "x", []Kind{Redefinition}},
		{"absent then value", `#a = None, #a = "y" => #a`, nil, "#a", []Kind{Redefinition}},
		{"value then absent", `#a = "x", #a = None => #a`, nil, "x", []Kind{Redefinition}},
		{
			"invalid repeat", `#a = "x", #a = "1bad" => fn #a() {}`, nil,
			"", []Kind{Redefinition, Invalid},
		},
		{
			"unset env repeat", `#a = "x", #a = env!("IDENTSTR_TEST_UNSET") => #a`,
			[]Option{WithEnv(nil)}, "", []Kind{Redefinition, Unresolvable},
		},
		{
			"unreadable include repeat", `#a = "x", #a = include_str!("missing.txt") => #a`,
			[]Option{noFile}, "", []Kind{Redefinition, Unresolvable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, x := expandText(t, tt.input, tt.opts...)
			if got != tt.want {
				t.Errorf("got body %q, want %q", got, tt.want)
			}

			if len(x.Diagnostics) != len(tt.kinds) {
				t.Fatalf("expected %d diagnostic(s), got %v", len(tt.kinds), x.Err())
			}

			for i, kind := range tt.kinds {
				if x.Diagnostics[i].Kind != kind {
					t.Errorf("diagnostic %d: expected %v, got %v", i, kind, x.Diagnostics[i].Kind)
				}
			}

			d := x.Diagnostics[0]
			if d.Message != "redefinition of `#a`" {
				t.Errorf("unexpected message %q", d.Message)
			}

			if d.Related.Start.Column != 1 {
				t.Errorf("expected related span at the first declaration, got %s", d.Related)
			}

			if b := x.Bindings["a"]; b.Decl == nil || b.Decl.Span.Start.Column != 1 {
				t.Errorf("expected the first declaration to stay bound, got %+v", b)
			}
		})
	}
}

func TestExpand_Malformed(t *testing.T) {
	x := Expand(context.Background(), mustLex(t, `#a "x" => #a`))

	if x.Invocation != nil || len(x.Body) != 0 {
		t.Errorf("expected no invocation and empty body")
	}

	if len(x.Diagnostics) != 1 || x.Diagnostics[0].Kind != Malformed {
		t.Fatalf("expected one malformed diagnostic, got %v", x.Err())
	}
}

func TestExpand_Unresolvable(t *testing.T) {
	_, x := expandText(t, `#a = env!("IDENTSTR_TEST_UNSET"), #b = "ok" => #a #b #c`,
		WithEnv(nil))

	if len(x.Body) != 0 {
		t.Errorf("expected body to be suppressed")
	}

	if len(x.Diagnostics) != 1 || x.Diagnostics[0].Kind != Unresolvable {
		t.Fatalf("expected one unresolvable diagnostic, got %v", x.Err())
	}
}

func TestExpansion_Tokens(t *testing.T) {
	x := Expand(context.Background(), mustLex(t, `#a = "x" => f(#a, #b)`))

	got := x.Tokens().String()
	want := `f (x ,) :: core :: compile_error ! { "unknown placeholder ` + "`#b`" +
		`; if you intended to literally use ` + "`#b`" + `, add ` + "`#b = None`" +
		` to the declarations" }`

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	errTokens := x.Tokens()[len(x.Body):]
	for _, tree := range errTokens {
		if token.SpanOf(tree) != x.Diagnostics[0].Span {
			t.Errorf("compile_error token %s does not carry the diagnostic span",
				token.TreeString(tree))
		}
	}
}

func TestDiagnostics_Err(t *testing.T) {
	if err := (Diagnostics{}).Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}

	_, x := expandText(t, `#a = "x" => #b #c`)

	err := x.Err()
	if err == nil {
		t.Fatal("expected error")
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per diagnostic, got %q", err.Error())
	}

	if !strings.HasPrefix(lines[0], "test.rs:1:13: unknown placeholder `#b`") {
		t.Errorf("unexpected first line %q", lines[0])
	}

	var d *Diagnostic
	if !errors.As(err, &d) || d.Kind != Undefined {
		t.Errorf("expected errors.As to find the first diagnostic")
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`plain`, `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a\\b", `"a\\b"`},
		{"line\nbreak\t", `"line\nbreak\t"`},
		{"bell\a", `"bell\x07"`},
		{"é", `"é"`},
	}

	for _, tt := range tests {
		if got := quote(tt.input); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
