package lang

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/identstr/token"
)

// evalValue parses "#a = <value> => x" and evaluates the value.
func evalValue(t *testing.T, file, value string, ev *Evaluator) (string, error) {
	t.Helper()

	inv, err := Parse(mustLexFile(t, file, "#a = "+value+" => x"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return ev.Eval(context.Background(), inv.Decls[0].Value.Expr)
}

func TestEval_Forms(t *testing.T) {
	ev := &Evaluator{
		Getenv: func(name string) (string, bool) {
			if name == "CRATE" {
				return "demo", true
			}

			return "", false
		},
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"string", `"hello_world"`, "hello_world"},
		{"escapes", `"a\tb\n\\\"\'\0"`, "a\tb\n\\\"'\x00"},
		{"hex escape", `"\x41"`, "A"},
		{"unicode escape", `"caf\u{e9}"`, "café"},
		{"go unicode escape", `"caf\u00e9"`, "café"},
		{"line continuation", "\"a\\\n     b\"", "ab"},
		{"raw string", `r#"say "hi""#`, `say "hi"`},
		{"plain raw string", `r"a\b"`, `a\b`},
		{"go raw string", "`a\\b`", `a\b`},
		{"concat strings", `concat!("foo", "_a")`, "foo_a"},
		{"concat literals", `concat!("x", 1, -2, 3u8, 0x10, 1_000, 1.5, 2e3f64, 'c', true, false)`, "x1-23161000" + "1.52e3ctruefalse"},
		{"concat empty", `concat!()`, ""},
		{"nested", `concat!(stringify!(foo), concat!("_", "b"))`, "foo_b"},
		{"stringify", `stringify!(a + b::c(d, e))`, "a + b::c (d , e)"},
		{"env", `env!("CRATE")`, "demo"},
		{"env in concat", `concat!(env!("CRATE"), "_fn")`, "demo_fn"},
		{"qualified", `::std::concat!(core::stringify!(x), "y")`, "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalValue(t, "test.rs", tt.value, ev)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEval_Env(t *testing.T) {
	ev := &Evaluator{Getenv: func(string) (string, bool) { return "", false }}

	tests := []struct {
		name  string
		value string
		msg   string
	}{
		{"default message", `env!("MISSING")`, "environment variable `MISSING` not defined at compile time"},
		{"custom message", `env!("MISSING", "set MISSING first")`, "set MISSING first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evalValue(t, "test.rs", tt.value, ev)

			var d *Diagnostic
			if !errors.As(err, &d) {
				t.Fatalf("expected *Diagnostic, got %v", err)
			}

			if d.Kind != Unresolvable {
				t.Errorf("expected %v, got %v", Unresolvable, d.Kind)
			}

			if d.Message != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, d.Message)
			}
		})
	}
}

func TestEval_EnvDefault(t *testing.T) {
	t.Setenv("IDENTSTR_EVAL_TEST", "from_process")

	got, err := evalValue(t, "test.rs", `env!("IDENTSTR_EVAL_TEST")`, &Evaluator{})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "from_process" {
		t.Errorf("expected process environment value, got %q", got)
	}
}

func TestEval_IncludeSearchOrder(t *testing.T) {
	files := map[string]string{
		filepath.Join("src", "name.txt"):     "beside_source",
		filepath.Join("inc", "name.txt"):     "from_include_dir",
		filepath.Join("inc", "only_inc.txt"): "only_in_include_dir",
		"cwd.txt":                            "from_cwd",
		filepath.Join("src", "bad_utf8.txt"): "\xff\xfe",
	}

	var tried []string

	ev := &Evaluator{
		IncludeDirs: []string{"inc"},
		ReadFile: func(path string) ([]byte, error) {
			tried = append(tried, path)

			if strings.HasSuffix(path, "forbidden.txt") {
				return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
			}

			if s, ok := files[path]; ok {
				return []byte(s), nil
			}

			return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		},
	}

	file := filepath.Join("src", "lib.rs")

	tests := []struct {
		value string
		want  string
		tries int
	}{
		{`include_str!("name.txt")`, "beside_source", 1},
		{`include_str!("only_inc.txt")`, "only_in_include_dir", 2},
		{`include!("cwd.txt")`, "from_cwd", 3},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tried = nil

			got, err := evalValue(t, file, tt.value, ev)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			if len(tried) != tt.tries {
				t.Errorf("expected %d lookups, got %v", tt.tries, tried)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := evalValue(t, file, `include_str!("nope.txt")`, ev)

		var d *Diagnostic
		if !errors.As(err, &d) || d.Kind != Unresolvable {
			t.Fatalf("expected unresolvable diagnostic, got %v", err)
		}

		want := "couldn't read `nope.txt`: " + fs.ErrNotExist.Error()
		if d.Message != want {
			t.Errorf("expected %q, got %q", want, d.Message)
		}

		if d.Span.Start.Column != 19 {
			t.Errorf("expected diagnostic on the path argument, got %s", d.Span)
		}
	})

	t.Run("permission error is preferred", func(t *testing.T) {
		_, err := evalValue(t, file, `include_str!("forbidden.txt")`, ev)
		if err == nil || !strings.Contains(err.Error(), fs.ErrPermission.Error()) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := evalValue(t, file, `include_str!("bad_utf8.txt")`, ev)
		if err == nil || !strings.Contains(err.Error(), "wasn't a utf-8 file") {
			t.Errorf("expected utf-8 error, got %v", err)
		}
	})
}

func TestEval_IncludeFile(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "ident.txt"), []byte("from_disk"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	got, err := evalValue(t, filepath.Join(dir, "main.rs"),
		`concat!(include_str!("ident.txt"), "_x")`, &Evaluator{})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "from_disk_x" {
		t.Errorf("expected %q, got %q", "from_disk_x", got)
	}

	abs := filepath.Join(dir, "ident.txt")

	got, err = evalValue(t, "", `include_str!("`+filepath.ToSlash(abs)+`")`, &Evaluator{})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}

	if got != "from_disk" {
		t.Errorf("expected absolute include to read the file, got %q", got)
	}
}

func TestEval_Expand(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "name.txt"), []byte("included"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	src := `#a = include_str!("name.txt"), #b = env!("SUFFIX") => fn #a() {} fn #b() {}`

	x, err := ExpandString(context.Background(), filepath.Join(dir, "lib.rs"), src,
		WithEnv([]string{"SUFFIX=from_env", "MALFORMED"}))
	if err != nil {
		t.Fatalf("expand error: %v", err)
	}

	if err := x.Err(); err != nil {
		t.Fatalf("unexpected diagnostics: %v", err)
	}

	if got := x.Body.String(); got != "fn included () {} fn from_env () {}" {
		t.Errorf("unexpected body %q", got)
	}
}

func mustLexFile(t *testing.T, file, src string) token.Stream {
	t.Helper()

	s, err := token.Lex(file, src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}

	return s
}
