package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/identstr/cli/cmd"
	"github.com/ardnew/identstr/pkg"
)

func TestMain(m *testing.M) {
	// Keep configuration and history out of the real user directories.
	home, err := os.MkdirTemp("", "identstr-cli-test-*")
	if err != nil {
		panic(err)
	}

	os.Setenv("HOME", home)
	os.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	os.Unsetenv(envIncludePath)

	code := m.Run()

	os.RemoveAll(home)
	os.Exit(code)
}

// exitCode is raised by the exit function given to kong.
type exitCode int

// runCLI runs the CLI on args with stdin reading in, and returns its output
// streams, its error and the exit code requested by kong, or -1.
func runCLI(t *testing.T, in string, args ...string) (out, errs string, err error, code int) {
	t.Helper()

	var stdout, stderr strings.Builder

	code = -1

	func() {
		defer func() {
			if r := recover(); r != nil {
				c, ok := r.(exitCode)
				if !ok {
					panic(r)
				}

				code = int(c)
			}
		}()

		err = run(context.Background(), func(c int) { panic(exitCode(c)) },
			cmd.IO{In: strings.NewReader(in), Out: &stdout, Err: &stderr},
			append([]string{"--log-level=error"}, args...)...)
	}()

	return stdout.String(), stderr.String(), err, code
}

func TestRun_Expand(t *testing.T) {
	out, _, err, _ := runCLI(t, `#a = "x" => fn #a() {}`, "-i")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	if out != "fn x() {}\n" {
		t.Errorf("stdout = %q, want %q", out, "fn x() {}\n")
	}

	out, _, err, _ = runCLI(t, "s; ident_str!{ #t = \"T\" => struct #t; }\n", "expand")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	if out != "s; struct T;\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_Grammar(t *testing.T) {
	// "match" is a keyword in Rust but not in Go.
	const in = `#a = "match" => #a`

	if _, _, err, _ := runCLI(t, in, "-i"); !errors.Is(err, pkg.ErrDiagnostics) {
		t.Errorf("rust grammar: error = %v, want %v", err, pkg.ErrDiagnostics)
	}

	out, _, err, _ := runCLI(t, in, "--grammar=go", "-i")
	if err != nil || out != "match\n" {
		t.Errorf("go grammar: (%q, %v), want (%q, nil)", out, err, "match\n")
	}

	if _, _, err, _ := runCLI(t, in, "--grammar=cobol", "-i"); err == nil ||
		!strings.Contains(err.Error(), "invalid grammar") {
		t.Errorf("unknown grammar: error = %v, want invalid grammar", err)
	}
}

func TestRun_IncludeDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "name.txt"), []byte("from_file"), 0o600); err != nil {
		t.Fatal(err)
	}

	const in = `#a = include_str!("name.txt") => #a`

	out, _, err, _ := runCLI(t, in, "-I", dir, "-i")
	if err != nil || out != "from_file\n" {
		t.Errorf("flag: (%q, %v), want (%q, nil)", out, err, "from_file\n")
	}

	t.Setenv(envIncludePath, dir)

	out, _, err, _ = runCLI(t, in, "-i")
	if err != nil || out != "from_file\n" {
		t.Errorf("environment: (%q, %v), want (%q, nil)", out, err, "from_file\n")
	}
}

func TestRun_Version(t *testing.T) {
	out, _, _, code := runCLI(t, "", "--version")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if !strings.Contains(out, pkg.Version()) {
		t.Errorf("stdout = %q, want version %q", out, pkg.Version())
	}
}
