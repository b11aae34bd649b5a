package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/identstr/log"
)

const defaultEditor = "vi"

// editTemplate seeds the editor when there is nothing to edit yet.
const editTemplate = `#name = "example",
#getter = concat!("get_", "example")
=> fn #getter() -> &'static str { stringify!(#name) }
`

// editCommand implements [tea.ExecCommand]. It writes the text to a temp
// file, opens the user's editor on it and keeps the edited result, which is
// empty when the user cleared the file.
type editCommand struct {
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	text    string
	result  string
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run opens the editor and reads back the edited text.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	text := c.text
	if strings.TrimSpace(text) == "" {
		text = editTemplate
	}

	f, err := os.CreateTemp(os.TempDir(), "identstr-repl-*.rs")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	_, err = f.WriteString(text)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.result = strings.TrimSpace(string(data))

	c.logger.TraceContext(ctx, "editor closed",
		slog.String("path", path),
		slog.Int("length", len(c.result)))

	return nil
}

// editor returns the command line of the user's editor.
func editor() []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if f := strings.Fields(os.Getenv(name)); len(f) > 0 {
			return f
		}
	}

	return []string{defaultEditor}
}

// runEditor launches the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	argv := editor()

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
