package lang

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/identstr/log"
)

// Evaluator reduces declaration values to strings. Its collaborators are
// injected so evaluation can be tested without touching the process
// environment or file system.
type Evaluator struct {
	// Getenv looks up an environment variable for env!.
	Getenv func(name string) (string, bool)

	// ReadFile reads a file for include! and include_str!.
	ReadFile func(path string) ([]byte, error)

	// IncludeDirs are searched, in order, for relative include paths that
	// are not found next to the invoking source file.
	IncludeDirs []string

	logger log.Logger
}

// Eval evaluates e to a string. Failures are returned as a *Diagnostic of
// kind Unresolvable attached to the failing sub-expression.
func (ev *Evaluator) Eval(ctx context.Context, e Expr) (string, error) {
	switch e := e.(type) {
	case *LitExpr:
		return e.Value, nil

	case *BoolExpr:
		return e.Ident.Name, nil

	case *ConcatExpr:
		var sb strings.Builder

		for _, arg := range e.Args {
			s, err := ev.Eval(ctx, arg)
			if err != nil {
				return "", err
			}

			sb.WriteString(s)
		}

		return sb.String(), nil

	case *StringifyExpr:
		return e.Tokens.String(), nil

	case *EnvExpr:
		return ev.evalEnv(ctx, e)

	case *IncludeExpr:
		return ev.evalInclude(ctx, e)

	default:
		return "", diagnose(Unrecognized, e.Span(), "expected string or None")
	}
}

func (ev *Evaluator) evalEnv(ctx context.Context, e *EnvExpr) (string, error) {
	name, err := ev.Eval(ctx, e.Name)
	if err != nil {
		return "", err
	}

	getenv := ev.Getenv
	if getenv == nil {
		getenv = defaultGetenv
	}

	value, ok := getenv(name)

	ev.logger.TraceContext(ctx, "env lookup",
		slog.String("name", name),
		slog.Bool("found", ok))

	if ok {
		return value, nil
	}

	msg := "environment variable `" + name + "` not defined at compile time"

	if e.Message != nil {
		custom, err := ev.Eval(ctx, e.Message)
		if err != nil {
			return "", err
		}

		msg = custom
	}

	return "", diagnose(Unresolvable, e.Span(), msg)
}

func (ev *Evaluator) evalInclude(ctx context.Context, e *IncludeExpr) (string, error) {
	path, err := ev.Eval(ctx, e.Path)
	if err != nil {
		return "", err
	}

	readFile := ev.ReadFile
	if readFile == nil {
		readFile = defaultReadFile
	}

	var first error

	for _, candidate := range ev.candidates(e.Span().File, path) {
		data, err := readFile(candidate)

		ev.logger.TraceContext(ctx, "include lookup",
			slog.String("path", candidate),
			slog.Bool("found", err == nil))

		if err == nil {
			if !utf8.Valid(data) {
				return "", diagnose(Unresolvable, e.Path.Span(),
					"`"+candidate+"` wasn't a utf-8 file")
			}

			return string(data), nil
		}

		if first == nil || !errors.Is(err, fs.ErrNotExist) {
			first = err
		}
	}

	return "", diagnose(Unresolvable, e.Path.Span(),
		"couldn't read `"+path+"`: "+errorText(first))
}

// candidates returns the paths tried for an include, in order: relative to
// the directory of the invoking file, each include directory, and the
// working directory. Pseudo-file names such as "<stdin>" have no directory.
func (ev *Evaluator) candidates(file, path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}

	var out []string

	if file != "" && file != "-" && !strings.HasPrefix(file, "<") {
		out = append(out, filepath.Join(filepath.Dir(file), path))
	}

	for _, dir := range ev.IncludeDirs {
		if dir != "" {
			out = append(out, filepath.Join(dir, path))
		}
	}

	return append(out, path)
}

func errorText(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}

	return err.Error()
}
