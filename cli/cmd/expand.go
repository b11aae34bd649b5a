package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/identstr/cli/render"
	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/pkg"
	"github.com/ardnew/identstr/token"
)

// Expand replaces every invocation in each source with its expansion.
type Expand struct {
	Invocation    bool `help:"Treat each source as the input of a single invocation."       short:"i"`
	Write         bool `help:"Write each result back to its source file instead of stdout." short:"w"`
	CompileErrors bool `help:"Emit diagnostics as compile_error! invocations in the output." name:"compile-errors"`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := ioFrom(ctx)

	// Stdin cannot be rewritten; refuse before touching any file.
	if e.Write && slices.Contains(e.Sources, stdinSource) {
		return ErrNoRewrite
	}

	srcs, err := readSources(ctx, e.Sources)
	if err != nil {
		return err
	}

	opts := append(optionsFrom(ctx), lang.WithCompileErrors(e.CompileErrors))
	printer := render.NewPrinter(stdio.Err)
	total := 0

	for _, src := range srcs {
		res, err := expandSource(ctx, src, e.Invocation, e.CompileErrors, opts)
		if err != nil {
			return err
		}

		if len(res.diags) > 0 {
			total += len(res.diags)

			if err := printer.Print(src.text, res.diags); err != nil {
				return pkg.ErrWriteOutput.Wrap(err)
			}
		}

		switch {
		case e.Write && len(res.diags) > 0:
			log.WarnContext(ctx, "source not rewritten",
				slog.String("file", src.name),
				slog.Int("diagnostics", len(res.diags)))

		case e.Write:
			if err := rewrite(src, res.output); err != nil {
				return err
			}

		default:
			if _, err := io.WriteString(stdio.Out, res.output); err != nil {
				return pkg.ErrWriteOutput.Wrap(err)
			}
		}

		log.DebugContext(ctx, "expanded source",
			slog.String("file", src.name),
			slog.Int("invocations", res.count),
			slog.Int("skipped", res.skipped),
			slog.Int("diagnostics", len(res.diags)))
	}

	if total > 0 {
		return pkg.ErrDiagnostics.Wrapf("%d diagnostic(s)", total)
	}

	return nil
}

// result is the expansion of one source.
type result struct {
	output  string
	diags   lang.Diagnostics
	count   int
	skipped int
}

// expandSource expands src either as source text or, with invocation set, as
// the input of one invocation. With compileErrors set, the diagnostics of an
// invocation are appended to its output as compile_error! invocations.
func expandSource(
	ctx context.Context,
	src source,
	invocation, compileErrors bool,
	opts []lang.Option,
) (result, error) {
	if !invocation {
		out, err := lang.ExpandSource(ctx, src.name, src.text, opts...)
		if err != nil {
			return result{}, err
		}

		return result{
			output:  out.Output,
			diags:   out.Diagnostics,
			count:   out.Count,
			skipped: out.Skipped,
		}, nil
	}

	x, err := lang.ExpandString(ctx, src.name, src.text, opts...)
	if err != nil {
		return result{}, err
	}

	stream := x.Body
	if compileErrors {
		stream = x.Tokens()
	}

	output := token.Layout(stream, src.text)
	if output != "" {
		output += "\n"
	}

	return result{output: output, diags: x.Diagnostics, count: 1}, nil
}

// rewrite replaces the contents of the file src was read from, keeping its
// permissions. Unchanged files are not touched.
func rewrite(src source, output string) error {
	if output == src.text {
		return nil
	}

	info, err := os.Stat(src.path)
	if err != nil {
		return ErrWriteSource.With(slog.String("file", src.name)).Wrap(err)
	}

	if err := os.WriteFile(src.path, []byte(output), info.Mode().Perm()); err != nil {
		return ErrWriteSource.With(slog.String("file", src.name)).Wrap(err)
	}

	return nil
}
