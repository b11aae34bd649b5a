package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/identstr/cli/render"
	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/pkg"
)

// Check reports the diagnostics of each source without writing any output.
type Check struct {
	Invocation bool   `help:"Treat each source as the input of a single invocation." short:"i"`
	Format     string `default:"text" enum:"text,json,yaml" help:"Report format (${enum})." short:"f"`
	Indent     int    `default:"2" help:"Indent width for JSON and YAML reports."`

	Sources []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source" optional:""`
}

// Report is one diagnostic in a structured check report.
type Report struct {
	File    string `json:"file"           yaml:"file"`
	Line    int    `json:"line"           yaml:"line"`
	Column  int    `json:"column"         yaml:"column"`
	Kind    string `json:"kind"           yaml:"kind"`
	Message string `json:"message"        yaml:"message"`
	Hint    string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := ioFrom(ctx)

	srcs, err := readSources(ctx, c.Sources)
	if err != nil {
		return err
	}

	opts := optionsFrom(ctx)
	printer := render.NewPrinter(stdio.Out)
	reports := make([]Report, 0)

	for _, src := range srcs {
		res, err := expandSource(ctx, src, c.Invocation, false, opts)
		if err != nil {
			return err
		}

		log.DebugContext(ctx, "checked source",
			slog.String("file", src.name),
			slog.Int("invocations", res.count),
			slog.Int("diagnostics", len(res.diags)))

		if c.Format == formatText {
			if len(res.diags) > 0 && len(reports) > 0 {
				_, _ = stdio.Out.Write([]byte("\n"))
			}

			if err := printer.Print(src.text, res.diags); err != nil {
				return pkg.ErrWriteOutput.Wrap(err)
			}
		}

		reports = append(reports, makeReports(src.name, res.diags)...)
	}

	if c.Format != formatText {
		if err := marshal(ctx, stdio.Out, c.Format, c.Indent, reports); err != nil {
			return err
		}
	}

	if len(reports) > 0 {
		return pkg.ErrDiagnostics.Wrapf("%d diagnostic(s)", len(reports))
	}

	return nil
}

func makeReports(file string, diags lang.Diagnostics) []Report {
	reports := make([]Report, 0, len(diags))

	for _, d := range diags {
		r := Report{
			File:    file,
			Line:    d.Span.Start.Line,
			Column:  d.Span.Start.Column,
			Kind:    d.Kind.String(),
			Message: d.Message,
			Hint:    d.Hint,
		}

		if d.Span.File != "" {
			r.File = d.Span.File
		}

		reports = append(reports, r)
	}

	return reports
}
