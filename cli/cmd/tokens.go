package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/token"
)

// Tokens dumps the token trees of a source.
type Tokens struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format (${enum})." short:"f"`
	Indent int    `default:"2" help:"Indent width, or 0 for compact output." short:"n"`

	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source" optional:""`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := readSources(ctx, []string{t.Source})
	if err != nil {
		return err
	}

	src := srcs[0]

	stream, err := token.Lex(src.name, src.text)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "lexed source",
		slog.String("file", src.name),
		slog.Int("trees", len(stream)))

	return marshal(ctx, ioFrom(ctx).Out, t.Format, t.Indent, token.Describe(stream))
}
