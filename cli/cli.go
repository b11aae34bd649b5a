package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/identstr/cli/cmd"
	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/pkg"
	"github.com/ardnew/identstr/token"
)

// grammarFlag names the identifier grammar and validates it as kong parses
// the flag.
type grammarFlag string

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *grammarFlag) UnmarshalText(text []byte) error {
	if _, ok := token.GrammarByName(string(text)); !ok {
		return pkg.ErrInvalidGrammar.Wrapf("%q (want one of %s)",
			text, strings.Join(token.GrammarNames(), ", "))
	}

	*g = grammarFlag(strings.ToLower(string(text)))

	return nil
}

func (g grammarFlag) grammar() token.Grammar {
	gr, ok := token.GrammarByName(string(g))
	if !ok {
		return token.Rust
	}

	return gr
}

// CLI is the top-level command-line interface for identstr.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Grammar    grammarFlag      `default:"rust"                   help:"Identifier grammar placeholders must produce (${grammars})." short:"g"`
	IncludeDir []string         `help:"Directory searched by include! and include_str! (repeatable)." name:"include-dir" short:"I" type:"path"`
	Version    kong.VersionFlag `help:"Print version and exit."`

	Expand cmd.Expand `cmd:"" default:"withargs" help:"Expand invocations in source files (default)."`
	Check  cmd.Check  `cmd:""                    help:"Report diagnostics without writing output."`
	Tokens cmd.Tokens `cmd:""                    help:"Dump the token trees of a source file."`
	Repl   cmd.Repl   `cmd:""                    help:"Expand invocations interactively."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
}

// options returns the expansion options selected by the global flags.
func (c *CLI) options() []lang.Option {
	return []lang.Option{
		lang.WithGrammar(c.Grammar.grammar()),
		lang.WithIncludeDirs(includePath(c.IncludeDir, os.Getenv(envIncludePath))...),
	}
}

// Run executes the identstr CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, cmd.IO{}, args...)
}

// run is Run with the command streams given explicitly. Unset streams are
// the process streams.
func run(
	ctx context.Context,
	exit func(code int),
	stdio cmd.IO,
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Name + " " + pkg.Version(),
		"grammars":           strings.Join(token.GrammarNames(), ", "),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that parse errors are logged as requested
	// regardless of flag position.
	cli.Log.scan(args)

	options := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	}

	if stdio.Out != nil {
		options = append(options, kong.Writers(stdio.Out, errWriter(stdio)))
	}

	parser, err := kong.New(&cli, options...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, cli.options()...)
	ctx = cmd.WithIO(ctx, stdio)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

func errWriter(stdio cmd.IO) io.Writer {
	if stdio.Err != nil {
		return stdio.Err
	}

	return os.Stderr
}
