package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/identstr/lang"
	"github.com/ardnew/identstr/log"
	"github.com/ardnew/identstr/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type optionsKey struct{}

// WithOptions returns a new context.Context carrying expansion options that
// every command applies, after its own.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// optionsFrom returns the stored options preceded by a logger option using
// the default logger.
func optionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return append([]lang.Option{lang.WithLogger(log.Default())}, opts...)
}

// IO holds the standard streams used by commands.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type ioKey struct{}

// WithIO returns a new context.Context with the given standard streams.
func WithIO(ctx context.Context, stdio IO) context.Context {
	return context.WithValue(ctx, ioKey{}, stdio)
}

// ioFrom returns the streams stored by WithIO, with the process streams in
// place of any that are unset.
func ioFrom(ctx context.Context) IO {
	stdio, _ := ctx.Value(ioKey{}).(IO)

	if stdio.In == nil {
		stdio.In = os.Stdin
	}

	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}

	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}

	return stdio
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName names standard input in diagnostics.
const stdinName = "<stdin>"

// source is the content of one input file.
type source struct {
	name string // as given on the command line, or stdinName
	path string // resolved path, empty for stdin
	text string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads each named file once, in order. Paths naming the same
// file through different links are read once. Every "-" is replaced by a
// single read of stdin, placed last.
func readSources(ctx context.Context, names []string) ([]source, error) {
	stdio := ioFrom(ctx)

	var (
		srcs     []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		src, dup, err := readUnique(name, seen)
		if err != nil {
			return nil, ErrOpenSource.With(slog.String("file", name)).Wrap(err)
		}

		if dup {
			log.DebugContext(ctx, "skipped duplicate source",
				slog.String("file", name))

			continue
		}

		srcs = append(srcs, src)
	}

	if hasStdin {
		data, err := io.ReadAll(stdio.In)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		srcs = append(srcs, source{name: stdinName, text: string(data)})
	}

	return srcs, nil
}

// readUnique reads the file at name unless a file with the same device and
// inode is already in seen.
func readUnique(name string, seen map[fileKey]struct{}) (source, bool, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return source{}, false, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, true, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return source{}, false, pkg.ErrReadInput.Wrap(err)
	}

	return source{name: name, path: resolved, text: string(data)}, false, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
