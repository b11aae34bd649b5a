package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/identstr/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger.Info("expansion finished", slog.Int("count", 2))

	// Output:
	// level=INFO msg="expansion finished" count=2
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("redefinition", slog.String("name", "#a"))

	// Output:
	// level=WARN msg=redefinition name=#a
}

func Example_trace() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.ParseLevel("trace")),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.TraceContext(context.Background(), "bind", slog.String("ident", "foo_a"))

	// Output:
	// {"level":"TRACE","msg":"bind","ident":"foo_a"}
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false)).
		With(slog.String("file", "lib.rs"))

	logger.Info("expanding")

	// Output:
	// level=INFO msg=expanding file=lib.rs
}
