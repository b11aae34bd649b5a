// Package log provides a small structured logger built on [log/slog].
//
// A [Logger] is an immutable value configured with functional options when
// it is made:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("expanded", slog.String("file", name), slog.Int("count", n))
//
// The logging methods accept only [slog.Attr] values, never alternating
// key-value arguments. Each level has a variant that takes a
// [context.Context]; the others use [DefaultContextProvider].
//
// [Logger.Wrap] derives a logger with a changed configuration and
// [Logger.With] one with extra attributes. The zero Logger discards all
// messages.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-token detail.
// [ParseLevel] accepts the lowercase or uppercase level names.
//
// # Pretty output
//
// With [WithPretty] (the default) records are styled for a terminal: strings
// are unquoted, values are colored by kind and levels by severity. Colors
// are omitted when the output is not a terminal.
//
// # Package-level logger
//
// The package-level functions ([Info], [Debug], ...) write with a default
// logger that writes to standard error. [Config] reconfigures it.
package log
