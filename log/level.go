package log

import (
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// String returns the lowercase name of the level. Levels between the named
// ones are written as an offset from the next lower name, e.g. "info+2".
func (l Level) String() string {
	if l < LevelDebug {
		if d := int(l - LevelTrace); d != 0 {
			return fmt.Sprintf("trace%+d", d)
		}

		return "trace"
	}

	return strings.ToLower(slog.Level(l).String())
}

// Levels returns an iterator over the names of all defined log levels.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range levels {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses a level name. Valid names are "trace", "debug", "info",
// "warn" and "error" in any case, optionally followed by "+" or "-" and an
// integer offset (see [slog.Level.UnmarshalText]). Unrecognized input yields
// [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	if len(s) >= len("trace") && strings.EqualFold(s[:len("trace")], "trace") {
		// slog does not know trace; parse the offset relative to debug.
		var l slog.Level
		if err := l.UnmarshalText([]byte("debug" + s[len("trace"):])); err != nil {
			return DefaultLevel
		}

		return Level(l) - LevelDebug + LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

var formats = []Format{FormatText, FormatJSON}

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range formats {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses a format name, "json" or "text". Unrecognized input
// yields [DefaultFormat].
func ParseFormat(s string) Format {
	for _, f := range formats {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f
		}
	}

	return DefaultFormat
}
