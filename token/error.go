package token

import "log/slog"

// Error is a lexical error at a source location.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	Span Span
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if !e.Span.IsValid() {
		return e.Msg
	}

	return e.Span.String() + ": " + e.Msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Msg),
		slog.String("span", e.Span.String()),
	)
}

func errorf(span Span, msg string) *Error {
	return &Error{Span: span, Msg: msg}
}
