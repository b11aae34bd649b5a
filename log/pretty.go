package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette styles the parts of a pretty log record.
type palette struct {
	key, str, num, on, off, dur, time, null lipgloss.Style

	trace, debug, info, warn, error lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(c)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		on:   fg("2"),
		off:  fg("1"),
		dur:  fg("5"),
		time: fg("4"),
		null: fg("8"),

		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		error: fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes records for a human reader: "key=value" pairs on one
// line in text format, or one indented "key: value" line per field in JSON
// format. Strings are not quoted. Nested groups are flattened into dotted
// keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	pal    palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // resolved, with group prefixes applied
	prefix string
	json   bool
}

func newPrettyHandler(w io.Writer, f Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		pal:  newPalette(lipgloss.NewRenderer(w)),
		mu:   &sync.Mutex{},
		w:    w,
		json: f == FormatJSON,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.flatten(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, h.builtin(slog.Time(slog.TimeKey, r.Time)))
	}

	fields = append(fields, h.builtin(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields, h.builtin(
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line))))
		}
	}

	fields = append(fields, h.builtin(slog.String(slog.MessageKey, r.Message)))
	fields = append(fields, h.attrs...)

	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	fields = append(fields, h.flatten(h.prefix, attrs)...)

	var sb strings.Builder

	if h.json {
		sb.WriteString("{\n")
	}

	n := 0

	for _, a := range fields {
		if a.Key == "" {
			continue
		}

		switch {
		case h.json && n > 0:
			sb.WriteString(",\n  ")
		case h.json:
			sb.WriteString("  ")
		case n > 0:
			sb.WriteByte(' ')
		}

		sb.WriteString(h.pal.key.Render(a.Key))

		if h.json {
			sb.WriteString(": ")
		} else {
			sb.WriteByte('=')
		}

		sb.WriteString(h.value(a))

		n++
	}

	if h.json {
		sb.WriteString("\n}")
	}

	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, sb.String())

	return err
}

// builtin passes a built-in attribute through ReplaceAttr, remembering the
// level so that it keeps its color after being rendered as a string.
func (h *prettyHandler) builtin(a slog.Attr) slog.Attr {
	level, isLevel := a.Value.Any().(slog.Level)

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if isLevel && a.Key != "" {
		a.Value = slog.AnyValue(levelText{level, a.Value.String()})
	}

	return a
}

// levelText is a level whose text has already been chosen.
type levelText struct {
	level slog.Level
	text  string
}

func (h *prettyHandler) flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			sub := prefix
			if a.Key != "" {
				sub += a.Key + "."
			}

			out = append(out, h.flatten(sub, a.Value.Group())...)

			continue
		}

		if h.opts.ReplaceAttr != nil && a.Key != slog.TimeKey && a.Key != slog.LevelKey {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key == "" {
			continue
		}

		a.Key = prefix + a.Key
		out = append(out, a)
	}

	return out
}

func (h *prettyHandler) value(a slog.Attr) string {
	v := a.Value
	p := h.pal

	switch v.Kind() {
	case slog.KindString:
		if a.Key == slog.TimeKey {
			return p.time.Render(v.String())
		}

		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.on.Render("true")
		}

		return p.off.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.time.Render(v.Time().Format(DefaultTimeLayout))

	case slog.KindAny:
		switch x := v.Any().(type) {
		case levelText:
			return p.level(x.level).Render(x.text)
		case slog.Level:
			return p.level(x).Render(strings.ToUpper(Level(x).String()))
		case nil:
			return p.null.Render("null")
		case error:
			return p.off.Render(x.Error())
		default:
			return p.str.Render(fmt.Sprint(x))
		}

	default:
		return p.str.Render(v.String())
	}
}
