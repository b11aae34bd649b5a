package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/identstr/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads a YAML mapping of
// flag names to values.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The YAML document is converted as follows:
//   - Nested mappings are flattened, joining keys with '-', so that
//     "log: {level: debug}" configures --log-level
//   - Keys may use '_' in place of '-'
//   - Keys prefixed with a command name, such as "expand-compile-errors",
//     apply only to that command's flags
//   - Numbers are passed to kong as strings
//
// Example config file:
//
//	grammar: rust
//	include-dir: [include, vendor/include]
//	log:
//	  level: debug
//	  format: text
//
// Command-line flags override config file values. A file that is not valid
// YAML is ignored with a warning.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		if err := yaml.NewDecoder(r).DecodeContext(ctx, &doc); err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignored invalid configuration",
					slog.Any("error", err))
			}

			return config{}, nil
		}

		c := make(config)
		c.flatten("", doc)

		return c, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	names := []string{flag.Name}

	if parent != nil && parent.Command != nil {
		names = append([]string{parent.Command.Name + "-" + flag.Name}, names...)
	}

	for _, name := range names {
		if value, ok := c[name]; ok {
			return value, nil
		}
	}

	return nil, nil
}

// flatten stores each value of m under its key path, normalized to use '-'.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		name := prefix + strings.ReplaceAll(key, "_", "-")

		switch v := value.(type) {
		case map[string]any:
			c.flatten(name+"-", v)
		default:
			c[name] = scalar(v)
		}
	}
}

// scalar converts numbers to the strings kong parses flag values from.
func scalar(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = scalar(x)
		}

		return out
	default:
		return v
	}
}
