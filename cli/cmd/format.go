package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/identstr/pkg"
)

// Output formats of structured command output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// marshal writes v to w as JSON or YAML. A positive indent selects block
// layout with that many spaces per level; otherwise the output is compact
// (flow style for YAML).
func marshal(ctx context.Context, w io.Writer, format string, indent int, v any) error {
	switch format {
	case formatJSON:
		var (
			data []byte
			err  error
		)

		if indent > 0 {
			data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(v)
		}

		if err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}

	case formatYAML:
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, v, opts...)
		if err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(data); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q (want %s or %s)", format, formatJSON, formatYAML)
	}

	return nil
}
