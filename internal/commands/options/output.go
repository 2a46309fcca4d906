package options

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const (
	OutputPretty = "pretty"
	OutputJSON   = "json"
	OutputYAML   = "yaml"
)

type OutputOptions struct {
	Format string
	Out    io.Writer
}

func AddOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.PersistentFlags().StringVarP(&o.Format, "output", "o", OutputPretty,
		"Output format: pretty, json or yaml.")
}

func (o *OutputOptions) Validate() error {
	switch o.Format {
	case OutputPretty, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", o.Format)
}

func (o *OutputOptions) Writer() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return color.Output
}

// HandleError prints err as {"error": ...} in json mode and swallows it.
func (o *OutputOptions) HandleError(err error) error {
	if o.Format != OutputJSON || err == nil {
		return err
	}
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return merr
	}
	_, _ = fmt.Fprintln(o.Writer(), string(b))
	return nil
}
