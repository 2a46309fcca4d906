// Package printers renders unitctl results as coloured tables, JSON or YAML.
package printers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
)

type Printer struct {
	Format string
	Out    io.Writer
}

func New(format string, out io.Writer) *Printer {
	return &Printer{Format: format, Out: out}
}

// structured writes v as JSON or YAML. It reports false in pretty mode.
func (p *Printer) structured(v any) (bool, error) {
	switch p.Format {
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(p.Out, string(b))
		return true, err
	case FormatYAML:
		b, err := toYAML(v)
		if err != nil {
			return true, err
		}
		_, err = p.Out.Write(b)
		return true, err
	}
	return false, nil
}

// toYAML goes through JSON so the json tags decide field names and order.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
