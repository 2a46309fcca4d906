package printers

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"unitview/internal/labels"
	"unitview/internal/session"
	"unitview/internal/tagindex"
)

var (
	bold    = color.New(color.Bold, color.Underline)
	faint   = color.New(color.Faint)
	current = color.New(color.FgHiGreen, color.Bold)
	noteCol = color.New(color.FgHiYellow, color.Italic)
	tagCol  = color.New(color.FgCyan)
)

type documentsOut struct {
	Documents []string `json:"documents"`
	Current   string   `json:"current,omitempty"`
}

func (p *Printer) Documents(docs []string, cur string) error {
	if docs == nil {
		docs = []string{}
	}
	if ok, err := p.structured(documentsOut{Documents: docs, Current: cur}); ok {
		return err
	}
	if len(docs) == 0 {
		_, err := faint.Fprintln(p.Out, "no label documents")
		return err
	}
	for _, d := range docs {
		if d == cur {
			_, _ = current.Fprintf(p.Out, "* %s\n", d)
			continue
		}
		_, _ = fmt.Fprintf(p.Out, "  %s\n", d)
	}
	return nil
}

type itemsOut struct {
	Query string   `json:"query"`
	Total int      `json:"total"`
	Items []string `json:"items"`
}

func (p *Printer) Items(query string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	if ok, err := p.structured(itemsOut{Query: query, Total: len(ids), Items: ids}); ok {
		return err
	}
	title := "All units"
	if query != "" {
		title = query
	}
	_, _ = bold.Fprint(p.Out, title)
	_, _ = faint.Fprintf(p.Out, " - %d\n", len(ids))
	for _, id := range ids {
		_, _ = fmt.Fprintln(p.Out, id)
	}
	return nil
}

func (p *Printer) Tags(tags []tagindex.TagSummary) error {
	if tags == nil {
		tags = []tagindex.TagSummary{}
	}
	if ok, err := p.structured(tags); ok {
		return err
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Tag"), bold.Sprint("Units"))
	for _, t := range tags {
		tbl.AddRow(tagCol.Sprint(t.Name), strconv.Itoa(t.Count))
	}
	_, err := fmt.Fprintln(p.Out, tbl)
	return err
}

func (p *Printer) Unit(v session.View) error {
	if ok, err := p.structured(v); ok {
		return err
	}
	_, _ = bold.Fprintln(p.Out, v.Label)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 80
	for _, tag := range labels.Tags(v.Entries) {
		tbl.AddRow(faint.Sprint("tag"), tagCol.Sprint(tag))
	}
	for _, n := range v.Notes {
		tbl.AddRow(faint.Sprintf("%%%d", n.Ordinal), noteCol.Sprint(n.Text))
	}
	if len(tbl.Rows) == 0 {
		_, err := faint.Fprintln(p.Out, " none")
		return err
	}
	_, err := fmt.Fprintln(p.Out, tbl)
	return err
}

type messageOut struct {
	Message string `json:"message"`
	Added   *int   `json:"added,omitempty"`
}

func (p *Printer) Message(msg string) error {
	if ok, err := p.structured(messageOut{Message: msg}); ok {
		return err
	}
	_, err := fmt.Fprintln(p.Out, msg)
	return err
}

func (p *Printer) Filled(doc string, added int) error {
	msg := fmt.Sprintf("%s: added %d units", doc, added)
	if ok, err := p.structured(messageOut{Message: msg, Added: &added}); ok {
		return err
	}
	_, err := fmt.Fprintln(p.Out, msg)
	return err
}
