package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
)

// Notes are user text; raw HTML in them is not passed through.
var mdRenderer = goldmark.New()

func renderMarkdown(text string) (template.HTML, error) {
	var b strings.Builder
	if err := mdRenderer.Convert([]byte(text), &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

var jsonFormatter = html.New(html.Standalone(true), html.WithLineNumbers(true), html.TabWidth(2))

// highlightJSON renders a label document as a standalone HTML page.
func highlightJSON(data []byte) ([]byte, error) {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return nil, err
	}
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := jsonFormatter.Format(&buf, style, iterator); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
