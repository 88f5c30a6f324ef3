package models

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderMarkdown converts assistant-generated markdown into HTML for the web interface. Fenced code
// blocks are syntax-highlighted.
func RenderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
