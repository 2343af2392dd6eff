package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Goldmark converts with github.com/yuin/goldmark using GitHub Flavored Markdown.
type Goldmark struct{}

func (Goldmark) Name() string { return EngineGoldmark }

func (Goldmark) Convert(src []byte) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	out := new(bytes.Buffer)
	if err := md.Convert(Normalize(src), out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
