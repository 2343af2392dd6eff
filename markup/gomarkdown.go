package markup

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	HtmlFlags  = html.CommonFlags
	Extensions = parser.CommonExtensions |
		parser.Mmark |
		parser.AutoHeadingIDs
)

// Gomarkdown converts with github.com/gomarkdown/markdown.
// Parsers and renderers are not reusable, so each call gets its own.
type Gomarkdown struct{}

func (Gomarkdown) Name() string { return EngineGomarkdown }

func (Gomarkdown) Convert(src []byte) ([]byte, error) {
	return ToHtml(Normalize(src)), nil
}

// ToHtml converts md (Markdown) into HTML fragment
func ToHtml(md []byte) []byte {
	root := markdown.Parse(md, parser.NewWithExtensions(Extensions))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: HtmlFlags,
	})
	return markdown.Render(root, renderer)
}
