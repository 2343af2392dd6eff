package blog

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Excerpt returns the text of the first paragraph in an HTML fragment.
func Excerpt(fragment []byte) string {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return ""
	}

	p := findFirst(doc, atom.P)
	if p == nil {
		return ""
	}

	text := new(strings.Builder)
	collectText(p, text)
	return strings.Join(strings.Fields(text.String()), " ")
}

// TitleCase returns the title-cased words of a post name.
func TitleCase(name string) string {
	return cases.Title(language.English).String(Words(name))
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}

	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
