package view

import (
	"html/template"
	"strings"

	"github.com/soyart/quill/markup"
)

// Funcs returns the template functions available to all views.
//
//	url      joins a path to the site base URL
//	markdown converts inline Markdown to HTML
func Funcs(baseURL string, md markup.Converter) template.FuncMap {
	return template.FuncMap{
		"url": func(path string) string {
			return JoinURL(baseURL, path)
		},
		"markdown": func(text string) (template.HTML, error) {
			html, err := md.Convert([]byte(text))
			if err != nil {
				return "", err
			}
			return template.HTML(html), nil
		},
	}
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
