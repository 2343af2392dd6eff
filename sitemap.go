package quill

import (
	"context"
	"os"
	"path"
	"strings"
	"time"
)

func (b *Builder) writeSitemap(ctx context.Context) error {
	if !b.site.Sitemap || b.site.BaseURL == "" {
		return nil
	}

	stat, err := os.Stat(b.paths.Content)
	if err != nil {
		return failure(FailureIO, b.paths.Content, err)
	}

	sm := Sitemap(b.site.BaseURL, stat.ModTime(), b.written.sorted())
	return b.writeOut(ctx, []OutputFile{{
		target:     Target{Name: SitemapFile},
		originator: SitemapFile,
		kind:       "sitemap",
		render: func() ([]byte, error) {
			return []byte(sm), nil
		},
	}})
}

// Sitemap returns a sitemap of the HTML files in written,
// which are slash-separated paths relative to the output root.
func Sitemap(baseURL string, date time.Time, written []string) string {
	dateStr := date.Format(time.DateOnly)
	baseURL = strings.TrimRight(baseURL, "/")

	sm := new(strings.Builder)
	sm.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset
xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
xsi:schemaLocation="http://www.sitemaps.org/schemas/sitemap/0.9
http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd"
xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)

	for _, target := range written {
		if path.Ext(target) != ".html" {
			continue
		}

		sm.WriteString("<url><loc>")
		sm.WriteString(baseURL + "/")

		/* There're 2 possibilities for this
		1. First is when the HTML is some/path/index.html
		<url><loc>https://example.com/some/path/</loc>...

		2. Then there is when the HTML is some/path/page.html
		<url><loc>https://example.com/some/path/page.html</loc>...
		*/

		switch dir := path.Dir(target); {
		case path.Base(target) != IndexFile:
			sm.WriteString(target)
		case dir != ".":
			sm.WriteString(dir + "/")
		}

		sm.WriteString("</loc><lastmod>")
		sm.WriteString(dateStr)
		sm.WriteString("</lastmod><priority>1.0</priority></url>\n")
	}

	sm.WriteString("</urlset>\n")
	return sm.String()
}
