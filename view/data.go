package view

import (
	"strings"

	"github.com/soyart/quill/blog"
)

// Data is passed to every view. It is built once per build
// and specialized per rendered page by value copy.
//
// Empty PreviousPage or NextPage means there is no such page.
type Data struct {
	Config             map[string]any
	BlogPosts          []*blog.Post
	PaginatedBlogPosts []*blog.Post
	PreviousPage       string
	NextPage           string
	CurrentViewPath    string
	CurrentURLPath     string

	// Page is the front matter of the markup page being rendered
	Page map[string]any
	// Sections are named sections given to a markup page layout
	Sections map[string]any
}

// ForPage returns a copy of d for view id rendered at urlPath.
func (d Data) ForPage(id, urlPath string) Data {
	d.CurrentViewPath = id
	d.CurrentURLPath = urlPath
	d.Page = nil
	d.Sections = nil
	return d
}

// WithPagination returns a copy of d showing page posts and links.
func (d Data) WithPagination(posts []*blog.Post, previous, next string) Data {
	d.PaginatedBlogPosts = posts
	d.PreviousPage = previous
	d.NextPage = next
	return d
}

// WithMarkup returns a copy of d for a markup page with front matter fields,
// where body is given to the section named yields.
func (d Data) WithMarkup(fields map[string]any, yields string, body any) Data {
	d.Page = fields
	d.Sections = make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if strings.HasPrefix(k, keyPrefix) {
			continue
		}
		d.Sections[k] = v
	}
	d.Sections[yields] = body
	return d
}
