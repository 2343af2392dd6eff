package blog

import (
	"fmt"
	"html/template"
	"time"

	"github.com/soyart/quill/markup"
)

const (
	// CapturePrefix marks template sections that hold post metadata
	CapturePrefix = "post::"

	FieldTitle   = "title"
	FieldDate    = "date"
	FieldExcerpt = "excerpt"
	FieldPath    = "path"
)

// DateLayouts are tried in order when reading post dates.
var DateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Post is the metadata of one blog post, as seen by listing templates.
type Post struct {
	Path    string
	Source  string
	Title   string
	Date    string
	Time    time.Time
	Excerpt string

	// Fields holds every front matter or captured field,
	// with date already formatted and path attached.
	Fields map[string]any
}

// Get returns field key, or nil.
func (p *Post) Get(key string) any {
	return p.Fields[key]
}

// Source identifies the file a post is extracted from.
type Source struct {
	Rel  string // Path relative to the content root
	Name string // Base name without extension
	Path string // Public path of the rendered post
}

// Capturer executes the named sections of a view with the given prefix
// without rendering the view itself.
type Capturer interface {
	Capture(id string, prefix string, data any) (map[string]template.HTML, error)
}

// Extractor builds [Post] values from post sources.
type Extractor struct {
	// DateFormat is a Go time layout. If set, dates are parsed and reformatted.
	DateFormat string

	// Convert renders a markup document body to HTML. Used for derived excerpts.
	Convert func(doc markup.Document) ([]byte, error)

	Views Capturer
}

// FromMarkup extracts a post from a Markdown source with YAML front matter.
func (x *Extractor) FromMarkup(src Source, raw []byte) (*Post, error) {
	doc, err := markup.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: bad front matter: %w", src.Rel, err)
	}

	fields := doc.Fields
	if _, ok := fields[FieldTitle]; !ok {
		if h := markup.Heading(doc.Body); h != "" {
			fields[FieldTitle] = h
		}
	}
	if _, ok := fields[FieldExcerpt]; !ok && x.Convert != nil {
		html, err := x.Convert(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Rel, err)
		}
		if excerpt := Excerpt(html); excerpt != "" {
			fields[FieldExcerpt] = excerpt
		}
	}

	return x.post(src, fields)
}

// FromTemplate extracts a post from the sections of view id named with [CapturePrefix].
// The prefix is stripped from field names.
func (x *Extractor) FromTemplate(src Source, id string, data any) (*Post, error) {
	if x.Views == nil {
		return nil, fmt.Errorf("%s: no views to capture from", src.Rel)
	}

	sections, err := x.Views.Capture(id, CapturePrefix, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Rel, err)
	}

	fields := make(map[string]any, len(sections))
	for k, v := range sections {
		fields[k] = v
	}

	return x.post(src, fields)
}

func (x *Extractor) post(src Source, fields map[string]any) (*Post, error) {
	p := &Post{
		Path:   src.Path,
		Source: src.Rel,
		Fields: fields,
	}

	raw, ok := fields[FieldDate]
	if !ok || str(raw) == "" {
		if _, date, err := Slug(src.Name); err == nil {
			raw = date
		}
	}

	if raw != nil && str(raw) != "" {
		t, err := parseDate(raw)
		switch {
		case err != nil && x.DateFormat != "":
			return nil, fmt.Errorf("%s: %w", src.Rel, err)
		case err != nil:
			p.Date = str(raw)
		case x.DateFormat != "":
			p.Time, p.Date = t, t.Format(x.DateFormat)
		default:
			p.Time, p.Date = t, str(raw)
			if _, isTime := raw.(time.Time); isTime {
				p.Date = t.Format(DateLayout)
			}
		}

		fields[FieldDate] = p.Date
	}

	p.Title = str(fields[FieldTitle])
	if p.Title == "" {
		p.Title = TitleCase(src.Name)
		fields[FieldTitle] = p.Title
	}

	p.Excerpt = str(fields[FieldExcerpt])
	fields[FieldPath] = p.Path

	return p, nil
}

func parseDate(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}

	s := str(v)
	for _, layout := range DateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date '%s'", s)
}

func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case template.HTML:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	return fmt.Sprint(v)
}
