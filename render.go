package quill

import (
	"fmt"
	"html/template"

	"github.com/soyart/quill/markup"
	"github.com/soyart/quill/view"
)

// handler renders one variant of source files.
type handler interface {
	target(f SourceFile) (Target, error)
	render(f SourceFile, data view.Data) ([]byte, error)
}

// handlerFor returns the handler for f, which is either an asset, a template page,
// a markup page, or a blog post of template or markup kind.
func (b *Builder) handlerFor(f SourceFile) handler {
	var h handler
	switch f.Kind {
	case KindTemplate:
		h = templateHandler{views: b.views}
	case KindMarkup:
		h = markupHandler{views: b.views, compile: b.compile}
	default:
		h = assetHandler{}
	}

	if f.Blog {
		return postHandler{handler: h}
	}

	return h
}

type assetHandler struct{}

func (assetHandler) target(f SourceFile) (Target, error) {
	return Resolve(f.Rel, KindAsset), nil
}

func (assetHandler) render(f SourceFile, _ view.Data) ([]byte, error) {
	data, err := f.Read()
	if err != nil {
		return nil, failure(FailureIO, f.Rel, err)
	}
	return data, nil
}

type templateHandler struct {
	views *view.Engine
}

func (templateHandler) target(f SourceFile) (Target, error) {
	return Resolve(f.Rel, KindTemplate), nil
}

func (h templateHandler) render(f SourceFile, data view.Data) ([]byte, error) {
	out, err := h.views.Render(f.ViewID(), data)
	if err != nil {
		return nil, failure(FailureRender, f.Rel, err)
	}
	return out, nil
}

type markupHandler struct {
	views   *view.Engine
	compile func(f SourceFile, doc markup.Document) ([]byte, error)
}

func (markupHandler) target(f SourceFile) (Target, error) {
	return Resolve(f.Rel, KindMarkup), nil
}

// render converts the body, then renders it inside the layout named
// by front matter key view::extends, if any.
func (h markupHandler) render(f SourceFile, data view.Data) ([]byte, error) {
	raw, err := f.Read()
	if err != nil {
		return nil, failure(FailureIO, f.Rel, err)
	}

	doc, err := markup.Parse(raw)
	if err != nil {
		return nil, failure(FailureRender, f.Rel, err)
	}

	body, err := h.compile(f, doc)
	if err != nil {
		return nil, failure(FailureRender, f.Rel, err)
	}

	layout := fieldString(doc.Fields, view.KeyExtends)
	if layout == "" {
		return body, nil
	}

	yields := fieldString(doc.Fields, view.KeyYields)
	if yields == "" {
		yields = view.SectionDefault
	}

	out, err := h.views.RenderLayout(layout, data.WithMarkup(doc.Fields, yields, template.HTML(body)))
	if err != nil {
		return nil, failure(FailureRender, f.Rel, err)
	}

	return out, nil
}

// postHandler renders blog files like their inner handler,
// but writes dated posts to slugged targets.
type postHandler struct {
	handler
}

func (postHandler) target(f SourceFile) (Target, error) {
	t, err := ResolvePost(f.Rel, f.Kind)
	if err != nil {
		return Target{}, failure(FailureNaming, f.Rel, err)
	}
	return t, nil
}

func fieldString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
