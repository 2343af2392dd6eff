// Package view renders site templates with html/template.
//
// Every .tmpl file under the content root is a view, identified by its
// slash-separated path relative to the root without the extension.
// Views under [DirIncludes] are partials: they are parsed into every
// other view and can be used with {{template "_includes/name" .}}.
package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	Ext         = ".tmpl"
	DirIncludes = "_includes"

	keyPrefix = "view::"
	// KeyExtends names the layout view of a markup page
	KeyExtends = keyPrefix + "extends"
	// KeyYields names the layout section that receives a markup page body
	KeyYields = keyPrefix + "yields"
	// SectionDefault is the section used when KeyYields is absent
	SectionDefault = "content"
)

var ErrUnknownView = errors.New("unknown view")

// Error is a template error attributed to a view.
type Error struct {
	View string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("view %s: %s", e.View, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Engine holds all parsed views of a content root.
// It is safe for concurrent use once loaded.
type Engine struct {
	base    *template.Template // Partials only. Never executed, so it can always be cloned.
	sources map[string]string
	views   map[string]*template.Template
}

// ID returns the view id of rel, a path relative to the content root.
func ID(rel string) string {
	return strings.TrimSuffix(filepath.ToSlash(rel), Ext)
}

// IsInclude reports whether view id is a partial.
func IsInclude(id string) bool {
	return id == DirIncludes || strings.HasPrefix(id, DirIncludes+"/")
}

// Ignorer matches slash-separated paths relative to the content root
// that are excluded from the site.
type Ignorer interface {
	Ignore(rel string) bool
}

// Load parses every view under root not matched by ignores,
// with funcs available to all of them. ignores may be nil.
func Load(root string, funcs template.FuncMap, ignores Ignorer) (*Engine, error) {
	sources, err := collect(root, ignores)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	base := template.New("").Funcs(funcs)
	for _, id := range ids {
		if !IsInclude(id) {
			continue
		}
		if _, err := base.New(id).Parse(sources[id]); err != nil {
			return nil, &Error{View: id, Err: err}
		}
	}

	e := &Engine{
		base:    base,
		sources: sources,
		views:   make(map[string]*template.Template, len(ids)),
	}

	for _, id := range ids {
		t, err := e.clone(id)
		if err != nil {
			return nil, err
		}

		e.views[id] = t
	}

	return e, nil
}

// Exists reports whether view id was loaded.
func (e *Engine) Exists(id string) bool {
	_, ok := e.views[id]
	return ok
}

// Render executes view id with data.
func (e *Engine) Render(id string, data any) ([]byte, error) {
	t, ok := e.views[id]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownView, id)
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, id, data); err != nil {
		return nil, &Error{View: id, Err: err}
	}

	return buf.Bytes(), nil
}

// Capture executes every template defined in view id whose name starts
// with prefix, without executing the view itself. The returned keys
// have prefix stripped, and values have surrounding space trimmed.
func (e *Engine) Capture(id string, prefix string, data any) (map[string]template.HTML, error) {
	t, ok := e.views[id]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownView, id)
	}

	captured := make(map[string]template.HTML)
	for _, tmpl := range t.Templates() {
		name := tmpl.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		buf := new(bytes.Buffer)
		if err := t.ExecuteTemplate(buf, name, data); err != nil {
			return nil, &Error{View: id, Err: err}
		}

		captured[strings.TrimPrefix(name, prefix)] = template.HTML(strings.TrimSpace(buf.String()))
	}

	return captured, nil
}

// RenderLayout executes layout with every key of data.Sections
// defined as a template of the same name, overriding blocks
// of the same name in the layout.
func (e *Engine) RenderLayout(layout string, data Data) ([]byte, error) {
	if !e.Exists(layout) {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownView, layout)
	}

	t, err := e.clone(layout)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(data.Sections))
	for name := range data.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, err := t.New(name).Parse(fmt.Sprintf(`{{index .Sections %q}}`, name))
		if err != nil {
			return nil, &Error{View: layout, Err: fmt.Errorf("bad section '%s': %w", name, err)}
		}
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, layout, data); err != nil {
		return nil, &Error{View: layout, Err: err}
	}

	return buf.Bytes(), nil
}

// clone returns a fresh template set of all partials plus view id
func (e *Engine) clone(id string) (*template.Template, error) {
	t, err := e.base.Clone()
	if err != nil {
		return nil, &Error{View: id, Err: err}
	}
	if IsInclude(id) {
		return t, nil
	}

	if _, err := t.New(id).Parse(e.sources[id]); err != nil {
		return nil, &Error{View: id, Err: err}
	}

	return t, nil
}

func collect(root string, ignores Ignorer) (map[string]string, error) {
	sources := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := d.Name()
		if path != root && strings.HasPrefix(base, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(base) != Ext {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if ignores != nil && ignores.Ignore(rel) {
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		sources[ID(rel)] = string(b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect views under '%s': %w", root, err)
	}

	return sources, nil
}
