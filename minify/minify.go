// Package minify shrinks generated outputs by file extension.
package minify

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

const (
	mediaTypeHtml = "text/html"
	mediaTypeCss  = "text/css"
	mediaTypeJs   = "application/javascript"
	mediaTypeJson = "application/json"
)

var ErrNotSupported = errors.New("file extension not supported")

type Fn func(data []byte) ([]byte, error)

var m = minify.New()

func init() {
	m.AddFunc(mediaTypeHtml, html.Minify)
	m.AddFunc(mediaTypeCss, css.Minify)
	m.AddFunc(mediaTypeJs, js.Minify)
	m.AddFunc(mediaTypeJson, json.Minify)
}

func Html(doc []byte) ([]byte, error) { return run(mediaTypeHtml, doc) }
func Css(doc []byte) ([]byte, error)  { return run(mediaTypeCss, doc) }
func Js(doc []byte) ([]byte, error)   { return run(mediaTypeJs, doc) }
func Json(doc []byte) ([]byte, error) { return run(mediaTypeJson, doc) }

func ExtToFn(ext string) (Fn, error) {
	switch ext {
	case ".html":
		return Html, nil
	case ".css":
		return Css, nil
	case ".js":
		return Js, nil
	case ".json":
		return Json, nil
	}

	return nil, fmt.Errorf("'%s': %w", ext, ErrNotSupported)
}

// Hook returns an output hook that minifies files with extensions in exts.
// Outputs with other extensions are returned unchanged.
// With no exts, every supported extension is minified.
func Hook(exts ...string) func(path string, data []byte) ([]byte, error) {
	fns := make(map[string]Fn)
	if len(exts) == 0 {
		exts = []string{".html", ".css", ".js", ".json"}
	}
	for _, ext := range exts {
		fn, err := ExtToFn(ext)
		if err != nil {
			continue
		}
		fns[ext] = fn
	}

	return func(path string, data []byte) ([]byte, error) {
		ext := filepath.Ext(path)
		f, ok := fns[ext]
		if !ok {
			return data, nil
		}

		b, err := f(data)
		if err != nil {
			return nil, fmt.Errorf("error from minifier for '%s': %w", ext, err)
		}

		return b, nil
	}
}

func run(mediaType string, doc []byte) ([]byte, error) {
	min := bytes.NewBuffer(nil)
	err := m.Minify(mediaType, min, bytes.NewReader(doc))
	if err != nil {
		return nil, err
	}

	return min.Bytes(), nil
}
