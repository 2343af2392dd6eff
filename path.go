package quill

import (
	"path"
	"strings"

	"github.com/soyart/quill/blog"
)

const IndexFile = "index.html"

// Target is an output location relative to the output root.
type Target struct {
	Dir  string // Slash-separated, empty for the output root
	Name string
}

// Rel returns the slash-separated path of t under the output root.
func (t Target) Rel() string {
	return path.Join(t.Dir, t.Name)
}

// URL returns the public path of t. Index pages are served at their directory.
func (t Target) URL() string {
	if t.Name != IndexFile {
		return "/" + t.Rel()
	}
	if t.Dir == "" {
		return "/"
	}

	return "/" + t.Dir
}

// Resolve maps a source path relative to the content root to its pretty-URL target.
//
// Assets keep their name and directory. Pages named index are written
// to index.html in their directory, and any other page X is written
// to X/index.html.
func Resolve(rel string, kind Kind) Target {
	dir, name := path.Split(normalize(rel))
	dir = strings.Trim(dir, "/")
	if kind == KindAsset {
		return Target{Dir: dir, Name: name}
	}

	base := kind.Trim(name)
	if base == "index" {
		return Target{Dir: dir, Name: IndexFile}
	}

	return Target{Dir: path.Join(dir, base), Name: IndexFile}
}

// ResolvePost maps a file under the blog subtree to its target.
//
// Pages directly under the blog root are dated posts, written to <slug>/index.html.
// Everything else is resolved as with [Resolve], relative to the blog root.
func ResolvePost(rel string, kind Kind) (Target, error) {
	inner := strings.TrimPrefix(normalize(rel), DirBlog+"/")
	if kind == KindAsset || strings.Contains(inner, "/") {
		return Resolve(inner, kind), nil
	}

	slug, _, err := blog.Slug(kind.Trim(inner))
	if err != nil {
		return Target{}, err
	}

	return Target{Dir: slug, Name: IndexFile}, nil
}

func normalize(rel string) string {
	return strings.TrimPrefix(strings.ReplaceAll(rel, `\`, "/"), "./")
}
