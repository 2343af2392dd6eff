package quill

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/soyart/quill/view"
)

// Kind classifies a source file by how it is rendered.
type Kind int

const (
	KindAsset Kind = iota
	KindTemplate
	KindMarkup
)

const (
	ExtTemplate = view.Ext
	ExtMarkup   = ".md"
)

// KindOf classifies a file name by extension.
func KindOf(name string) Kind {
	switch path.Ext(name) {
	case ExtTemplate:
		return KindTemplate
	case ExtMarkup:
		return KindMarkup
	}

	return KindAsset
}

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindMarkup:
		return "markup"
	}

	return "asset"
}

// Trim removes the kind's extension from name. Asset names are unchanged.
func (k Kind) Trim(name string) string {
	switch k {
	case KindTemplate:
		return strings.TrimSuffix(name, ExtTemplate)
	case KindMarkup:
		return strings.TrimSuffix(name, ExtMarkup)
	}

	return name
}

// SourceFile is a file discovered under the content root.
type SourceFile struct {
	Root    string
	Rel     string // Slash-separated path relative to Root
	Kind    Kind
	Blog    bool // Whether Rel is under DirBlog
	ModTime time.Time
	Mode    fs.FileMode
}

func (f SourceFile) Path() string {
	return filepath.Join(f.Root, filepath.FromSlash(f.Rel))
}

func (f SourceFile) Read() ([]byte, error) {
	return os.ReadFile(f.Path())
}

// Name returns the base name without the kind's extension.
func (f SourceFile) Name() string {
	return f.Kind.Trim(path.Base(f.Rel))
}

// ViewID returns the view id of a template, or the extension-less
// relative path of other kinds.
func (f SourceFile) ViewID() string {
	return f.Kind.Trim(f.Rel)
}

type Ignorer interface {
	Ignore(path string) bool
}

type ignoreNone struct{}

func (ignoreNone) Ignore(string) bool { return false }

type ignorerGitignore struct {
	*ignore.GitIgnore
}

func (i ignorerGitignore) Ignore(path string) bool {
	return i.MatchesPath(path)
}

// ParseIgnore parses a gitignore-style file.
// A missing file yields an Ignorer that ignores nothing.
func ParseIgnore(path string) (Ignorer, error) {
	ignores, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ignoreNone{}, nil
		}
		return nil, fmt.Errorf("failed to parse %s at %s: %w", IgnoreFile, path, err)
	}

	return ignorerGitignore{GitIgnore: ignores}, nil
}

// Discover walks root in lexical order, skipping the includes subtree,
// hidden files and directories, symlinks, and files matched by ignores.
func Discover(root string, ignores Ignorer) ([]SourceFile, error) {
	if ignores == nil {
		ignores = ignoreNone{}
	}

	var files []SourceFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		skip, err := shouldIgnore(ignores, rel, d)
		if skip || err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, SourceFile{
			Root:    root,
			Rel:     rel,
			Kind:    KindOf(rel),
			Blog:    firstSegment(rel) == DirBlog,
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content root '%s': %w", root, err)
	}

	return files, nil
}

func shouldIgnore(ignores Ignorer, rel string, d fs.DirEntry) (bool, error) {
	isDot := strings.HasPrefix(d.Name(), ".")
	isDir := d.IsDir()

	switch {
	case isDir && (isDot || rel == DirIncludes):
		return true, fs.SkipDir

	case isDot, isDir:
		return true, nil

	case d.Type()&fs.ModeSymlink != 0:
		return true, nil

	case ignores.Ignore(rel):
		return true, nil
	}

	return false, nil
}

func firstSegment(rel string) string {
	first, _, _ := strings.Cut(rel, "/")
	return first
}
