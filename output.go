package quill

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

const permOutput fs.FileMode = 0o644

// OutputFile is an output to be rendered and written by the worker pool.
type OutputFile struct {
	target     Target
	originator string // Source path or logical name, for errors and logs
	kind       string
	perm       fs.FileMode
	render     func() ([]byte, error)
}

func (o OutputFile) Perm() fs.FileMode {
	if o.perm == 0 {
		return permOutput
	}
	return o.perm
}

type written struct {
	mut   sync.Mutex
	paths []string
}

func (w *written) add(rel string) {
	w.mut.Lock()
	defer w.mut.Unlock()
	w.paths = append(w.paths, rel)
}

func (w *written) sorted() []string {
	w.mut.Lock()
	defer w.mut.Unlock()
	out := make([]string, len(w.paths))
	copy(out, w.paths)
	sort.Strings(out)
	return out
}

// writeOut concurrently renders and writes outputs with at most
// b.options.workers in flight. The first error cancels the remaining outputs.
func (b *Builder) writeOut(ctx context.Context, outputs []OutputFile) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.workers)

	for i := range outputs {
		if ctx.Err() != nil {
			break
		}

		o := outputs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return b.write(o)
		})
	}

	return g.Wait()
}

func (b *Builder) write(o OutputFile) error {
	data, err := o.render()
	if err != nil {
		return err
	}

	rel := o.target.Rel()
	for i, hook := range b.options.hooks {
		data, err = hook(rel, data)
		if err != nil {
			return failure(FailureRender, o.originator, fmt.Errorf("hook %d failed on %s: %w", i, rel, err))
		}
	}

	path := filepath.Join(b.paths.Output, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return failure(FailureIO, path, err)
	}
	if err := os.WriteFile(path, data, o.Perm()); err != nil {
		return failure(FailureIO, path, err)
	}

	b.written.add(rel)
	b.recorder.IncFilesWritten(o.kind)
	b.logger.Debug("wrote output", "file", o.originator, "target", rel)

	return nil
}

// cleanDir removes everything inside dir, creating dir if missing.
func cleanDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for i := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entries[i].Name())); err != nil {
			return err
		}
	}

	return nil
}
