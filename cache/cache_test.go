package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("gomarkdown", []byte("title: A"), []byte("# A"))
	b := Key("gomarkdown", []byte("title: B"), []byte("# A"))
	c := Key("goldmark", []byte("title: A"), []byte("# A"))

	require.Equal(t, a, Key("gomarkdown", []byte("title: A"), []byte("# A")))
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
	require.NotContains(t, a, ":")
	require.NotContains(t, a, "/")
}

func TestLifecycle(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	src := time.Now().Add(-time.Hour)
	key := Key("gomarkdown", nil, []byte("# Hello"))

	valid, err := store.Valid(key, src)
	require.NoError(t, err)
	require.False(t, valid, "entry must not be valid before first build")

	calls := 0
	compile := func() ([]byte, error) {
		calls++
		return []byte("<h1>Hello</h1>"), nil
	}

	data, hit, err := store.Load(key, src, compile)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "<h1>Hello</h1>", string(data))

	valid, err = store.Valid(key, src)
	require.NoError(t, err)
	require.True(t, valid, "entry must be valid right after build")

	data, hit, err = store.Load(key, src, compile)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "<h1>Hello</h1>", string(data))
	require.Equal(t, 1, calls)

	stat, err := os.Stat(store.Path(key))
	require.NoError(t, err)

	touched := stat.ModTime().Add(time.Hour)
	valid, err = store.Valid(key, touched)
	require.NoError(t, err)
	require.False(t, valid, "entry must be invalid once source is newer")

	_, hit, err = store.Load(key, touched, compile)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 2, calls)
}

func TestLoadCompileError(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	errCompile := errors.New("bad markdown")
	_, _, err = store.Load("k", time.Now(), func() ([]byte, error) {
		return nil, errCompile
	})
	require.ErrorIs(t, err, errCompile)

	_, err = os.Stat(store.Path("k"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadConcurrent(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	src := time.Now().Add(-time.Hour)
	var mut sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, _, err := store.Load("same", src, func() ([]byte, error) {
				mut.Lock()
				calls++
				mut.Unlock()
				return []byte("<p>same</p>"), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "<p>same</p>", string(data))
		}()
	}
	wg.Wait()

	require.Equal(t, 1, calls)
}

func TestClear(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	src := time.Now().Add(-time.Hour)
	_, _, err = store.Load("k", src, func() ([]byte, error) { return []byte("x"), nil })
	require.NoError(t, err)

	require.NoError(t, store.Clear())

	valid, err := store.Valid("k", src)
	require.NoError(t, err)
	require.False(t, valid)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	src := time.Now().Add(-time.Hour)
	compile := func() ([]byte, error) { return []byte("x"), nil }

	store, err := Open(dir)
	require.NoError(t, err)
	for _, key := range []string{"old", "kept"} {
		_, _, err := store.Load(key, src, compile)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.123.tmp"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	// A later build only loads "kept", from the store entry
	store, err = Open(dir)
	require.NoError(t, err)
	_, hit, err := store.Load("kept", src, compile)
	require.NoError(t, err)
	require.True(t, hit)

	removed, err := store.Prune()
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	require.FileExists(t, store.Path("kept"))
	require.NoFileExists(t, store.Path("old"))
	require.NoFileExists(t, filepath.Join(dir, "kept.123.tmp"))
	require.FileExists(t, filepath.Join(dir, "notes.txt"))
}
