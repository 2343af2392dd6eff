package quill

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestIgnore(t *testing.T) {
	type testCase struct {
		path     string
		ignores  []string
		expected bool
	}

	tests := []testCase{
		{
			ignores:  []string{"testignore"},
			path:     "testignore",
			expected: true,
		},
		{
			ignores:  []string{"testignore"},
			path:     "testignore/one",
			expected: true,
		},
		{
			ignores:  []string{"test*"},
			path:     "testignore/one",
			expected: true,
		},
		{
			ignores:  []string{"testignore", "!testignore/important/"},
			path:     "testignore/important/data",
			expected: false,
		},
	}

	for i := range tests {
		tc := &tests[i]
		path := filepath.Join(t.TempDir(), IgnoreFile)
		err := os.WriteFile(path, []byte(strings.Join(tc.ignores, "\n")), 0o644)
		require.NoError(t, err)

		ignores, err := ParseIgnore(path)
		require.NoError(t, err)
		if actual := ignores.Ignore(tc.path); actual != tc.expected {
			t.Fatalf("[case %d] unexpected ignore result for %s: expected %v, got %v", i, tc.path, tc.expected, actual)
		}
	}

	ignores, err := ParseIgnore(filepath.Join(t.TempDir(), IgnoreFile))
	require.NoError(t, err)
	require.False(t, ignores.Ignore("anything"))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		IgnoreFile:                  "drafts\n*.bak\n",
		"index.tmpl":                "home",
		"about.md":                  "# About",
		"css/style.css":             "a{}",
		"notes.bak":                 "old",
		"drafts/wip.md":             "wip",
		".hidden/secret.txt":        "x",
		".env":                      "x",
		"_includes/header.tmpl":     "header",
		"_blog/2024-01-01-first.md": "first",
		"_blog/series/part-one.md":  "part one",
	})

	ignores, err := ParseIgnore(filepath.Join(root, IgnoreFile))
	require.NoError(t, err)

	files, err := Discover(root, ignores)
	require.NoError(t, err)

	rels := make([]string, len(files))
	byRel := make(map[string]SourceFile)
	for i := range files {
		rels[i] = files[i].Rel
		byRel[files[i].Rel] = files[i]
	}

	require.Equal(t, []string{
		"_blog/2024-01-01-first.md",
		"_blog/series/part-one.md",
		"about.md",
		"css/style.css",
		"index.tmpl",
	}, rels)

	require.True(t, byRel["_blog/series/part-one.md"].Blog)
	require.False(t, byRel["about.md"].Blog)
	require.Equal(t, KindMarkup, byRel["about.md"].Kind)
	require.Equal(t, KindTemplate, byRel["index.tmpl"].Kind)
	require.Equal(t, KindAsset, byRel["css/style.css"].Kind)
}
