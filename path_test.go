package quill

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soyart/quill/blog"
)

func TestResolve(t *testing.T) {
	type testCase struct {
		rel  string
		kind Kind
		out  string
		url  string
	}

	tests := []testCase{
		{rel: "index.tmpl", kind: KindTemplate, out: "index.html", url: "/"},
		{rel: "about.tmpl", kind: KindTemplate, out: "about/index.html", url: "/about"},
		{rel: "docs/index.md", kind: KindMarkup, out: "docs/index.html", url: "/docs"},
		{rel: "docs/intro.md", kind: KindMarkup, out: "docs/intro/index.html", url: "/docs/intro"},
		{rel: `docs\intro.md`, kind: KindMarkup, out: "docs/intro/index.html", url: "/docs/intro"},
		{rel: "img/logo.png", kind: KindAsset, out: "img/logo.png", url: "/img/logo.png"},
		{rel: "robots.txt", kind: KindAsset, out: "robots.txt", url: "/robots.txt"},
		{rel: "notes.tmpl.bak", kind: KindAsset, out: "notes.tmpl.bak", url: "/notes.tmpl.bak"},
	}

	for i := range tests {
		tc := &tests[i]
		target := Resolve(tc.rel, tc.kind)
		if target.Rel() != tc.out {
			t.Fatalf("[case %d] unexpected output path for %s: expected %s, got %s", i, tc.rel, tc.out, target.Rel())
		}
		if target.URL() != tc.url {
			t.Fatalf("[case %d] unexpected url for %s: expected %s, got %s", i, tc.rel, tc.url, target.URL())
		}
	}
}

func TestResolvePost(t *testing.T) {
	type testCase struct {
		rel  string
		kind Kind
		out  string
		url  string
	}

	tests := []testCase{
		{rel: "_blog/2023-04-01-hello-world.md", kind: KindMarkup, out: "hello-world-20230401/index.html", url: "/hello-world-20230401"},
		{rel: "_blog/2023-04-01-hello-world.tmpl", kind: KindTemplate, out: "hello-world-20230401/index.html", url: "/hello-world-20230401"},
		{rel: "_blog/series/part-one.md", kind: KindMarkup, out: "series/part-one/index.html", url: "/series/part-one"},
		{rel: "_blog/series/index.tmpl", kind: KindTemplate, out: "series/index.html", url: "/series"},
		{rel: "_blog/cover.png", kind: KindAsset, out: "cover.png", url: "/cover.png"},
	}

	for i := range tests {
		tc := &tests[i]
		target, err := ResolvePost(tc.rel, tc.kind)
		require.NoError(t, err, "case %d", i)
		require.Equal(t, tc.out, target.Rel(), "case %d", i)
		require.Equal(t, tc.url, target.URL(), "case %d", i)
	}

	_, err := ResolvePost("_blog/hello.md", KindMarkup)
	require.ErrorIs(t, err, blog.ErrNotDated)
}

func TestKind(t *testing.T) {
	require.Equal(t, KindTemplate, KindOf("a/b.tmpl"))
	require.Equal(t, KindMarkup, KindOf("b.md"))
	require.Equal(t, KindAsset, KindOf("b.css"))
	require.Equal(t, "about", KindTemplate.Trim("about.tmpl"))
	require.Equal(t, "logo.png", KindAsset.Trim("logo.png"))

	f := SourceFile{Rel: "docs/intro.md", Kind: KindMarkup}
	require.Equal(t, "intro", f.Name())
	require.Equal(t, "docs/intro", f.ViewID())
}
