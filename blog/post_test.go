package blog

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soyart/quill/markup"
)

type capturer map[string]template.HTML

func (c capturer) Capture(_ string, _ string, _ any) (map[string]template.HTML, error) {
	return c, nil
}

func convert(doc markup.Document) ([]byte, error) {
	return markup.Gomarkdown{}.Convert(doc.Body)
}

func TestFromMarkup(t *testing.T) {
	x := &Extractor{
		DateFormat: "January 2, 2006",
		Convert:    convert,
	}

	src := Source{
		Rel:  "_blog/2024-03-05-hello.md",
		Name: "2024-03-05-hello",
		Path: "/hello-20240305",
	}

	post, err := x.FromMarkup(src, []byte(`---
title: Hello, World
date: "2024-03-05"
author: alice
excerpt: First post
---
# Ignored heading

Body text.
`))
	require.NoError(t, err)
	require.Equal(t, "/hello-20240305", post.Path)
	require.Equal(t, "Hello, World", post.Title)
	require.Equal(t, "March 5, 2024", post.Date)
	require.Equal(t, "First post", post.Excerpt)
	require.Equal(t, "alice", post.Get("author"))
	require.Equal(t, "March 5, 2024", post.Get(FieldDate))
	require.Equal(t, "/hello-20240305", post.Get(FieldPath))
}

func TestFromMarkupFallbacks(t *testing.T) {
	x := &Extractor{Convert: convert}

	t.Run("heading and first paragraph", func(t *testing.T) {
		post, err := x.FromMarkup(Source{
			Rel:  "_blog/2024-01-02-first.md",
			Name: "2024-01-02-first",
			Path: "/first-20240102",
		}, []byte("# The First\n\nSome *emphasized* words.\n\nSecond paragraph.\n"))
		require.NoError(t, err)
		require.Equal(t, "The First", post.Title)
		require.Equal(t, "2024-01-02", post.Date)
		require.Equal(t, "Some emphasized words.", post.Excerpt)
	})

	t.Run("slug words", func(t *testing.T) {
		post, err := x.FromMarkup(Source{
			Rel:  "_blog/2024-01-02-going-places.md",
			Name: "2024-01-02-going-places",
			Path: "/going-places-20240102",
		}, []byte("Just text.\n"))
		require.NoError(t, err)
		require.Equal(t, "Going Places", post.Title)
		require.Equal(t, "Just text.", post.Excerpt)
	})
}

func TestFromMarkupBadDate(t *testing.T) {
	x := &Extractor{DateFormat: "2006"}
	_, err := x.FromMarkup(Source{Rel: "_blog/2024-01-02-x.md", Name: "2024-01-02-x"}, []byte("---\ndate: someday\n---\n"))
	require.ErrorContains(t, err, "_blog/2024-01-02-x.md")

	x.DateFormat = ""
	post, err := x.FromMarkup(Source{Rel: "_blog/2024-01-02-x.md", Name: "2024-01-02-x"}, []byte("---\ndate: someday\n---\n"))
	require.NoError(t, err)
	require.Equal(t, "someday", post.Date)
}

func TestFromTemplate(t *testing.T) {
	x := &Extractor{
		DateFormat: "02/01/2006",
		Views: capturer{
			"title": "Captured",
			"date":  "2024-03-05",
			"tags":  "<b>go</b>",
		},
	}

	post, err := x.FromTemplate(Source{
		Rel:  "_blog/2024-03-05-captured.tmpl",
		Name: "2024-03-05-captured",
		Path: "/captured-20240305",
	}, "_blog/2024-03-05-captured", nil)
	require.NoError(t, err)
	require.Equal(t, "Captured", post.Title)
	require.Equal(t, "05/03/2024", post.Date)
	require.Equal(t, template.HTML("<b>go</b>"), post.Get("tags"))
	require.Equal(t, "/captured-20240305", post.Get(FieldPath))
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "", Excerpt([]byte("<h1>No paragraph</h1>")))
	require.Equal(t, "a b", Excerpt([]byte("<div><p>a\n  b</p><p>c</p></div>")))
}
