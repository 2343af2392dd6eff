package markup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToHtml(t *testing.T) {
	type testCase struct {
		md   string
		html string
	}

	tests := []testCase{
		{
			md:   "",
			html: "",
		},
		{
			md:   "This is a paragraph",
			html: "<p>This is a paragraph</p>\n",
		},
		{
			md: `# Some h1
Some paragraph`,
			html: `<h1 id="some-h1">Some h1</h1>

<p>Some paragraph</p>
`,
		},
		{
			md: `# Some h1
Some paragraph

<p>Embedded HTML paragraph</p>

## Some h2`,
			html: `<h1 id="some-h1">Some h1</h1>

<p>Some paragraph</p>

<p>Embedded HTML paragraph</p>

<h2 id="some-h2">Some h2</h2>
`,
		},
	}

	for i := range tests {
		tc := &tests[i]
		out, err := Gomarkdown{}.Convert([]byte(tc.md))
		if err != nil {
			t.Fatalf("[case %d] unexpected error: %v", i, err)
		}
		if actual := string(out); actual != tc.html {
			t.Fatalf("[case %d] unexpected output\nexpected:\n%s\nactual:\n%s", i, tc.html, actual)
		}
	}
}

func TestGoldmark(t *testing.T) {
	out, err := Goldmark{}.Convert([]byte("# Title\n\nHello *world*\n"))
	require.NoError(t, err)
	require.Equal(t, "<h1 id=\"title\">Title</h1>\n<p>Hello <em>world</em></p>\n", string(out))
}

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	require.Equal(t, EngineGomarkdown, c.Name())

	c, err = New(EngineGoldmark)
	require.NoError(t, err)
	require.Equal(t, EngineGoldmark, c.Name())

	_, err = New("pandoc")
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty",
			text:     "",
			expected: "",
		},
		{
			name:     "no indentation",
			text:     "# Title\npara\n",
			expected: "# Title\npara\n",
		},
		{
			name:     "uniform indentation",
			text:     "    # Title\n    para\n",
			expected: "# Title\npara\n",
		},
		{
			name:     "leading blank lines and deeper lines",
			text:     "\n\n  a\n    b\n c\n",
			expected: "a\n  b\nc\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, string(Normalize([]byte(tc.text))))
		})
	}
}

func TestSplit(t *testing.T) {
	t.Run("front matter", func(t *testing.T) {
		fm, body, had, err := Split([]byte("---\ntitle: A\n---\nbody\n"))
		require.NoError(t, err)
		require.True(t, had)
		require.Equal(t, "title: A\n", string(fm))
		require.Equal(t, "body\n", string(body))
	})

	t.Run("crlf", func(t *testing.T) {
		fm, body, had, err := Split([]byte("---\r\ntitle: A\r\n---\r\nbody"))
		require.NoError(t, err)
		require.True(t, had)
		require.Equal(t, "title: A\r\n", string(fm))
		require.Equal(t, "body", string(body))
	})

	t.Run("no front matter", func(t *testing.T) {
		fm, body, had, err := Split([]byte("# Hello\n"))
		require.NoError(t, err)
		require.False(t, had)
		require.Nil(t, fm)
		require.Equal(t, "# Hello\n", string(body))
	})

	t.Run("missing closing delimiter", func(t *testing.T) {
		_, _, _, err := Split([]byte("---\ntitle: A\nbody\n"))
		require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	})
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Hello\ntags: [a, b]\n---\n# Body\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello", doc.Fields["title"])
	require.Equal(t, []any{"a", "b"}, doc.Fields["tags"])
	require.Equal(t, "# Body\n", string(doc.Body))

	doc, err = Parse([]byte("plain"))
	require.NoError(t, err)
	require.Empty(t, doc.Fields)
}

func TestHeading(t *testing.T) {
	type testCase struct {
		md       string
		expected string
	}

	tests := []testCase{
		{
			md:       "# Title\n\nbody",
			expected: "Title",
		},
		{
			md:       "intro\n## Sub\n# Closed title ##\n",
			expected: "Closed title",
		},
		{
			md:       "```sh\n# install deps\nmake\n```\n\n# Real title\n",
			expected: "Real title",
		},
		{
			md:       "~~~~\n# inside\n~~~\n# still inside\n~~~~\n# After tildes\n",
			expected: "After tildes",
		},
		{
			md:       "```\n# never closed\n",
			expected: "",
		},
		{
			md:       "no heading\n",
			expected: "",
		},
	}

	for i := range tests {
		tc := &tests[i]
		if actual := Heading([]byte(tc.md)); actual != tc.expected {
			t.Fatalf("[case %d] unexpected heading: expected '%s', got '%s'", i, tc.expected, actual)
		}
	}
}
