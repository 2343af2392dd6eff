// Package markup converts Markdown sources into HTML fragments.
package markup

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

const (
	EngineGomarkdown = "gomarkdown"
	EngineGoldmark   = "goldmark"
	EngineDefault    = EngineGomarkdown
)

// Converter turns Markdown text into an HTML fragment.
// Implementations must be safe for concurrent use.
type Converter interface {
	Name() string
	Convert(src []byte) ([]byte, error)
}

// New returns the converter registered under engine.
// An empty engine selects [EngineDefault].
func New(engine string) (Converter, error) {
	switch engine {
	case "", EngineGomarkdown:
		return Gomarkdown{}, nil
	case EngineGoldmark:
		return Goldmark{}, nil
	}

	return nil, fmt.Errorf("unknown markdown engine '%s'", engine)
}

// Normalize strips the indentation of the first non-blank line
// from every line of text. Leading blank lines are dropped.
//
// Only spaces count as indentation, and a line is never stripped
// of more leading spaces than it has.
func Normalize(text []byte) []byte {
	lines := make([]string, 0)
	s := bufio.NewScanner(bytes.NewReader(text))
	s.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for s.Scan() {
		lines = append(lines, s.Text())
	}

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil
	}

	lines = lines[start:]
	indent := len(lines[0]) - len(strings.TrimLeft(lines[0], " "))

	out := new(bytes.Buffer)
	for i, line := range lines {
		trim := len(line) - len(strings.TrimLeft(line, " "))
		if trim > indent {
			trim = indent
		}
		out.WriteString(line[trim:])
		if i < len(lines)-1 || bytes.HasSuffix(text, []byte{'\n'}) {
			out.WriteByte('\n')
		}
	}

	return out.Bytes()
}
