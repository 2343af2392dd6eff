package markup

import (
	"bufio"
	"bytes"
)

const keyTitleFromH1 = "# " // The first h1 line is used as document title

// Heading returns the text of the first level-1 ATX heading in markdown.
// Lines inside fenced code blocks are skipped.
func Heading(markdown []byte) string {
	k := []byte(keyTitleFromH1)
	s := bufio.NewScanner(bytes.NewReader(markdown))

	var fence []byte // Opening fence of the current code block, if any
	for s.Scan() {
		line := bytes.TrimLeft(s.Bytes(), " ")
		if f := fenceOf(line); f != nil {
			switch {
			case fence == nil:
				fence = bytes.Clone(f)
			case f[0] == fence[0] && len(f) >= len(fence) && len(bytes.TrimSpace(line[len(f):])) == 0:
				fence = nil
			}
			continue
		}
		if fence != nil || !bytes.HasPrefix(line, k) {
			continue
		}

		title := bytes.TrimSpace(bytes.TrimPrefix(line, k))
		title = bytes.TrimRight(title, "#")
		return string(bytes.TrimSpace(title))
	}

	return ""
}

// fenceOf returns the run of 3 or more backticks or tildes starting line
func fenceOf(line []byte) []byte {
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return nil
	}

	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return nil
	}

	return line[:n]
}
