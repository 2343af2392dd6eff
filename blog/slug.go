// Package blog extracts, orders and paginates blog post metadata.
package blog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DateLayout = time.DateOnly

var (
	// ErrNotDated is returned for top-level posts
	// whose names are not prefixed with YYYY-MM-DD-
	ErrNotDated = errors.New("blog post name must be prefixed with YYYY-MM-DD-")

	datedName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)
)

// Slug turns "YYYY-MM-DD-title-words" into "title-words-YYYYMMDD"
// and returns the date parsed from the prefix.
func Slug(name string) (string, time.Time, error) {
	m := datedName.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, fmt.Errorf("'%s': %w", name, ErrNotDated)
	}

	date, err := time.Parse(DateLayout, m[1])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("'%s': bad date %s: %w", name, m[1], ErrNotDated)
	}

	return m[2] + "-" + strings.ReplaceAll(m[1], "-", ""), date, nil
}

// Words returns the title part of name with separators replaced by spaces.
func Words(name string) string {
	if m := datedName.FindStringSubmatch(name); m != nil {
		name = m[2]
	}

	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
}
