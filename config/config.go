// Package config loads layered site configuration.
//
// A site is configured by a base file, an optional per-environment overlay
// and command-line overrides, merged in that order key by key.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const (
	FileBase   = "config.yaml"
	EnvDefault = "default"

	PostsPerPageDefault = 5

	KeyEnableBlog    = "enableBlog"
	KeyPostsListView = "postsListView"
	KeyPostsPerPage  = "postsPerPage"
	KeyRSSFeedView   = "rssFeedView"
	KeyDateFormat    = "dateFormat"
	KeyBaseURL       = "baseUrl"
	KeySitemap       = "sitemap"
	KeyMarkdown      = "markdown"
)

// Site is the merged configuration of one build.
// Well-known keys are decoded into fields, and Values keeps every key.
type Site struct {
	EnableBlog    bool   `yaml:"enableBlog"`
	PostsListView string `yaml:"postsListView"`
	PostsPerPage  int    `yaml:"postsPerPage"`
	RSSFeedView   string `yaml:"rssFeedView"`
	DateFormat    string `yaml:"dateFormat"`
	BaseURL       string `yaml:"baseUrl"`
	Sitemap       bool   `yaml:"sitemap"`
	Markdown      string `yaml:"markdown"`

	Values map[string]any `yaml:"-"`
}

// MissingKeyError reports a key that another setting requires.
type MissingKeyError struct {
	Key    string
	Reason string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing config key '%s' (%s)", e.Key, e.Reason)
}

// FileName returns the overlay file name for env.
func FileName(env string) string {
	if env == "" || env == EnvDefault {
		return FileBase
	}

	ext := filepath.Ext(FileBase)
	return strings.TrimSuffix(FileBase, ext) + "-" + env + ext
}

// Load reads FileBase from dir, merges the overlay for env if it exists,
// then applies overrides. The base file is required.
func Load(dir, env string, overrides map[string]any) (*Site, error) {
	base, err := readFile(filepath.Join(dir, FileBase))
	if err != nil {
		return nil, err
	}

	layers := []map[string]any{base}
	if env != "" && env != EnvDefault {
		overlay, err := readFile(filepath.Join(dir, FileName(env)))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			layers = append(layers, overlay)
		}
	}
	if len(overrides) != 0 {
		layers = append(layers, overrides)
	}

	values, err := Merge(layers...)
	if err != nil {
		return nil, err
	}

	return FromValues(values)
}

// Merge merges layers left to right. Keys missing from a later layer keep
// their earlier value. Nested mappings are merged key by key, and any other
// value in a later layer replaces the earlier one, even if it is empty.
func Merge(layers ...map[string]any) (map[string]any, error) {
	merged := make(map[string]any)
	for i := range layers {
		if layers[i] == nil {
			continue
		}
		err := mergo.Merge(&merged, layers[i], mergo.WithOverride)
		if err != nil {
			return nil, fmt.Errorf("failed to merge config layer %d: %w", i, err)
		}
		setEmpty(merged, layers[i])
	}

	return merged, nil
}

// setEmpty copies the empty values of src onto dst, which mergo skips
func setEmpty(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if dstSub, ok := dst[k].(map[string]any); ok && len(sub) != 0 {
				setEmpty(dstSub, sub)
				continue
			}
		}
		if isEmpty(v) {
			dst[k] = v
		}
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}

	return rv.IsZero()
}

// FromValues decodes values into a validated [Site].
func FromValues(values map[string]any) (*Site, error) {
	if values == nil {
		values = make(map[string]any)
	}

	b, err := yaml.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	site := new(Site)
	if err := yaml.Unmarshal(b, site); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	site.Values = values
	if site.PostsPerPage <= 0 {
		site.PostsPerPage = PostsPerPageDefault
	}

	return site, site.Validate()
}

// Validate checks dependencies between keys.
func (s *Site) Validate() error {
	if s.EnableBlog && s.PostsListView == "" {
		return &MissingKeyError{
			Key:    KeyPostsListView,
			Reason: KeyEnableBlog + " is true",
		}
	}

	return nil
}

// ParseOverrides parses key=value pairs. Values are decoded as YAML
// scalars, so "true" is a bool and "5" is an int.
func ParseOverrides(pairs []string) (map[string]any, error) {
	overrides := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("bad override '%s', expecting key=value", pair)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("bad override value for '%s': %w", key, err)
		}
		if value == nil {
			value = raw
		}

		overrides[key] = value
	}

	return overrides, nil
}

func readFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	return values, nil
}
