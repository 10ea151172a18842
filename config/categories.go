package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Categories maps a product category onto the subreddits searched for it.
// It is read-only once constructed.
type Categories struct {
	subreddits map[string][]string
	names      []string
}

// NewCategories copies table so later changes by the caller are not visible.
func NewCategories(table map[string][]string) Categories {
	c := Categories{subreddits: make(map[string][]string, len(table))}
	for name, subs := range table {
		cleaned := make([]string, 0, len(subs))
		for _, s := range subs {
			s = strings.TrimPrefix(strings.TrimSpace(s), "r/")
			if s != "" {
				cleaned = append(cleaned, s)
			}
		}
		c.subreddits[name] = cleaned
		c.names = append(c.names, name)
	}
	slices.Sort(c.names)
	return c
}

// ParseCategories decodes a YAML document of `category: [subreddit, ...]`.
func ParseCategories(data []byte) (Categories, error) {
	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return Categories{}, fmt.Errorf("[Config] failed to parse categories: %w", err)
	}
	if len(table) == 0 {
		return Categories{}, fmt.Errorf("[Config] category table is empty")
	}
	return NewCategories(table), nil
}

// LoadCategories reads path, or the embedded default table when path is empty.
func LoadCategories(path string) (Categories, error) {
	if path == "" {
		return ParseCategories(defaultCategoriesYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Categories{}, fmt.Errorf("[Config] failed to read categories file: %w", err)
	}
	return ParseCategories(data)
}

// Subreddits returns a copy of the subreddit list for category.
func (c Categories) Subreddits(category string) ([]string, bool) {
	subs, ok := c.subreddits[category]
	if !ok {
		return nil, false
	}
	return slices.Clone(subs), true
}

// Names returns the category names in sorted order.
func (c Categories) Names() []string {
	return slices.Clone(c.names)
}
