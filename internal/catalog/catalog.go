// Package catalog seeds categories, genres and titles from a JSON file.
//
// The file looks like:
//
//	{
//	  "categories": [{"name": "Film", "slug": "film"}],
//	  "genres":     [{"name": "Drama"}],
//	  "titles":     [{"name": "Stalker", "year": 1979, "category": "film", "genre": ["drama"]}]
//	}
//
// A missing slug is derived from the name. Imports are idempotent: vocabulary
// is matched by slug and titles by (name, year).
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

type Vocabulary struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Title struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description *string  `json:"description"`
	Category    string   `json:"category"`
	Genres      []string `json:"genre"`
}

type File struct {
	Categories []Vocabulary `json:"categories"`
	Genres     []Vocabulary `json:"genres"`
	Titles     []Title      `json:"titles"`
}

func Read(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	for i := range f.Categories {
		f.Categories[i].fillSlug()
	}
	for i := range f.Genres {
		f.Genres[i].fillSlug()
	}
	return &f, nil
}

func ReadFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer file.Close()
	return Read(file)
}

func (v *Vocabulary) fillSlug() {
	if v.Slug == "" {
		v.Slug = Slugify(v.Name)
	}
}

// Slugify lowercases s, turns spaces into hyphens and drops everything else
// outside [a-z0-9_-].
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
