// Package seo resolves effective article SEO metadata from article fields
// and tenant-wide defaults.
package seo

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults are tenant-wide SEO fallbacks stored as a tenant setting.
type Defaults struct {
	TitleSuffix string   `json:"titleSuffix"` // Appended to titles, e.g. " | Praja News".
	Description string   `json:"description"` // Fallback meta description.
	Keywords    []string `json:"keywords"`    // Baseline keywords merged into every article.
}

// ParseDefaults parses the seo_defaults tenant setting payload. An empty
// payload yields zero defaults.
func ParseDefaults(raw []byte) (Defaults, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Defaults{}, nil
	}
	var defaults Defaults
	if errUnmarshal := json.Unmarshal(raw, &defaults); errUnmarshal != nil {
		return Defaults{}, fmt.Errorf("seo: parse defaults: %w", errUnmarshal)
	}
	return defaults, nil
}

// Metadata is the resolved SEO block served with a published article.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Resolve merges article-level SEO fields with tenant defaults. Article
// fields win; the headline backs an absent title; default keywords are
// appended after article keywords with duplicates removed.
func Resolve(headline, title, description string, keywords []string, defaults Defaults) Metadata {
	resolved := Metadata{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if resolved.Title == "" {
		resolved.Title = strings.TrimSpace(headline)
	}
	if suffix := defaults.TitleSuffix; suffix != "" && resolved.Title != "" && !strings.HasSuffix(resolved.Title, suffix) {
		resolved.Title += suffix
	}
	if resolved.Description == "" {
		resolved.Description = strings.TrimSpace(defaults.Description)
	}

	seen := make(map[string]struct{})
	for _, keyword := range append(append([]string{}, keywords...), defaults.Keywords...) {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		lowered := strings.ToLower(keyword)
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		resolved.Keywords = append(resolved.Keywords, keyword)
	}
	return resolved
}
