// Package aigen generates headlines and SEO metadata for articles using a
// pluggable text-generation backend.
package aigen

import (
	"context"
)

// HeadlineRequest asks for headline suggestions for an article body.
type HeadlineRequest struct {
	Body     string // Article body text.
	Language string // Target language code, e.g. "te".
	Count    int    // Number of suggestions, defaults to 3.
}

// HeadlineResult carries the generated headline suggestions.
type HeadlineResult struct {
	Suggestions []string `json:"suggestions"`
}

// SEORequest asks for SEO metadata for an article.
type SEORequest struct {
	Headline string // Article headline.
	Body     string // Article body text.
	Language string // Target language code.
}

// SEOResult carries generated SEO metadata.
type SEOResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// TranslateRequest asks for a short text translation.
type TranslateRequest struct {
	Text     string // Source text.
	Language string // Target language code.
}

// TranslateResult carries the translated text.
type TranslateResult struct {
	Text string `json:"text"`
}

// Provider generates editorial suggestions.
type Provider interface {
	GenerateHeadlines(ctx context.Context, req HeadlineRequest) (HeadlineResult, error)
	GenerateSEO(ctx context.Context, req SEORequest) (SEOResult, error)
	Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error)
}
