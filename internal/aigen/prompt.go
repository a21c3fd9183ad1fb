package aigen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const defaultHeadlineCount = 3

// maxBodyChars bounds how much article text is sent to the model.
const maxBodyChars = 8000

// headlinePrompt builds the headline-generation prompt.
func headlinePrompt(req HeadlineRequest) string {
	count := req.Count
	if count <= 0 {
		count = defaultHeadlineCount
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are a news sub-editor. Suggest %d short, factual headlines", count)
	if req.Language != "" {
		fmt.Fprintf(&b, " in language %q", req.Language)
	}
	b.WriteString(" for the article below.\n")
	b.WriteString(`Respond with JSON only: {"suggestions": ["..."]}` + "\n\nArticle:\n")
	b.WriteString(truncate(req.Body, maxBodyChars))
	return b.String()
}

// seoPrompt builds the SEO-generation prompt.
func seoPrompt(req SEORequest) string {
	var b strings.Builder
	b.WriteString("You are an SEO editor for a news site. Write a search title (max 60 chars), a meta description (max 160 chars), and up to 8 keywords")
	if req.Language != "" {
		fmt.Fprintf(&b, " in language %q", req.Language)
	}
	b.WriteString(" for the article below.\n")
	b.WriteString(`Respond with JSON only: {"title": "...", "description": "...", "keywords": ["..."]}` + "\n\n")
	if req.Headline != "" {
		fmt.Fprintf(&b, "Headline: %s\n", req.Headline)
	}
	b.WriteString("Article:\n")
	b.WriteString(truncate(req.Body, maxBodyChars))
	return b.String()
}

// translatePrompt builds the translation prompt.
func translatePrompt(req TranslateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the text below into language %q. Keep proper nouns in their conventional local form.\n", req.Language)
	b.WriteString(`Respond with JSON only: {"text": "..."}` + "\n\nText:\n")
	b.WriteString(truncate(req.Text, maxBodyChars))
	return b.String()
}

// truncate cuts s after at most max bytes without splitting a rune, so
// multibyte text stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// decodeModelJSON parses a model response into out, tolerating markdown
// code fences around the JSON payload.
func decodeModelJSON(raw string, out any) error {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	if errDecode := decoder.Decode(out); errDecode != nil {
		return fmt.Errorf("aigen: parse model response: %w", errDecode)
	}
	return nil
}
