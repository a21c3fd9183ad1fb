package aigen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	"google.golang.org/genai"
)

// ErrNotConfigured indicates no Gemini API key is present in settings.
var ErrNotConfigured = errors.New("aigen: gemini api key is not configured")

// GeminiProvider generates suggestions with Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiFromSettings builds a GeminiProvider from the settings snapshot.
func NewGeminiFromSettings(ctx context.Context) (*GeminiProvider, error) {
	apiKey := internalsettings.StringValue(internalsettings.GeminiAPIKeyKey, "")
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	model := internalsettings.StringValue(internalsettings.GeminiModelKey, internalsettings.DefaultGeminiModel)
	return NewGemini(ctx, apiKey, model)
}

// NewGemini constructs a GeminiProvider for the given API key and model.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(model) == "" {
		model = internalsettings.DefaultGeminiModel
	}
	client, errClient := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if errClient != nil {
		return nil, fmt.Errorf("aigen: create gemini client: %w", errClient)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// GenerateHeadlines asks Gemini for headline suggestions.
func (p *GeminiProvider) GenerateHeadlines(ctx context.Context, req HeadlineRequest) (HeadlineResult, error) {
	raw, errGenerate := p.generate(ctx, headlinePrompt(req))
	if errGenerate != nil {
		return HeadlineResult{}, errGenerate
	}
	var result HeadlineResult
	if errDecode := decodeModelJSON(raw, &result); errDecode != nil {
		return HeadlineResult{}, errDecode
	}
	if len(result.Suggestions) == 0 {
		return HeadlineResult{}, errors.New("aigen: model returned no headline suggestions")
	}
	return result, nil
}

// GenerateSEO asks Gemini for SEO metadata.
func (p *GeminiProvider) GenerateSEO(ctx context.Context, req SEORequest) (SEOResult, error) {
	raw, errGenerate := p.generate(ctx, seoPrompt(req))
	if errGenerate != nil {
		return SEOResult{}, errGenerate
	}
	var result SEOResult
	if errDecode := decodeModelJSON(raw, &result); errDecode != nil {
		return SEOResult{}, errDecode
	}
	if result.Title == "" {
		return SEOResult{}, errors.New("aigen: model returned no seo title")
	}
	return result, nil
}

// Translate asks Gemini for a translation of a short text.
func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error) {
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.Language) == "" {
		return TranslateResult{}, errors.New("aigen: translate needs text and a target language")
	}
	raw, errGenerate := p.generate(ctx, translatePrompt(req))
	if errGenerate != nil {
		return TranslateResult{}, errGenerate
	}
	var result TranslateResult
	if errDecode := decodeModelJSON(raw, &result); errDecode != nil {
		return TranslateResult{}, errDecode
	}
	if strings.TrimSpace(result.Text) == "" {
		return TranslateResult{}, errors.New("aigen: model returned no translation")
	}
	return result, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	response, errGenerate := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if errGenerate != nil {
		return "", fmt.Errorf("aigen: gemini generate: %w", errGenerate)
	}
	text := response.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("aigen: empty model response")
	}
	return text, nil
}
