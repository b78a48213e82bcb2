package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Attribution headers OpenRouter uses to list the app on its rankings.
const (
	openRouterReferer = "https://github.com/abhisek/medienreflexion"
	openRouterTitle   = "Medien-Reflexion"
)

// OpenRouterProvider reaches many vendors through OpenRouter's
// OpenAI-compatible API. Model IDs are passed through unchanged,
// e.g. "google/gemini-2.5-flash".
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}

	inner, err := newChatProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}, attributionDoer{next: http.DefaultClient})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

type attributionDoer struct {
	next interface {
		Do(*http.Request) (*http.Response, error)
	}
}

func (d attributionDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return d.next.Do(req)
}
