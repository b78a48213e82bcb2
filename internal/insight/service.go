package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/medienreflexion/internal/llm"
)

// Purpose is the label recorded with every insight request.
const Purpose = "insight"

// Service generates insights through an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a Service. A nil provider yields a Service whose
// Enabled reports false.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Generate requests an insight for a finished result. It blocks until the
// provider answers or ctx is done.
func (s *Service) Generate(ctx context.Context, in Input) (*Insight, error) {
	if !s.Enabled() {
		return nil, errors.New("insight: no provider configured")
	}
	if in.Questionnaire == nil {
		return nil, errors.New("insight: questionnaire is required")
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	if in.SessionID != "" {
		ctx = llm.WithSession(ctx, in.SessionID)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("insight: %w", err)
	}

	return parse(resp)
}

func parse(resp *llm.Response) (*Insight, error) {
	var out Insight
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("insight: %w", err)
	}

	out.Headline = strings.TrimSpace(out.Headline)
	out.Reflection = strings.TrimSpace(out.Reflection)
	suggestions := out.Suggestions[:0]
	for _, s := range out.Suggestions {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	out.Suggestions = suggestions

	if out.Headline == "" && out.Reflection == "" {
		return nil, errors.New("insight: empty response")
	}
	return &out, nil
}
