package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one structured answer per request. Implementations
// validate the answer against the request schema before returning it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider sends requests to.
	ModelID() string
}

// DefaultMaxTokens applies when a request leaves MaxTokens unset. Some
// vendors reject requests without a limit.
const DefaultMaxTokens = 1024

// Request is a single-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON matching it. Without a schema the
	// response Content is the raw model text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// tokenLimit returns MaxTokens or DefaultMaxTokens.
func (r Request) tokenLimit() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON schema, e.g. "result-insight". The name doubles as
// tool name or response-format name on the vendor side.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Decode unmarshals the response content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return &ErrInvalidResponse{Content: r.Content, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish applies the checks every vendor adapter shares: a schema answer
// cut off at the token limit is unusable, and any schema answer must
// validate.
func finish(req Request, resp *Response) (*Response, error) {
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveModel maps a friendly model name to a vendor model ID. Unknown
// names pass through as IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
