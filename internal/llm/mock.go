package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing and offline demos.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Synthesize makes an exhausted queue answer schema requests with a
	// placeholder object built from the schema instead of failing.
	Synthesize bool
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response. With an empty queue it
// returns ErrProviderUnavailable, or a synthesized object when Synthesize
// is set and the request carries a schema. Canned content is validated
// against the request schema like a real provider would.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Synthesize && req.Schema != nil:
		b, err := json.Marshal(synthesize(req.Schema.Definition))
		if err != nil {
			return nil, &ErrInvalidResponse{Err: err}
		}
		resp = MockResponse{Content: b}
	default:
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// synthesize builds the smallest value satisfying a simple JSON schema:
// required properties only, minItems elements, the first enum value.
func synthesize(def map[string]any) any {
	if enums, ok := def["enum"].([]any); ok && len(enums) > 0 {
		return enums[0]
	}

	switch def["type"] {
	case "object":
		obj := map[string]any{}
		props, _ := def["properties"].(map[string]any)
		req, _ := def["required"].([]any)
		for _, r := range req {
			name, _ := r.(string)
			if p, ok := props[name].(map[string]any); ok {
				obj[name] = synthesize(p)
			}
		}
		return obj
	case "array":
		n := 0
		if v, ok := schemaInt(def["minItems"]); ok {
			n = int(v)
		}
		items, _ := def["items"].(map[string]any)
		arr := make([]any, 0, n)
		for range n {
			arr = append(arr, synthesize(items))
		}
		return arr
	case "integer", "number":
		if v, ok := schemaInt(def["minimum"]); ok {
			return v
		}
		return 0
	case "boolean":
		return false
	default:
		s := "mock"
		if desc, ok := def["description"].(string); ok && desc != "" {
			s = desc
		}
		if n, ok := schemaInt(def["maxLength"]); ok && len([]rune(s)) > int(n) {
			s = string([]rune(s)[:n])
		}
		return s
	}
}
