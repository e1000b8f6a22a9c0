package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrEmptyPrompt is returned when a request carries no prompt text.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// Request captures the normalized model input.
type Request struct {
	Instructions string `json:"instructions,omitempty"` // Optional system-level instructions
	Prompt       string `json:"prompt"`                 // User prompt
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completion produced for a Request.
type Response struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", "end_turn", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required by stages & evaluators to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// GenerateText sends prompt to m and returns the completion with leading
// and trailing whitespace removed.
func GenerateText(ctx context.Context, m Model, prompt string) (string, error) {
	resp, err := m.Generate(ctx, Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Responder computes a canned completion for a prompt. Returning ok=false
// lets MockModel fall through to its other sources.
type Responder func(prompt string) (text string, ok bool)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are resolved in order: exact prompt match, registered
// responders (first match wins), queued replies, then a default echo.
// Every prompt is recorded. Safe for concurrent use.
type MockModel struct {
	info       Info
	mu         sync.Mutex
	responses  map[string]string
	responders []Responder
	queue      []string
	errs       []error
	prompts    []string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// AddResponder registers a dynamic responder.
func (m *MockModel) AddResponder(r Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders = append(m.responders, r)
}

// RespondContaining answers prompts containing substr with reply.
func (m *MockModel) RespondContaining(substr, reply string) {
	m.AddResponder(func(prompt string) (string, bool) {
		return reply, strings.Contains(prompt, substr)
	})
}

// Enqueue appends replies consumed in FIFO order by prompts without another match.
func (m *MockModel) Enqueue(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, replies...)
}

// FailNext makes the next Generate calls fail with the given errors, in order.
func (m *MockModel) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
}

// Prompts returns every prompt received so far.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Calls returns the number of Generate invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if req.Prompt == "" {
		return Response{}, ErrEmptyPrompt
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Prompt)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return Response{}, err
	}
	return Response{Text: m.resolveLocked(req.Prompt), FinishReason: "stop"}, nil
}

func (m *MockModel) resolveLocked(prompt string) string {
	if r, ok := m.responses[prompt]; ok {
		return r
	}
	for _, responder := range m.responders {
		if text, ok := responder(prompt); ok {
			return text
		}
	}
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r
	}
	return fmt.Sprintf("Mock response to: %s", prompt)
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
