package mock

import (
	"context"

	"github.com/poiesic/quarry/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields and records the
// prompts it receives for assertions.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned behavior.
	GenerateFunc func(ctx context.Context, prompt ai.Prompt) (string, error)

	prompts   []ai.Prompt
	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the prompt and returns a canned response.
func (m *MockGenerator) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	if prompt.Context == "" {
		return "I don't have enough information to answer that.", nil
	}
	return "Answer: " + prompt.Question, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the most recent prompt, or a zero prompt if none.
func (m *MockGenerator) LastPrompt() ai.Prompt {
	if len(m.prompts) == 0 {
		return ai.Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded prompts, the call count, and injected behavior.
func (m *MockGenerator) Reset() {
	m.prompts = nil
	m.callCount = 0
	m.GenerateFunc = nil
}
