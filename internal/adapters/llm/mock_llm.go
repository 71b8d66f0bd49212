package llm

import (
	"context"
	"fmt"
)

// MockLLM answers without any model behind it. Useful for local dev and
// tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(_ context.Context, question, contextText string) (string, error) {
	if contextText == "" {
		return fmt.Sprintf("I could not find anything in the documents about %q.", question), nil
	}
	return fmt.Sprintf("Based on the documents, here is what I found about %q: %.120s", question, contextText), nil
}
