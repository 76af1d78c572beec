package llm

import (
	"context"
	"sync"
)

// MockCompleter implements Completer for testing.
type MockCompleter struct {
	// Injectable behavior
	CompleteFunc func(ctx context.Context, prompt, model string) Result

	mu    sync.Mutex
	calls []CompleteCall
}

// CompleteCall records the arguments of a Complete invocation.
type CompleteCall struct {
	Prompt string
	Model  string
}

// NewMockCompleter creates a mock that always returns text.
func NewMockCompleter(text string) *MockCompleter {
	return &MockCompleter{
		CompleteFunc: func(context.Context, string, string) Result { return Success(text) },
	}
}

// Complete records the call and runs CompleteFunc, or returns "mock response".
func (m *MockCompleter) Complete(ctx context.Context, prompt, model string) Result {
	m.mu.Lock()
	m.calls = append(m.calls, CompleteCall{Prompt: prompt, Model: model})
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, model)
	}
	return Success("mock response")
}

// Calls returns a copy of the recorded calls
func (m *MockCompleter) Calls() []CompleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompleteCall, len(m.calls))
	copy(out, m.calls)
	return out
}
