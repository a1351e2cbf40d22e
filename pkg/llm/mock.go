package llm

import (
	"context"
	"sync"
)

// MockBackend is a test double for Backend. Set GenerateSQLFunc to control
// responses; call counts are tracked for assertions.
type MockBackend struct {
	mu sync.Mutex

	NameValue       string
	GenerateSQLFunc func(ctx context.Context, prompt string) (string, error)

	// GenerateSQLCalls counts invocations; Prompts records each prompt seen.
	GenerateSQLCalls int
	Prompts          []string
}

// NewMockBackend creates a mock that always returns the fixed response.
func NewMockBackend(name, response string) *MockBackend {
	return &MockBackend{
		NameValue: name,
		GenerateSQLFunc: func(ctx context.Context, prompt string) (string, error) {
			return response, nil
		},
	}
}

func (m *MockBackend) GenerateSQL(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateSQLCalls++
	m.Prompts = append(m.Prompts, prompt)
	fn := m.GenerateSQLFunc
	m.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(ctx, prompt)
}

func (m *MockBackend) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

var _ Backend = (*MockBackend)(nil)
