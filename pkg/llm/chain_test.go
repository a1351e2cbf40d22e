package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/contoso-bi/nlsql-engine/pkg/apperrors"
)

func failingBackend(name string, err error) *MockBackend {
	return &MockBackend{
		NameValue: name,
		GenerateSQLFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", err
		},
	}
}

func TestChain_FirstBackendWins(t *testing.T) {
	first := NewMockBackend("local", "SELECT 1 FROM DimDate")
	second := NewMockBackend("hosted", "SELECT 2 FROM DimDate")
	chain := NewChain([]Backend{first, second}, nil, zap.NewNop())

	result, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Backend != "local" || result.Content != "SELECT 1 FROM DimDate" {
		t.Errorf("unexpected result: %+v", result)
	}
	if second.GenerateSQLCalls != 0 {
		t.Errorf("second backend should not be called, got %d calls", second.GenerateSQLCalls)
	}
}

func TestChain_FallsThroughOnError(t *testing.T) {
	first := failingBackend("local", NewError(ErrorTypeConnection, "refused", true, nil))
	second := NewMockBackend("hosted", "SELECT 1 FROM DimDate")
	chain := NewChain([]Backend{first, second}, nil, zap.NewNop())

	result, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Backend != "hosted" {
		t.Errorf("expected fallback to hosted, got %q", result.Backend)
	}
}

// An empty response is a failure, not an answer; the walk continues.
func TestChain_FallsThroughOnEmptyResponse(t *testing.T) {
	first := NewMockBackend("local", "   ")
	second := NewMockBackend("hosted", "SELECT 1 FROM DimDate")
	chain := NewChain([]Backend{first, second}, nil, zap.NewNop())

	result, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Backend != "hosted" {
		t.Errorf("expected fallback to hosted, got %q", result.Backend)
	}
}

func TestChain_Exhausted(t *testing.T) {
	first := failingBackend("local", NewError(ErrorTypeTimeout, "deadline", true, nil))
	second := failingBackend("hosted", NewError(ErrorTypeServerError, "500", true, nil))
	chain := NewChain([]Backend{first, second}, nil, zap.NewNop())

	_, err := chain.Generate(context.Background(), "prompt")
	if !errors.Is(err, apperrors.ErrBackendsExhausted) {
		t.Fatalf("expected ErrBackendsExhausted, got %v", err)
	}
}

func TestChain_CacheHitSkipsBackend(t *testing.T) {
	backend := NewMockBackend("local", "SELECT 1 FROM DimDate")
	cache := NewResponseCache()
	chain := NewChain([]Backend{backend}, cache, zap.NewNop())

	first, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Cached {
		t.Error("first call must not be served from cache")
	}

	second, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !second.Cached || second.Content != first.Content {
		t.Errorf("expected cached replay, got %+v", second)
	}
	if backend.GenerateSQLCalls != 1 {
		t.Errorf("backend called %d times, want 1", backend.GenerateSQLCalls)
	}
}

func TestChain_OpenBreakerSkipsBackend(t *testing.T) {
	first := failingBackend("local", NewError(ErrorTypeConnection, "refused", true, nil))
	second := NewMockBackend("hosted", "SELECT 1 FROM DimDate")
	chain := NewChain([]Backend{first, second}, nil, zap.NewNop())

	// Trip the first backend's breaker.
	for i := 0; i < DefaultCircuitBreakerConfig().Threshold; i++ {
		if _, err := chain.Generate(context.Background(), "prompt"); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	calls := first.GenerateSQLCalls

	result, err := chain.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Backend != "hosted" {
		t.Errorf("expected hosted, got %q", result.Backend)
	}
	if first.GenerateSQLCalls != calls {
		t.Errorf("open breaker did not skip the backend: %d calls, want %d", first.GenerateSQLCalls, calls)
	}
}

func TestChain_ContextCancellation(t *testing.T) {
	backend := NewMockBackend("local", "SELECT 1 FROM DimDate")
	chain := NewChain([]Backend{backend}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := chain.Generate(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if backend.GenerateSQLCalls != 0 {
		t.Errorf("backend called after cancellation")
	}
}

func TestChain_Head(t *testing.T) {
	if head := NewChain(nil, nil, zap.NewNop()).Head(); head != nil {
		t.Errorf("empty chain Head() = %v, want nil", head)
	}

	backend := NewMockBackend("local", "SELECT 1")
	if head := NewChain([]Backend{backend}, nil, zap.NewNop()).Head(); head != Backend(backend) {
		t.Errorf("Head() did not return the first backend")
	}
}
