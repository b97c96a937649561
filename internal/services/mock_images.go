package services

import (
	"context"
	"sync"

	"github.com/mwisniewski/tale-engine/pkg/session"
)

// MockImageService is a mock implementation of session.ImageGenerator for testing
type MockImageService struct {
	GenerateFunc func(ctx context.Context, prompt string, size session.ImageSize) (string, error)

	// Track calls for testing
	GenerateCalls []GenerateImageCall

	mu sync.Mutex // protects all fields above
}

type GenerateImageCall struct {
	Prompt string
	Size   session.ImageSize
}

// Ensure MockImageService implements session.ImageGenerator
var _ session.ImageGenerator = (*MockImageService)(nil)

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		GenerateCalls: make([]GenerateImageCall, 0),
	}
}

// Generate mocks image generation
func (m *MockImageService) Generate(ctx context.Context, prompt string, size session.ImageSize) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = append(m.GenerateCalls, GenerateImageCall{Prompt: prompt, Size: size})

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, size)
	}
	return "https://images.example.com/generated.png", nil
}
