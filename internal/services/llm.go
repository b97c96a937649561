package services

import (
	"context"

	"github.com/mwisniewski/tale-engine/pkg/chat"
)

// LLMService defines the interface for interacting with the narrator LLM
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates the next narrative turn from the conversation so far.
	// The returned string is raw narrator output, directive tags included.
	Chat(ctx context.Context, messages []chat.Message) (string, error)
}
