package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mwisniewski/tale-engine/pkg/chat"
)

func TestNewAnthropicService(t *testing.T) {
	apiKey := "test-api-key"
	modelName := "claude-3-5-sonnet-20241022"
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAnthropicService(apiKey, modelName, log)

	if service.apiKey != apiKey {
		t.Errorf("Expected API key %s, got %s", apiKey, service.apiKey)
	}

	if service.modelName != modelName {
		t.Errorf("Expected model name %s, got %s", modelName, service.modelName)
	}

	if service.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestAnthropicService_InitModel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-3-5-sonnet-20241022", log)

	if err := service.InitModel(context.Background(), "test-model"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAnthropicService_SplitMessages(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-3-5-sonnet-20241022", log)

	messages := []chat.Message{
		{Role: chat.RoleSystem, Content: "You are the game master."},
		{Role: chat.RoleSystem, Content: "Current quest: find the caravan."},
		{Role: chat.RolePlayer, Content: "I draw my sword."},
		{Role: chat.RoleNarrator, Content: "Steel rings in the cold air."},
	}

	system, conversation := service.splitMessages(messages)

	want := "You are the game master.\n\nCurrent quest: find the caravan."
	if system != want {
		t.Errorf("Expected system prompt %q, got %q", want, system)
	}

	if len(conversation) != 2 {
		t.Fatalf("Expected 2 conversation messages, got %d", len(conversation))
	}
	if conversation[0].Role != chat.RolePlayer {
		t.Errorf("Expected first conversation message to be player, got %s", conversation[0].Role)
	}
}

func TestAnthropicService_Chat_EmptyMessages(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-3-5-sonnet-20241022", log)

	if _, err := service.Chat(context.Background(), nil); err == nil {
		t.Error("Expected error for empty messages")
	}
}
