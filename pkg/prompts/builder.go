package prompts

import (
	"fmt"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

// Builder constructs the message array for one LLM call using a fluent
// interface. It separates prompt assembly from session management.
type Builder struct {
	gs           *session.GameSession
	characters   []*actor.CharacterSpec
	userMessage  string
	speaker      string
	historyLimit int
}

// New creates a prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: 20, // default history window
	}
}

// WithSession sets the game session providing state and history.
func (b *Builder) WithSession(gs *session.GameSession) *Builder {
	b.gs = gs
	return b
}

// WithCharacters sets the player characters present in the session.
func (b *Builder) WithCharacters(chars []*actor.CharacterSpec) *Builder {
	b.characters = chars
	return b
}

// WithPlayerMessage sets the submitted action and the acting character.
func (b *Builder) WithPlayerMessage(message, speaker string) *Builder {
	b.userMessage = message
	b.speaker = speaker
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build assembles the final message array for LLM consumption:
// system prompt, state summary, windowed history, then the player turn.
func (b *Builder) Build() ([]chat.Message, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("session is required")
	}

	messages := make([]chat.Message, 0, b.historyLimit+3)
	messages = append(messages, chat.Message{
		Role:    chat.RoleSystem,
		Content: BaseSystemPrompt + "\n\n" + statePrompt(b.gs, b.characters),
	})

	for _, m := range b.gs.HistoryWindow(b.historyLimit) {
		messages = append(messages, m.ToLLM())
	}

	if b.userMessage != "" {
		content := b.userMessage
		if b.speaker != "" {
			content = b.speaker + ": " + content
		}
		messages = append(messages, chat.Message{
			Role:    chat.RolePlayer,
			Content: content,
		})
	}

	return messages, nil
}
