package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RolePlayer   = "user"      // player action
	RoleNarrator = "assistant" // game master narration
	RoleSystem   = "system"    // engine notices (loot, level-ups, prompts)
)

// Message is a single chat message in the format the LLM APIs expect.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// NarrativeMessage is one entry in a session's append-only adventure log.
// Sequence is a monotonic unix-nano timestamp assigned at append time and
// defines the log order.
type NarrativeMessage struct {
	Role     string `json:"role"`
	Speaker  string `json:"speaker,omitempty"`
	Text     string `json:"text"`
	Sequence int64  `json:"sequence"`
}

// NewNarrativeMessage stamps a message with the current sequence value.
func NewNarrativeMessage(role, speaker, text string) NarrativeMessage {
	return NarrativeMessage{
		Role:     role,
		Speaker:  speaker,
		Text:     text,
		Sequence: time.Now().UnixNano(),
	}
}

// ToLLM converts a narrative message to the LLM wire format.
func (m NarrativeMessage) ToLLM() Message {
	return Message{Role: m.Role, Content: m.Text}
}

// TurnRequest is a player action submitted against a game session.
type TurnRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Character string    `json:"character,omitempty"` // acting character name
	Message   string    `json:"message"`
}

func (tr *TurnRequest) Validate() error {
	if tr.SessionID == uuid.Nil {
		return fmt.Errorf("session_id is required")
	}
	if tr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// TurnResponse is the narrator's reply for one turn, after directive
// tags have been stripped from the narrative.
type TurnResponse struct {
	SessionID uuid.UUID          `json:"session_id,omitempty"`
	Narrative string             `json:"narrative,omitempty"`
	Messages  []NarrativeMessage `json:"messages,omitempty"` // system notices emitted this turn
	Error     string             `json:"error,omitempty"`
}
