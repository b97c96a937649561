package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
)

// CombatantKind distinguishes player characters from monsters in the
// initiative order.
type CombatantKind string

const (
	CombatantPlayer  CombatantKind = "player"
	CombatantMonster CombatantKind = "monster"
)

// DefaultMonsterHP is used for monsters named in a combat-start
// directive; the narrator does not supply hit points.
const DefaultMonsterHP = 7

// Combatant is an ephemeral participant record that exists only while
// the session's combat flag is set.
type Combatant struct {
	Name       string        `json:"name"`
	Kind       CombatantKind `json:"kind"`
	Initiative int           `json:"initiative"`
	HP         int           `json:"hp,omitempty"`
}

// GameSession is the shared state of one adventure. It holds the
// append-only narrative log plus the flat fields the narrator's
// directives mutate. All directive fields are last-writer-wins; there
// is no history beyond the message log.
type GameSession struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name,omitempty"`
	Messages     []chat.NarrativeMessage `json:"messages,omitempty"`
	Background   string                  `json:"background,omitempty"` // ambiance keyword, lower-cased
	QuestLog     string                  `json:"quest_log,omitempty"`
	Choices      []string                `json:"choices,omitempty"` // pending choice set; gates free-text input client-side
	InCombat     bool                    `json:"in_combat"`
	Combatants   []Combatant             `json:"combatants,omitempty"`
	SceneImage   string                  `json:"scene_image,omitempty"` // image reference (URL)
	MapImage     string                  `json:"map_image,omitempty"`
	NPCs         map[string]actor.NPC    `json:"npcs,omitempty"`
	CharacterIDs []uuid.UUID             `json:"character_ids,omitempty"`

	// AwaitingReply is true from player action submission until the
	// reducer finishes applying the narrator's reply. Mutual exclusion
	// is advisory only; clients disable input while it is set.
	AwaitingReply bool `json:"awaiting_reply"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameSession creates an empty session.
func NewGameSession(name string) *GameSession {
	now := time.Now()
	return &GameSession{
		ID:        uuid.New(),
		Name:      name,
		Messages:  make([]chat.NarrativeMessage, 0),
		NPCs:      make(map[string]actor.NPC),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message to the narrative log, keeping sequence values
// strictly increasing even when appends land on the same clock tick.
func (gs *GameSession) Append(role, speaker, text string) chat.NarrativeMessage {
	msg := chat.NewNarrativeMessage(role, speaker, text)
	if n := len(gs.Messages); n > 0 && msg.Sequence <= gs.Messages[n-1].Sequence {
		msg.Sequence = gs.Messages[n-1].Sequence + 1
	}
	gs.Messages = append(gs.Messages, msg)
	return msg
}

// HistoryWindow returns the most recent limit messages for prompt
// building. A non-positive limit returns the full log.
func (gs *GameSession) HistoryWindow(limit int) []chat.NarrativeMessage {
	if limit <= 0 || len(gs.Messages) <= limit {
		return gs.Messages
	}
	return gs.Messages[len(gs.Messages)-limit:]
}

// ClearChoices drops the pending choice set. Called when a player
// submits their next action, whether or not it selected a choice.
func (gs *GameSession) ClearChoices() {
	gs.Choices = nil
}

// AddCharacter registers a character with the session if not already
// present.
func (gs *GameSession) AddCharacter(id uuid.UUID) {
	for _, existing := range gs.CharacterIDs {
		if existing == id {
			return
		}
	}
	gs.CharacterIDs = append(gs.CharacterIDs, id)
}

// DeepCopy returns an independent copy of the session for background
// processing.
func (gs *GameSession) DeepCopy() (*GameSession, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	var cp GameSession
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}
