package actor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
)

// Stats5e represents the six core D&D 5e ability scores.
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility.
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// InventoryItem is one granted item in a character's inventory.
type InventoryItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CharacterSpec is the serializable representation of a player character.
// Characters are owned by a player account and live across game sessions;
// experience and inventory accumulate on the spec and are persisted by
// the session storage layer.
type CharacterSpec struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Class       string          `json:"class,omitempty"`
	Race        string          `json:"race,omitempty"`
	Level       int             `json:"level,omitempty"`
	XP          int             `json:"xp"`
	HP          int             `json:"hp,omitempty"`
	MaxHP       int             `json:"max_hp,omitempty"`
	AC          int             `json:"ac,omitempty"`
	Stats       Stats5e         `json:"stats,omitempty"`
	PortraitURL string          `json:"portrait_url,omitempty"`
	Inventory   []InventoryItem `json:"inventory,omitempty"`
}

func (spec *CharacterSpec) Validate() error {
	if spec.Name == "" {
		return fmt.Errorf("character name is required")
	}
	if spec.Level < 0 || spec.XP < 0 {
		return fmt.Errorf("level and xp cannot be negative")
	}
	return nil
}

// AddItem appends an item to the character's inventory.
func (spec *CharacterSpec) AddItem(item InventoryItem) {
	spec.Inventory = append(spec.Inventory, item)
}

// Character is the runtime representation of a player character,
// pairing the stored spec with a d20 actor for rules resolution.
type Character struct {
	Spec  *CharacterSpec
	Actor *d20.Actor
}

// NewCharacterFromSpec builds the runtime character from a stored spec.
func NewCharacterFromSpec(spec *CharacterSpec) (*Character, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	maxHP := spec.MaxHP
	if maxHP == 0 {
		maxHP = spec.HP
	}

	a, err := d20.NewActor(spec.Name).
		WithHP(maxHP).
		WithAC(spec.AC).
		WithAttributes(spec.Stats.ToAttributes()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP > 0 && spec.HP != maxHP {
		if err := a.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Character{Spec: spec, Actor: a}, nil
}

// Summary returns a short description like "Arion, Level 3 Elf Ranger"
// for prompts and log lines.
func (c *Character) Summary() string {
	parts := []string{}
	if c.Spec.Level > 0 {
		parts = append(parts, fmt.Sprintf("Level %d", c.Spec.Level))
	}
	if c.Spec.Race != "" {
		parts = append(parts, c.Spec.Race)
	}
	if c.Spec.Class != "" {
		parts = append(parts, c.Spec.Class)
	}
	if len(parts) == 0 {
		return c.Spec.Name
	}
	return c.Spec.Name + ", " + strings.Join(parts, " ")
}
