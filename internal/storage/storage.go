package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

// Storage defines the interface for session and character persistence
type Storage interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error

	// Close closes the storage connection
	Close() error

	// SaveSession saves a game session under its ID
	SaveSession(ctx context.Context, id uuid.UUID, gs *session.GameSession) error

	// LoadSession retrieves a game session by ID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.GameSession, error)

	// DeleteSession removes a game session by ID
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// SaveCharacter saves a character sheet under its ID
	SaveCharacter(ctx context.Context, id uuid.UUID, spec *actor.CharacterSpec) error

	// LoadCharacter retrieves a character sheet by ID.
	// Returns nil if the character doesn't exist.
	LoadCharacter(ctx context.Context, id uuid.UUID) (*actor.CharacterSpec, error)

	// DeleteCharacter removes a character sheet by ID
	DeleteCharacter(ctx context.Context, id uuid.UUID) error

	// LoadSessionCharacters loads all character sheets attached to a session,
	// in the order they were added. Missing characters are skipped.
	LoadSessionCharacters(ctx context.Context, gs *session.GameSession) ([]*actor.CharacterSpec, error)
}
