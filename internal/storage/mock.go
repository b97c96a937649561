package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*session.GameSession
	characters map[uuid.UUID]*actor.CharacterSpec
	pingError  error
	saveError  error
	SaveCalls  int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:   make(map[uuid.UUID]*session.GameSession),
		characters: make(map[uuid.UUID]*actor.CharacterSpec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail on session saves
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, gs *session.GameSession) error {
	if gs == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[id] = gs
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id], nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) SaveCharacter(ctx context.Context, id uuid.UUID, spec *actor.CharacterSpec) error {
	if spec == nil {
		return errors.New("character cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[id] = spec
	return nil
}

func (m *MockStorage) LoadCharacter(ctx context.Context, id uuid.UUID) (*actor.CharacterSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.characters[id], nil
}

func (m *MockStorage) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.characters[id]; !ok {
		return errors.New("character not found")
	}
	delete(m.characters, id)
	return nil
}

func (m *MockStorage) LoadSessionCharacters(ctx context.Context, gs *session.GameSession) ([]*actor.CharacterSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	specs := make([]*actor.CharacterSpec, 0, len(gs.CharacterIDs))
	for _, id := range gs.CharacterIDs {
		if spec, ok := m.characters[id]; ok {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}
