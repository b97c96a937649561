package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

func TestSessionHandler_Create(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewSessionHandler(store, testLogger())

	spec := &actor.CharacterSpec{ID: uuid.New(), Name: "Arion", Class: "Wojownik", Level: 1, HP: 12, MaxHP: 12}
	require.NoError(t, store.SaveCharacter(context.Background(), spec.ID, spec))

	body, _ := json.Marshal(CreateSessionRequest{Name: "Mgliste Góry", CharacterIDs: []uuid.UUID{spec.ID}})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var gs session.GameSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&gs))
	assert.NotEqual(t, uuid.Nil, gs.ID)
	assert.Equal(t, "Mgliste Góry", gs.Name)
	assert.Equal(t, []uuid.UUID{spec.ID}, gs.CharacterIDs)
	// Opening prompt is seeded onto the log.
	require.NotEmpty(t, gs.Messages)
}

func TestSessionHandler_Create_UnknownCharacter(t *testing.T) {
	handler := NewSessionHandler(storage.NewMockStorage(), testLogger())

	body, _ := json.Marshal(CreateSessionRequest{Name: "test", CharacterIDs: []uuid.UUID{uuid.New()}})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Read(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewSessionHandler(store, testLogger())

	gs := session.NewGameSession("odczyt")
	require.NoError(t, store.SaveSession(context.Background(), gs.ID, gs))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+gs.ID.String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got session.GameSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, gs.ID, got.ID)
}

func TestSessionHandler_Read_NotFound(t *testing.T) {
	handler := NewSessionHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandler_Read_InvalidID(t *testing.T) {
	handler := NewSessionHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Update(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewSessionHandler(store, testLogger())

	gs := session.NewGameSession("stara nazwa")
	require.NoError(t, store.SaveSession(context.Background(), gs.ID, gs))

	newName := "nowa nazwa"
	body, _ := json.Marshal(UpdateSessionRequest{Name: &newName})
	req := httptest.NewRequest(http.MethodPatch, "/v1/sessions/"+gs.ID.String(), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	saved, _ := store.LoadSession(context.Background(), gs.ID)
	assert.Equal(t, "nowa nazwa", saved.Name)
}

func TestSessionHandler_Delete(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewSessionHandler(store, testLogger())

	gs := session.NewGameSession("do usunięcia")
	require.NoError(t, store.SaveSession(context.Background(), gs.ID, gs))

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+gs.ID.String(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	saved, _ := store.LoadSession(context.Background(), gs.ID)
	assert.Nil(t, saved)
}
