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

	"github.com/mwisniewski/tale-engine/internal/services"
	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/internal/worker"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

func newChatHandler(t *testing.T, store *storage.MockStorage, llm *services.MockLLMService) *ChatHandler {
	t.Helper()
	processor := worker.NewTurnProcessor(store, llm, services.NewMockImageService(), testLogger())
	return NewChatHandler(processor, testLogger())
}

func TestChatHandler_Turn(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLMService()
	llm.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "Drzwi skrzypią i otwierają się powoli. [ZADANIE: Zbadaj piwnicę]", nil
	}
	handler := newChatHandler(t, store, llm)

	gs := session.NewGameSession("test")
	require.NoError(t, store.SaveSession(context.Background(), gs.ID, gs))

	body, _ := json.Marshal(chat.TurnRequest{SessionID: gs.ID, Message: "Otwieram drzwi."})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp chat.TurnResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, gs.ID, resp.SessionID)
	assert.NotContains(t, resp.Narrative, "[ZADANIE:")
	assert.Contains(t, resp.Narrative, "Drzwi skrzypią")

	saved, _ := store.LoadSession(context.Background(), gs.ID)
	assert.Equal(t, "Zbadaj piwnicę", saved.QuestLog)
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	handler := newChatHandler(t, storage.NewMockStorage(), services.NewMockLLMService())

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatHandler_InvalidBody(t *testing.T) {
	handler := newChatHandler(t, storage.NewMockStorage(), services.NewMockLLMService())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_MissingMessage(t *testing.T) {
	handler := newChatHandler(t, storage.NewMockStorage(), services.NewMockLLMService())

	body, _ := json.Marshal(chat.TurnRequest{SessionID: uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "message")
}

func TestChatHandler_UnknownSession(t *testing.T) {
	handler := newChatHandler(t, storage.NewMockStorage(), services.NewMockLLMService())

	body, _ := json.Marshal(chat.TurnRequest{SessionID: uuid.New(), Message: "hej"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
