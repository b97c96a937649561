package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwisniewski/tale-engine/internal/services"
	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTurnTest(t *testing.T) (*storage.MockStorage, *services.MockLLMService, *TurnProcessor, *session.GameSession, *actor.CharacterSpec) {
	t.Helper()

	store := storage.NewMockStorage()
	llm := services.NewMockLLMService()
	images := services.NewMockImageService()
	processor := NewTurnProcessor(store, llm, images, testLogger())

	ctx := context.Background()
	spec := &actor.CharacterSpec{ID: uuid.New(), Name: "Arion", Class: "Wojownik", Level: 1, HP: 12, MaxHP: 12, AC: 15}
	require.NoError(t, store.SaveCharacter(ctx, spec.ID, spec))

	gs := session.NewGameSession("Mgliste Góry")
	gs.AddCharacter(spec.ID)
	require.NoError(t, store.SaveSession(ctx, gs.ID, gs))

	return store, llm, processor, gs, spec
}

func TestProcessTurn_FullTurn(t *testing.T) {
	store, llm, processor, gs, spec := setupTurnTest(t)

	llm.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "Pokonujesz goblina. [XP: Arion;150] [TLO: LAS] Ścieżka wiedzie dalej.", nil
	}

	resp, effects, err := processor.ProcessTurn(context.Background(), chat.TurnRequest{
		SessionID: gs.ID,
		Character: "Arion",
		Message:   "Atakuję goblina.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Empty(t, resp.Error)
	assert.NotContains(t, resp.Narrative, "[XP:")
	assert.NotContains(t, resp.Narrative, "[TLO:")
	assert.Contains(t, resp.Narrative, "Pokonujesz goblina.")
	assert.Len(t, effects, 2)

	saved, err := store.LoadSession(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.False(t, saved.AwaitingReply)
	assert.Equal(t, "las", saved.Background)

	// Player action and narrator reply are both on the log.
	require.GreaterOrEqual(t, len(saved.Messages), 2)
	assert.Equal(t, chat.RolePlayer, saved.Messages[0].Role)
	assert.Equal(t, "Atakuję goblina.", saved.Messages[0].Text)
	assert.Equal(t, chat.RoleNarrator, saved.Messages[1].Role)

	// Experience was persisted on the character sheet.
	savedSpec, err := store.LoadCharacter(context.Background(), spec.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, savedSpec.XP)
}

func TestProcessTurn_NarratorFailure(t *testing.T) {
	store, llm, processor, gs, _ := setupTurnTest(t)

	llm.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "", errors.New("upstream timeout")
	}

	resp, effects, err := processor.ProcessTurn(context.Background(), chat.TurnRequest{
		SessionID: gs.ID,
		Message:   "Rozglądam się.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, resp.Narrative)
	assert.Empty(t, effects)

	// The session is unlocked and carries a visible system notice.
	saved, err := store.LoadSession(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.False(t, saved.AwaitingReply)
	require.Len(t, saved.Messages, 1)
	assert.Equal(t, chat.RoleSystem, saved.Messages[0].Role)
}

func TestProcessTurn_SessionNotFound(t *testing.T) {
	_, _, processor, _, _ := setupTurnTest(t)

	_, _, err := processor.ProcessTurn(context.Background(), chat.TurnRequest{
		SessionID: uuid.New(),
		Message:   "halo?",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestProcessTurn_ChoicesClearedByActing(t *testing.T) {
	store, llm, processor, gs, _ := setupTurnTest(t)

	gs.Choices = []string{"Walcz", "Uciekaj"}
	require.NoError(t, store.SaveSession(context.Background(), gs.ID, gs))

	llm.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "Ruszasz do walki.", nil
	}

	_, _, err := processor.ProcessTurn(context.Background(), chat.TurnRequest{
		SessionID: gs.ID,
		Message:   "Walczę.",
	})
	require.NoError(t, err)

	saved, err := store.LoadSession(context.Background(), gs.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.Choices)
}

func TestProcessTurn_DefaultSpeaker(t *testing.T) {
	store, llm, processor, gs, _ := setupTurnTest(t)

	llm.ChatFunc = func(ctx context.Context, messages []chat.Message) (string, error) {
		return "Karczmarz odpowiada.", nil
	}

	// No character given in the request. The first party member speaks.
	_, _, err := processor.ProcessTurn(context.Background(), chat.TurnRequest{
		SessionID: gs.ID,
		Message:   "Pytam o drogę.",
	})
	require.NoError(t, err)

	saved, err := store.LoadSession(context.Background(), gs.ID)
	require.NoError(t, err)
	require.NotEmpty(t, saved.Messages)
	assert.Equal(t, "Arion", saved.Messages[0].Speaker)
}
