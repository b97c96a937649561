package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mwisniewski/tale-engine/internal/services"
	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/directive"
	"github.com/mwisniewski/tale-engine/pkg/prompts"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

const (
	PromptHistoryLimit = 20

	llmTimeout = 60 * time.Second
)

// TurnProcessor handles the core turn processing logic.
// It's used by both the HTTP handler (synchronously) and the worker
// (asynchronously).
type TurnProcessor struct {
	storage    storage.Storage
	llmService services.LLMService
	images     session.ImageGenerator
	logger     *slog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(
	storage storage.Storage,
	llmService services.LLMService,
	images session.ImageGenerator,
	logger *slog.Logger,
) *TurnProcessor {
	return &TurnProcessor{
		storage:    storage,
		llmService: llmService,
		images:     images,
		logger:     logger,
	}
}

// ProcessTurn runs one full turn: prompt the narrator, strip directive
// tags from its reply, apply the directives to the session, and persist.
// The session always leaves processing ready for the next player action,
// also when the narrator call fails.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, []session.Effect, error) {
	gs, err := p.storage.LoadSession(ctx, req.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if gs == nil {
		return nil, nil, fmt.Errorf("session not found: %s", req.SessionID)
	}

	specs, err := p.storage.LoadSessionCharacters(ctx, gs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load characters: %w", err)
	}

	speaker := req.Character
	if speaker == "" && len(specs) > 0 {
		speaker = specs[0].Name
	}

	// Mark the session busy before the slow narrator call so clients
	// reading it meanwhile see the pending turn. Pending choices are
	// consumed by acting.
	gs.AwaitingReply = true
	gs.ClearChoices()
	if err := p.storage.SaveSession(ctx, gs.ID, gs); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	messages, err := prompts.New().
		WithSession(gs).
		WithCharacters(specs).
		WithPlayerMessage(req.Message, speaker).
		WithHistoryLimit(PromptHistoryLimit).
		Build()
	if err != nil {
		p.unlock(ctx, gs)
		return nil, nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	p.logger.Debug("Sending turn to narrator", "session_id", gs.ID, "messages", len(messages))
	raw, err := p.llmService.Chat(llmCtx, messages)
	if err != nil {
		p.logger.Error("Narrator call failed", "session_id", gs.ID, "error", err)
		gs.Append(chat.RoleSystem, session.SystemSpeaker,
			"The narrator is unavailable right now. Try again in a moment.")
		p.unlock(ctx, gs)
		return &chat.TurnResponse{
			SessionID: gs.ID,
			Error:     "Failed to generate narration. Please try again.",
		}, nil, nil
	}

	narrative, directives := directive.Parse(raw)

	gs.Append(chat.RolePlayer, speaker, req.Message)
	gs.Append(chat.RoleNarrator, "", narrative)
	noticesFrom := len(gs.Messages)

	effects := session.NewReducer(gs, p.logger).
		WithCharacters(specs).
		WithImages(p.images).
		WithContext(ctx).
		Apply(directives)

	gs.AwaitingReply = false
	if err := p.storage.SaveSession(ctx, gs.ID, gs); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	// Directives may have granted loot or experience.
	for _, spec := range specs {
		if err := p.storage.SaveCharacter(ctx, spec.ID, spec); err != nil {
			p.logger.Error("Failed to save character", "character", spec.Name, "error", err)
		}
	}

	p.logger.Info("Turn processed",
		"session_id", gs.ID,
		"directives", len(directives),
		"effects", len(effects))

	return &chat.TurnResponse{
		SessionID: gs.ID,
		Narrative: narrative,
		Messages:  gs.Messages[noticesFrom:],
	}, effects, nil
}

// unlock returns the session to the input-accepting state on a failed turn
func (p *TurnProcessor) unlock(ctx context.Context, gs *session.GameSession) {
	gs.AwaitingReply = false
	if err := p.storage.SaveSession(ctx, gs.ID, gs); err != nil {
		p.logger.Error("Failed to unlock session", "session_id", gs.ID, "error", err)
	}
}
