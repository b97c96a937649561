package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/prompts"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}

// CreateSessionRequest is the body for POST /v1/sessions
type CreateSessionRequest struct {
	Name         string      `json:"name"`
	CharacterIDs []uuid.UUID `json:"character_ids,omitempty"`
}

type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for session operations
// Routes:
// POST /v1/sessions         - Create new session
// GET /v1/sessions/{id}     - Read session by ID
// PATCH /v1/sessions/{id}   - Update session
// DELETE /v1/sessions/{id}  - Delete session by ID
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions")
	var sessionID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		sessionID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
			writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if sessionID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Session ID is required for GET requests")
			return
		}
		h.handleRead(w, r, sessionID)

	case http.MethodPatch:
		if sessionID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Session ID is required for PATCH requests")
			return
		}
		h.handleUpdate(w, r, sessionID)

	case http.MethodDelete:
		if sessionID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Session ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, sessionID)

	default:
		writeJSONError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeJSONError(w, h.logger, http.StatusBadRequest, "Session name is required")
		return
	}

	gs := session.NewGameSession(req.Name)
	for _, id := range req.CharacterIDs {
		spec, err := h.storage.LoadCharacter(r.Context(), id)
		if err != nil {
			h.logger.Error("Failed to load character", "character", id, "error", err)
			writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
			return
		}
		if spec == nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Unknown character: "+id.String())
			return
		}
		gs.AddCharacter(id)
	}

	// Seed the adventure log with an opening scene prompt so the first
	// narrator turn has something to react to.
	if len(gs.CharacterIDs) > 0 {
		specs, err := h.storage.LoadSessionCharacters(r.Context(), gs)
		if err == nil && len(specs) > 0 {
			gs.Append(chat.RoleSystem, session.SystemSpeaker, prompts.OpeningPrompt(specs))
		}
	}

	if err := h.storage.SaveSession(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Session created", "session_id", gs.ID, "name", gs.Name)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode session", "error", err)
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode session", "error", err)
	}
}

// UpdateSessionRequest is the body for PATCH /v1/sessions/{id}.
// Only the listed fields can be changed from outside; everything else
// is owned by the narrator's directives.
type UpdateSessionRequest struct {
	Name            *string     `json:"name,omitempty"`
	AddCharacterIDs []uuid.UUID `json:"add_character_ids,omitempty"`
}

func (h *SessionHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name != nil {
		gs.Name = *req.Name
	}
	for _, cid := range req.AddCharacterIDs {
		spec, err := h.storage.LoadCharacter(r.Context(), cid)
		if err != nil || spec == nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Unknown character: "+cid.String())
			return
		}
		gs.AddCharacter(cid)
	}

	if err := h.storage.SaveSession(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save session", "session_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode session", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Warn("Failed to delete session", "session_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	h.logger.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}
