package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/internal/storage"
	"github.com/mwisniewski/tale-engine/pkg/actor"
)

type CharacterHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCharacterHandler(storage storage.Storage, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for character sheet operations
// Routes:
// POST /v1/characters         - Create new character
// GET /v1/characters/{id}     - Read character by ID
// PUT /v1/characters/{id}     - Replace character sheet
// DELETE /v1/characters/{id}  - Delete character by ID
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/characters")
	var characterID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		characterID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid character ID", "id", idStr, "error", err)
			writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid character ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if characterID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Character ID is required for GET requests")
			return
		}
		h.handleRead(w, r, characterID)

	case http.MethodPut:
		if characterID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Character ID is required for PUT requests")
			return
		}
		h.handleReplace(w, r, characterID)

	case http.MethodDelete:
		if characterID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Character ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, characterID)

	default:
		writeJSONError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CharacterHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var spec actor.CharacterSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if spec.ID == uuid.Nil {
		spec.ID = uuid.New()
	}
	if spec.Level == 0 {
		spec.Level = 1
	}
	if spec.HP == 0 {
		spec.HP = spec.MaxHP
	}

	if err := spec.Validate(); err != nil {
		h.logger.Warn("Invalid character sheet", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	// Reject sheets the dice engine cannot represent.
	if _, err := actor.NewCharacterFromSpec(&spec); err != nil {
		h.logger.Warn("Character sheet failed actor build", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.SaveCharacter(r.Context(), spec.ID, &spec); err != nil {
		h.logger.Error("Failed to save character", "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to create character")
		return
	}

	h.logger.Info("Character created", "character_id", spec.ID, "name", spec.Name)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode character", "error", err)
	}
}

func (h *CharacterHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	spec, err := h.storage.LoadCharacter(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load character", "character_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if spec == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode character", "error", err)
	}
}

func (h *CharacterHandler) handleReplace(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	existing, err := h.storage.LoadCharacter(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load character", "character_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if existing == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	var spec actor.CharacterSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	spec.ID = id
	if err := spec.Validate(); err != nil {
		writeJSONError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.SaveCharacter(r.Context(), id, &spec); err != nil {
		h.logger.Error("Failed to save character", "character_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to save character")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode character", "error", err)
	}
}

func (h *CharacterHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteCharacter(r.Context(), id); err != nil {
		h.logger.Warn("Failed to delete character", "character_id", id, "error", err)
		writeJSONError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	h.logger.Info("Character deleted", "character_id", id)
	w.WriteHeader(http.StatusNoContent)
}
