package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mwisniewski/tale-engine/internal/services/events"
	"github.com/mwisniewski/tale-engine/internal/services/queue"
	"github.com/mwisniewski/tale-engine/internal/worker"
	"github.com/mwisniewski/tale-engine/pkg/chat"
)

// ChatHandler handles synchronous turn requests on POST /v1/chat
type ChatHandler struct {
	processor *worker.TurnProcessor
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(processor *worker.TurnProcessor, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for synchronous turns
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeJSONError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' and 'message' fields.")
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid turn request", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	response, _, err := h.processor.ProcessTurn(r.Context(), request)
	if err != nil {
		h.logger.Error("Error processing turn", "error", err, "session_id", request.SessionID)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to process turn. Please try again.")
		return
	}

	statusCode := http.StatusOK
	if response.Error != "" {
		statusCode = http.StatusBadGateway
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding chat response", "error", err)
	}
}

// AsyncChatHandler enqueues turn requests on POST /v1/chat/async for
// worker processing
type AsyncChatHandler struct {
	queue       *queue.TurnQueue
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

// AsyncChatResponse acknowledges a queued turn
type AsyncChatResponse struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// NewAsyncChatHandler creates a new async chat handler
func NewAsyncChatHandler(turnQueue *queue.TurnQueue, broadcaster *events.Broadcaster, logger *slog.Logger) *AsyncChatHandler {
	return &AsyncChatHandler{
		queue:       turnQueue,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ServeHTTP handles HTTP requests for asynchronous turns
func (h *AsyncChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeJSONError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'session_id' and 'message' fields.")
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid turn request", "error", err)
		writeJSONError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	turnReq := queue.NewTurnRequest(request.SessionID, request.Character, request.Message)
	if err := h.queue.Enqueue(r.Context(), turnReq); err != nil {
		h.logger.Error("Failed to enqueue turn", "error", err, "session_id", request.SessionID)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to queue turn. Please try again.")
		return
	}

	if err := h.broadcaster.PublishTurnQueued(r.Context(), request.SessionID, turnReq.RequestID); err != nil {
		h.logger.Warn("Failed to publish queued event", "error", err)
	}

	h.logger.Info("Turn queued",
		"request_id", turnReq.RequestID,
		"session_id", request.SessionID)

	w.WriteHeader(http.StatusAccepted)
	response := AsyncChatResponse{
		RequestID: turnReq.RequestID,
		SessionID: request.SessionID.String(),
		Status:    "queued",
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding async chat response", "error", err)
	}
}
