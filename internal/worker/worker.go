package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mwisniewski/tale-engine/internal/services/events"
	"github.com/mwisniewski/tale-engine/internal/services/queue"
	"github.com/mwisniewski/tale-engine/pkg/chat"
)

const (
	dequeueTimeout = 5 * time.Second
	sessionLockTTL = 30 * time.Second
)

// Worker processes queued player turns
type Worker struct {
	id          string
	queue       *queue.TurnQueue
	processor   *TurnProcessor
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(turnQueue *queue.TurnQueue, processor *TurnProcessor, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       turnQueue,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNext(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNext pulls the next request from the queue and processes it
func (w *Worker) processNext() error {
	req, err := w.queue.BlockingDequeue(w.ctx, dequeueTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred, which is normal
		return nil
	}

	w.log.Info("Received turn from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"session_id", req.SessionID.String(),
	)

	locked, err := w.acquireSessionLock(req.SessionID)
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		// Another worker is processing this session.
		// Re-queue at the end and try the next request.
		w.log.Info("Session already locked, re-queueing turn",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"session_id", req.SessionID.String(),
		)
		if err := w.queue.Enqueue(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseSessionLock(req.SessionID)
	return w.processTurn(req)
}

func (w *Worker) processTurn(req *queue.TurnRequest) error {
	if err := w.broadcaster.PublishTurnProcessing(w.ctx, req.SessionID, req.RequestID, req.Message); err != nil {
		w.log.Warn("Failed to publish processing event", "error", err)
	}

	resp, effects, err := w.processor.ProcessTurn(w.ctx, chat.TurnRequest{
		SessionID: req.SessionID,
		Character: req.Character,
		Message:   req.Message,
	})
	if err != nil {
		if pubErr := w.broadcaster.PublishTurnFailed(w.ctx, req.SessionID, req.RequestID, err.Error()); pubErr != nil {
			w.log.Warn("Failed to publish failure event", "error", pubErr)
		}
		return fmt.Errorf("failed to process turn: %w", err)
	}

	if resp.Error != "" {
		if pubErr := w.broadcaster.PublishTurnFailed(w.ctx, req.SessionID, req.RequestID, resp.Error); pubErr != nil {
			w.log.Warn("Failed to publish failure event", "error", pubErr)
		}
		return nil
	}

	if err := w.broadcaster.PublishTurnCompleted(w.ctx, req.SessionID, req.RequestID, resp.Narrative, effects); err != nil {
		w.log.Warn("Failed to publish completion event", "error", err)
	}
	if err := w.broadcaster.PublishSessionUpdated(w.ctx, req.SessionID); err != nil {
		w.log.Warn("Failed to publish session update event", "error", err)
	}

	return nil
}

// acquireSessionLock attempts to acquire a lock for a session.
// Returns true if the lock was acquired, false if already locked.
func (w *Worker) acquireSessionLock(sessionID uuid.UUID) (bool, error) {
	lockKey := fmt.Sprintf("session-lock:%s", sessionID.String())

	result, err := w.redisClient.SetNX(w.ctx, lockKey, w.id, sessionLockTTL).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func (w *Worker) releaseSessionLock(sessionID uuid.UUID) {
	lockKey := fmt.Sprintf("session-lock:%s", sessionID.String())

	if err := w.redisClient.Del(context.Background(), lockKey).Err(); err != nil {
		w.log.Error("Failed to release session lock", "session_id", sessionID.String(), "error", err)
	}
}
