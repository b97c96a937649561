package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mwisniewski/tale-engine/pkg/session"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTurnQueued     EventType = "turn.queued"
	EventTypeTurnProcessing EventType = "turn.processing"
	EventTypeTurnCompleted  EventType = "turn.completed"
	EventTypeTurnFailed     EventType = "turn.failed"
	EventTypeSessionUpdated EventType = "session.updated"
)

// Event is the payload published on a session's channel
type Event struct {
	Type      EventType              `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub so clients can follow
// async turn processing without polling
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ChannelFor returns the Pub/Sub channel name for a session
func ChannelFor(sessionID uuid.UUID) string {
	return "session-events:" + sessionID.String()
}

// PublishTurnQueued publishes a turn.queued event
func (b *Broadcaster) PublishTurnQueued(ctx context.Context, sessionID uuid.UUID, requestID string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeTurnQueued,
		RequestID: requestID,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"status": "queued",
		},
	})
}

// PublishTurnProcessing publishes a turn.processing event
func (b *Broadcaster) PublishTurnProcessing(ctx context.Context, sessionID uuid.UUID, requestID string, playerMessage string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeTurnProcessing,
		RequestID: requestID,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"status":         "processing",
			"player_message": playerMessage,
		},
	})
}

// PublishTurnCompleted publishes a turn.completed event with the narrative
// and the effects the turn produced
func (b *Broadcaster) PublishTurnCompleted(ctx context.Context, sessionID uuid.UUID, requestID string, narrative string, effects []session.Effect) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeTurnCompleted,
		RequestID: requestID,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"status":    "completed",
			"narrative": narrative,
			"effects":   effects,
		},
	})
}

// PublishTurnFailed publishes a turn.failed event
func (b *Broadcaster) PublishTurnFailed(ctx context.Context, sessionID uuid.UUID, requestID string, errMsg string) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeTurnFailed,
		RequestID: requestID,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"status": "failed",
			"error":  errMsg,
		},
	})
}

// PublishSessionUpdated publishes a session.updated event
func (b *Broadcaster) PublishSessionUpdated(ctx context.Context, sessionID uuid.UUID) error {
	return b.publish(ctx, sessionID, Event{
		Type:      EventTypeSessionUpdated,
		SessionID: sessionID.String(),
	})
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := ChannelFor(sessionID)
	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "channel", channel, "type", event.Type, "error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "type", event.Type)
	return nil
}
