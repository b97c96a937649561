package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const turnRequestsKey = "turn-requests"

// TurnRequest is a queued player turn awaiting processing by a worker
type TurnRequest struct {
	RequestID string    `json:"request_id"`
	SessionID uuid.UUID `json:"session_id"`
	Character string    `json:"character"`
	Message   string    `json:"message"`
	QueuedAt  time.Time `json:"queued_at"`
}

// NewTurnRequest creates a turn request with a fresh request ID
func NewTurnRequest(sessionID uuid.UUID, character, message string) *TurnRequest {
	return &TurnRequest{
		RequestID: uuid.New().String(),
		SessionID: sessionID,
		Character: character,
		Message:   message,
		QueuedAt:  time.Now(),
	}
}

// ToJSON serializes the request for queue transport
func (r *TurnRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON deserializes a queued request
func FromJSON(data []byte) (*TurnRequest, error) {
	var req TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// TurnQueue manages the global queue of player turns
type TurnQueue struct {
	client *Client
}

func NewTurnQueue(client *Client) *TurnQueue {
	return &TurnQueue{
		client: client,
	}
}

// Enqueue adds a turn request to the end of the global queue
func (q *TurnQueue) Enqueue(ctx context.Context, req *TurnRequest) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, turnRequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next request from the global queue.
// Returns nil if the queue is empty.
func (q *TurnQueue) Dequeue(ctx context.Context) (*TurnRequest, error) {
	result, err := q.client.rdb.LPop(ctx, turnRequestsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeue blocks until a request is available, then returns it.
// Returns nil on timeout.
func (q *TurnQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*TurnRequest, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, turnRequestsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of requests in the global queue
func (q *TurnQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, turnRequestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
