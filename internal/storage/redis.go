package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

const (
	sessionKeyPrefix   = "session:"
	characterKeyPrefix = "character:"

	// Sessions expire after a day of inactivity; characters are kept
	// until deleted so they can be reused across sessions.
	sessionTTL = 24 * time.Hour
)

// RedisStorage implements the Storage interface using Redis
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// NewRedisStorageFromClient wraps an existing Redis client. Used by tests
// and by the worker, which shares one connection pool across services.
func NewRedisStorageFromClient(client *redis.Client, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations

func (r *RedisStorage) SaveSession(ctx context.Context, id uuid.UUID, gs *session.GameSession) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal session", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKeyPrefix + id.String()
	if err := r.client.Set(ctx, key, string(data), sessionTTL).Err(); err != nil {
		r.logger.Error("Failed to save session", "uuid", id, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.GameSession, error) {
	key := sessionKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var gs session.GameSession
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		r.logger.Error("Failed to unmarshal session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &gs, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	key := sessionKeyPrefix + id.String()
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to delete session", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("session not found: %s", id)
	}
	return nil
}

// Character operations

func (r *RedisStorage) SaveCharacter(ctx context.Context, id uuid.UUID, spec *actor.CharacterSpec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		r.logger.Error("Failed to marshal character", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	key := characterKeyPrefix + id.String()
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save character", "uuid", id, "error", err)
		return fmt.Errorf("failed to save character: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadCharacter(ctx context.Context, id uuid.UUID) (*actor.CharacterSpec, error) {
	key := characterKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load character", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load character: %w", err)
	}

	var spec actor.CharacterSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		r.logger.Error("Failed to unmarshal character", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}

	return &spec, nil
}

func (r *RedisStorage) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	key := characterKeyPrefix + id.String()
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to delete character", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete character: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("character not found: %s", id)
	}
	return nil
}

func (r *RedisStorage) LoadSessionCharacters(ctx context.Context, gs *session.GameSession) ([]*actor.CharacterSpec, error) {
	specs := make([]*actor.CharacterSpec, 0, len(gs.CharacterIDs))
	for _, id := range gs.CharacterIDs {
		spec, err := r.LoadCharacter(ctx, id)
		if err != nil {
			return nil, err
		}
		if spec == nil {
			r.logger.Warn("Session references missing character", "session", gs.ID, "character", id)
			continue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
