package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// QueueEvent announces a change of a moderator's pending-queue count.
type QueueEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	MemoCount int       `json:"memo_count"`
}

// PublishQueueEvent publishes a queue-count update so every server
// instance can push it to its connected moderators.
func (r *RedisClient) PublishQueueEvent(event QueueEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, "moderation:queue", data).Err()
}

// SubscribeToQueueEvents subscribes to queue-count updates
func (r *RedisClient) SubscribeToQueueEvents() *redis.PubSub {
	return r.client.Subscribe(r.ctx, "moderation:queue")
}
