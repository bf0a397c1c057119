// Package flash provides a Redis-backed store for transient, read-once
// user-facing notices.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message types shown to users after an action completes
const (
	TypeConfirmation = "confirmation"
	TypeError        = "error"
)

// Message is one pending notice for a user
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Store keeps at most one pending message per user email. Messages expire on
// their own if never read.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a Redis-backed flash message store
func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{
		client: client,
		prefix: "flash:",
		ttl:    ttl,
	}, nil
}

// NewStoreWithClient creates a store from an existing Redis client
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: "flash:",
		ttl:    ttl,
	}
}

// key generates the Redis key for a user's pending message
func (s *Store) key(email string) string {
	return s.prefix + email
}

// Set stores a pending message for the user, replacing any previous one
func (s *Store) Set(ctx context.Context, email, msgType, msg string) error {
	data, err := json.Marshal(Message{Type: msgType, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal flash message: %w", err)
	}

	if err := s.client.Set(ctx, s.key(email), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save flash message: %w", err)
	}
	return nil
}

// Pop retrieves and clears the pending message for the user. Returns nil when
// there is none.
func (s *Store) Pop(ctx context.Context, email string) (*Message, error) {
	key := s.key(email)
	data, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop flash message: %w", err)
	}

	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		return nil, fmt.Errorf("unmarshal flash message: %w", err)
	}
	return &msg, nil
}

// Ping verifies the Redis connection is healthy
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client
func (s *Store) Close() error {
	return s.client.Close()
}
