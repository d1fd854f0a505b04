// Package presence keeps the ephemeral liveness signals in redis: per
// conversation typing flags and a per-user online key. Redis TTLs are the
// cleanup; a crashed client can never leave a stale "typing" behind.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

const (
	// typingTTL covers the client's 3s keystroke debounce with slack.
	typingTTL = 5 * time.Second
	onlineTTL = 60 * time.Second
)

type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{client: client}
}

func NewRedisClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func typingKey(conversationID, userID uuid.UUID) string {
	return fmt.Sprintf("typing:%s:%s", conversationID, userID)
}

// SetTyping asserts or clears the typing flag. Asserting is an idempotent
// upsert; clearing deletes the key so the signal drops immediately rather
// than waiting out the TTL.
func (s *Service) SetTyping(ctx context.Context, conversationID, userID uuid.UUID, typing bool) error {
	key := typingKey(conversationID, userID)
	if typing {
		err := s.client.Set(ctx, key, "1", typingTTL).Err()
		return pkgerrors.Wrap(err, "presence.SetTyping.Set")
	}
	err := s.client.Del(ctx, key).Err()
	return pkgerrors.Wrap(err, "presence.SetTyping.Del")
}

// TypersIn lists users currently typing in the conversation, excluding self.
func (s *Service) TypersIn(ctx context.Context, conversationID, exclude uuid.UUID) ([]uuid.UUID, error) {
	pattern := fmt.Sprintf("typing:%s:*", conversationID)

	var typers []uuid.UUID
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(key[len(pattern)-1:])
		if err != nil || id == exclude {
			continue
		}
		typers = append(typers, id)
	}
	if err := iter.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "presence.TypersIn.Scan")
	}
	return typers, nil
}

// Heartbeat refreshes the caller's online key.
func (s *Service) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	err := s.client.Set(ctx, "online:"+userID.String(), "1", onlineTTL).Err()
	return pkgerrors.Wrap(err, "presence.Heartbeat")
}

func (s *Service) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, "online:"+userID.String()).Result()
	if err != nil {
		return false, pkgerrors.Wrap(err, "presence.IsOnline")
	}
	return n > 0, nil
}

func (s *Service) Offline(ctx context.Context, userID uuid.UUID) error {
	err := s.client.Del(ctx, "online:"+userID.String()).Err()
	return pkgerrors.Wrap(err, "presence.Offline")
}
