// Package infrastructure delivers notifications through Redis, RabbitMQ or
// the log.
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/arena/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultInboxSize is how many notifications a user's inbox retains.
	DefaultInboxSize = 100

	keyPrefix = "arena:notifications"
)

// RedisSender keeps a capped inbox list per user and publishes each
// notification on the user's channel for live clients.
// Keys: arena:notifications:user:{user_id} (list) and
// arena:notifications:channel:{user_id} (pub/sub).
type RedisSender struct {
	client    redis.UniversalClient
	inboxSize int64
}

// NewRedisSender creates a RedisSender. inboxSize <= 0 selects
// DefaultInboxSize.
func NewRedisSender(client redis.UniversalClient, inboxSize int) *RedisSender {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	return &RedisSender{client: client, inboxSize: int64(inboxSize)}
}

// InboxKey is the list holding userID's notifications, newest first.
func InboxKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, userID)
}

// ChannelKey is the pub/sub channel for userID.
func ChannelKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:channel:%s", keyPrefix, userID)
}

// Send pushes n to the inbox and publishes it.
func (s *RedisSender) Send(ctx context.Context, userID uuid.UUID, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := InboxKey(userID)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, body)
		pipe.LTrim(ctx, key, 0, s.inboxSize-1)
		pipe.Publish(ctx, ChannelKey(userID), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis send to %s: %w", userID, err)
	}
	return nil
}

// Inbox returns up to limit of userID's notifications, newest first.
func (s *RedisSender) Inbox(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = int(s.inboxSize)
	}
	raw, err := s.client.LRange(ctx, InboxKey(userID), 0, int64(limit-1)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis inbox %s: %w", userID, err)
	}

	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
