package readmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotTTL bounds how long a Redis snapshot is trusted.
const DefaultSnapshotTTL = 10 * time.Minute

// RedisSnapshotLoader keeps confirmed views as JSON in Redis in front of
// another loader, so a restarted process starts warm.
// Keys: arena:readmodel:{aggregate_type}:{aggregate_id}[:{sub_key}].
type RedisSnapshotLoader struct {
	client redis.UniversalClient
	next   Loader
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisSnapshotLoader wraps next. ttl <= 0 selects DefaultSnapshotTTL.
func NewRedisSnapshotLoader(client redis.UniversalClient, next Loader, ttl time.Duration, logger *slog.Logger) *RedisSnapshotLoader {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSnapshotLoader{client: client, next: next, ttl: ttl, logger: logger}
}

// SnapshotKey is the Redis key holding key's snapshot.
func SnapshotKey(key Key) string {
	return "arena:readmodel:" + key.String()
}

// Load returns the snapshot when present and otherwise loads through the
// wrapped loader and stores the result. Redis failures fall back to the
// wrapped loader.
func (l *RedisSnapshotLoader) Load(ctx context.Context, key Key) (any, error) {
	data, err := l.client.Get(ctx, SnapshotKey(key)).Bytes()
	switch {
	case err == nil:
		v, decodeErr := DecodeView(key, data)
		if decodeErr == nil {
			return v, nil
		}
		l.logger.Warn("discarding unreadable snapshot", "key", key.String(), "error", decodeErr)
	case !errors.Is(err, redis.Nil):
		l.logger.Warn("snapshot read failed", "key", key.String(), "error", err)
	}

	v, err := l.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s snapshot: %w", key, err)
	}
	if err := l.client.Set(ctx, SnapshotKey(key), body, l.ttl).Err(); err != nil {
		l.logger.Warn("snapshot write failed", "key", key.String(), "error", err)
	}
	return v, nil
}

// Evict deletes key's snapshot.
func (l *RedisSnapshotLoader) Evict(ctx context.Context, key Key) error {
	return l.client.Del(ctx, SnapshotKey(key)).Err()
}
